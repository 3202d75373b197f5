package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	cases := []struct {
		input   string
		want    TimeOfDay
		wantErr bool
	}{
		{"18:00:00", TimeOfDay{18, 0, 0}, false},
		{"08:30", TimeOfDay{8, 30, 0}, false},
		{" 07:05:09 ", TimeOfDay{7, 5, 9}, false},
		{"25:00:00", TimeOfDay{}, true},
		{"", TimeOfDay{}, true},
	}
	for _, c := range cases {
		got, err := ParseTimeOfDay(c.input)
		if c.wantErr {
			assert.Error(t, err, c.input)
			continue
		}
		require.NoError(t, err, c.input)
		assert.Equal(t, c.want, got, c.input)
	}
}

func TestOn(t *testing.T) {
	loc := MustLoadLocation(DefaultTimezone)
	got, err := On("2024-03-04", TimeOfDay{Hour: 18}, loc)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-04 18:00:00", got.Format("2006-01-02 15:04:05"))
	assert.Equal(t, loc, got.Location())

	_, err = On("04-03-2024", TimeOfDay{}, loc)
	assert.Error(t, err)
}

func TestWeekdayOf(t *testing.T) {
	cases := map[string]string{
		"2024-03-04": "Senin",
		"2024-03-08": "Jumat",
		"2024-03-10": "Minggu",
	}
	for date, want := range cases {
		got, err := WeekdayOf(date)
		require.NoError(t, err)
		assert.Equal(t, want, got, date)
	}
}

func TestNormalizeWeekday(t *testing.T) {
	got, ok := NormalizeWeekday(" senin ")
	assert.True(t, ok)
	assert.Equal(t, "Senin", got)

	got, ok = NormalizeWeekday("Jum'at")
	assert.True(t, ok)
	assert.Equal(t, "Jumat", got)

	_, ok = NormalizeWeekday("Monday")
	assert.False(t, ok)
}

func TestFixedClock(t *testing.T) {
	loc := MustLoadLocation(DefaultTimezone)
	at := time.Date(2024, 3, 4, 8, 0, 0, 0, loc)
	c := Fixed{T: at}
	assert.Equal(t, at, c.Now())
	assert.Equal(t, "2024-03-04", DateString(c.Now()))
	assert.Equal(t, "08:00:00", TimeString(c.Now()))
}

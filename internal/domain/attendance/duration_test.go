package attendance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuration(t *testing.T) {
	cases := []struct {
		in, out string
		want    string
	}{
		{"08:00:00", "17:00:00", "09:00:00"},
		{"22:00:00", "02:00:00", "04:00:00"},
		{"08:15:30", "09:45:10", "01:29:00"},
		{"08:00", "09:30", "01:30:00"},
		{"08:00:00", "08:00:00", "00:00:00"},
	}
	for _, c := range cases {
		got := Duration(c.in, c.out)
		require.NotNil(t, got, "%s-%s", c.in, c.out)
		assert.Equal(t, c.want, *got, "%s-%s", c.in, c.out)
	}
}

func TestDuration_ParseFailure(t *testing.T) {
	assert.Nil(t, Duration("", "17:00:00"))
	assert.Nil(t, Duration("08:00:00", "five pm"))
}

func TestElapsedMinutes(t *testing.T) {
	got, ok := ElapsedMinutes("08:00:00", "08:30:00")
	require.True(t, ok)
	assert.Equal(t, 30, got)

	got, ok = ElapsedMinutes("23:30:00", "00:15:00")
	require.True(t, ok)
	assert.Equal(t, 45, got)

	_, ok = ElapsedMinutes("bad", "08:00:00")
	assert.False(t, ok)
}

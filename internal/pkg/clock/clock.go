package clock

import (
	"fmt"
	"strings"
	"time"
)

const (
	DefaultTimezone = "Asia/Jakarta"
	DateLayout      = "2006-01-02"
	TimeLayout      = "15:04:05"
)

// Clock supplies the current time in the service's fixed zone.
type Clock interface {
	Now() time.Time
	Location() *time.Location
}

type zoneClock struct {
	loc *time.Location
}

// New returns a Clock backed by time.Now converted into loc.
func New(loc *time.Location) Clock {
	if loc == nil {
		loc = MustLoadLocation(DefaultTimezone)
	}
	return &zoneClock{loc: loc}
}

func (c *zoneClock) Now() time.Time {
	return time.Now().In(c.loc)
}

func (c *zoneClock) Location() *time.Location {
	return c.loc
}

// MustLoadLocation loads name, falling back to a fixed UTC+7 zone when the
// tz database is missing (slim containers without tzdata).
func MustLoadLocation(name string) *time.Location {
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("WIB", 7*60*60)
	}
	return loc
}

// Fixed is a Clock frozen at a single instant. Used by tests and by callers
// that replay a scan with an explicit timestamp.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time {
	return f.T
}

func (f Fixed) Location() *time.Location {
	return f.T.Location()
}

// DateString formats t as YYYY-MM-DD.
func DateString(t time.Time) string {
	return t.Format(DateLayout)
}

// TimeString formats t as HH:MM:SS.
func TimeString(t time.Time) string {
	return t.Format(TimeLayout)
}

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// ParseTimeOfDay accepts "HH:MM:SS" or "HH:MM".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	if len(s) == 5 {
		s += ":00"
	}
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}, nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// Seconds returns the offset from midnight in seconds.
func (t TimeOfDay) Seconds() int {
	return t.Hour*3600 + t.Minute*60 + t.Second
}

// On combines a YYYY-MM-DD date with a time of day in loc.
func On(date string, tod TimeOfDay, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), tod.Hour, tod.Minute, tod.Second, 0, loc), nil
}

var weekdayNames = [...]string{"Minggu", "Senin", "Selasa", "Rabu", "Kamis", "Jumat", "Sabtu"}

// WeekdayName returns the Indonesian name of the weekday, as stored in a
// member's duty days.
func WeekdayName(d time.Weekday) string {
	return weekdayNames[d]
}

// WeekdayOf parses a YYYY-MM-DD date and returns its Indonesian weekday name.
func WeekdayOf(date string) (string, error) {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return "", err
	}
	return WeekdayName(d.Weekday()), nil
}

// IsWeekdayName reports whether name is one of the Indonesian weekday names
// (case-insensitive).
func IsWeekdayName(name string) bool {
	_, ok := NormalizeWeekday(name)
	return ok
}

// NormalizeWeekday returns the canonical spelling of an Indonesian weekday.
func NormalizeWeekday(name string) (string, bool) {
	n := strings.TrimSpace(name)
	for _, w := range weekdayNames {
		if strings.EqualFold(w, n) {
			return w, true
		}
	}
	// "Jum'at" is common in member sheets.
	if strings.EqualFold(n, "Jum'at") {
		return "Jumat", true
	}
	return "", false
}

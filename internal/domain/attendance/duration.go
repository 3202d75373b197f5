package attendance

import (
	"fmt"

	"github.com/reslab/attendance-backend-go/internal/pkg/clock"
)

const secondsPerDay = 24 * 60 * 60

// elapsedSeconds returns the seconds between two times of day. A checkOut
// earlier than checkIn is taken to be on the following day.
func elapsedSeconds(checkIn, checkOut string) (int, bool) {
	in, err := clock.ParseTimeOfDay(checkIn)
	if err != nil {
		return 0, false
	}
	out, err := clock.ParseTimeOfDay(checkOut)
	if err != nil {
		return 0, false
	}
	diff := out.Seconds() - in.Seconds()
	if diff < 0 {
		diff += secondsPerDay
	}
	return diff, true
}

// Duration returns the worked time between checkIn and checkOut as
// "HH:MM:00". Seconds are truncated. It returns nil when either input cannot
// be parsed; callers must treat nil as unknown, not as zero.
func Duration(checkIn, checkOut string) *string {
	secs, ok := elapsedSeconds(checkIn, checkOut)
	if !ok {
		return nil
	}
	mins := secs / 60
	s := fmt.Sprintf("%02d:%02d:00", mins/60, mins%60)
	return &s
}

// ElapsedMinutes returns the whole minutes between checkIn and now, using the
// same rollover rule as Duration.
func ElapsedMinutes(checkIn, now string) (int, bool) {
	secs, ok := elapsedSeconds(checkIn, now)
	if !ok {
		return 0, false
	}
	return secs / 60, true
}

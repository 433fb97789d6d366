package schedule

import (
	"fmt"
	"time"
)

// TimeOfDay is a clock time within a day, stored as seconds since midnight.
// The zero value is midnight.
type TimeOfDay int

// ParseTimeOfDay accepts "15:04" or "15:04:05".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var h, m, sec int
	if n, err := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec); err != nil || n < 2 {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 || sec < 0 || sec > 59 {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	return TimeOfDay(h*3600 + m*60 + sec), nil
}

// TimeOfDayFrom extracts the clock time from an already-localized timestamp.
func TimeOfDayFrom(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*3600 + t.Minute()*60 + t.Second())
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", int(t)/3600, int(t)/60%60, int(t)%60)
}

// Instant is an already-localized point in the week. Time zone conversion is
// the caller's concern.
type Instant struct {
	Day  time.Weekday
	Time TimeOfDay
}

// InstantFrom builds an Instant from a localized timestamp.
func InstantFrom(t time.Time) Instant {
	return Instant{Day: t.Weekday(), Time: TimeOfDayFrom(t)}
}

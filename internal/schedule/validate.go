package schedule

import (
	"errors"
	"fmt"

	"github.com/christopherlanz-debug/dsV2/internal/model"
)

var (
	// ErrInvalidWindow rejects windows where start_time >= end_time. Zero-width
	// and overnight windows never reach the resolver.
	ErrInvalidWindow = errors.New("schedule window start must be before end")

	// ErrOverlap rejects a new window that overlaps an existing active window
	// on a common weekday.
	ErrOverlap = errors.New("schedule overlaps an existing schedule on the same days")
)

// ValidateWindow checks the time window of a single schedule.
func ValidateWindow(s model.PlaylistSchedule) error {
	start, err := ParseTimeOfDay(s.StartTime)
	if err != nil {
		return err
	}
	end, err := ParseTimeOfDay(s.EndTime)
	if err != nil {
		return err
	}
	if start >= end {
		return fmt.Errorf("%w: %s >= %s", ErrInvalidWindow, s.StartTime, s.EndTime)
	}
	return nil
}

// CheckOverlap rejects candidate if its window intersects any existing active
// schedule on at least one shared weekday. candidate is compared against
// existing by ID so updates do not collide with themselves.
func CheckOverlap(candidate model.PlaylistSchedule, existing []model.PlaylistSchedule) error {
	cStart, err := ParseTimeOfDay(candidate.StartTime)
	if err != nil {
		return err
	}
	cEnd, err := ParseTimeOfDay(candidate.EndTime)
	if err != nil {
		return err
	}
	for _, other := range existing {
		if other.ID == candidate.ID || !other.IsActive {
			continue
		}
		oStart, err := ParseTimeOfDay(other.StartTime)
		if err != nil {
			continue
		}
		oEnd, err := ParseTimeOfDay(other.EndTime)
		if err != nil {
			continue
		}
		if cStart < oEnd && oStart < cEnd && candidate.SharesDay(other) {
			return fmt.Errorf("%w: schedule %d", ErrOverlap, other.ID)
		}
	}
	return nil
}

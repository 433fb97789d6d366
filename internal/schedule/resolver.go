package schedule

import (
	"github.com/rs/zerolog/log"

	"github.com/christopherlanz-debug/dsV2/internal/model"
)

// Matches reports whether the schedule covers the instant. The window is
// half-open: a schedule ending at 17:00 does not match at exactly 17:00:00.
// Inactive schedules and schedules with unparseable times never match.
func Matches(s model.PlaylistSchedule, now Instant) bool {
	if !s.IsActive || !s.DayEnabled(now.Day) {
		return false
	}
	start, err := ParseTimeOfDay(s.StartTime)
	if err != nil {
		log.Error().Err(err).Int("schedule_id", s.ID).Msg("[schedule] bad start_time")
		return false
	}
	end, err := ParseTimeOfDay(s.EndTime)
	if err != nil {
		log.Error().Err(err).Int("schedule_id", s.ID).Msg("[schedule] bad end_time")
		return false
	}
	return start <= now.Time && now.Time < end
}

// Resolve decides which playlist a screen should display at the given instant.
//
// A screen has at most one assigned playlist; schedules are within-playlist
// eligibility windows, not competing playlists. With no active schedules the
// assignment is always eligible. With active schedules the assignment is
// eligible only while at least one window covers the instant; overlapping
// windows widen eligibility, they never conflict. Outside every window nothing
// is displayed (fail closed).
//
// Only schedules with IsActive=true may be passed in; the store filter is the
// caller's responsibility so that a playlist whose schedules are all inactive
// behaves as if it had none.
func Resolve(assignedPlaylistID *int, active []model.PlaylistSchedule, now Instant) (int, bool) {
	if assignedPlaylistID == nil {
		return 0, false
	}
	if len(active) == 0 {
		return *assignedPlaylistID, true
	}
	for _, s := range active {
		if Matches(s, now) {
			return *assignedPlaylistID, true
		}
	}
	return 0, false
}

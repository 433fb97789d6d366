package model

import "time"

// PlaylistSchedule is a weekly recurring time window during which its playlist
// is eligible for display. Times are local time-of-day strings ("09:00:00");
// the window never wraps past midnight. A playlist with no active schedules is
// always eligible when assigned.
type PlaylistSchedule struct {
	ID         int    `db:"id"          json:"id"`
	PlaylistID int    `db:"playlist_id" json:"playlist_id"`
	StartTime  string `db:"start_time"  json:"start_time"`
	EndTime    string `db:"end_time"    json:"end_time"`

	Monday    bool `db:"monday"    json:"monday"`
	Tuesday   bool `db:"tuesday"   json:"tuesday"`
	Wednesday bool `db:"wednesday" json:"wednesday"`
	Thursday  bool `db:"thursday"  json:"thursday"`
	Friday    bool `db:"friday"    json:"friday"`
	Saturday  bool `db:"saturday"  json:"saturday"`
	Sunday    bool `db:"sunday"    json:"sunday"`

	IsActive  bool      `db:"is_active"  json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// DayEnabled reports whether the schedule covers the given weekday.
func (s PlaylistSchedule) DayEnabled(day time.Weekday) bool {
	switch day {
	case time.Monday:
		return s.Monday
	case time.Tuesday:
		return s.Tuesday
	case time.Wednesday:
		return s.Wednesday
	case time.Thursday:
		return s.Thursday
	case time.Friday:
		return s.Friday
	case time.Saturday:
		return s.Saturday
	case time.Sunday:
		return s.Sunday
	}
	return false
}

// SharesDay reports whether two schedules are enabled on at least one common
// weekday. Used by the creation-time overlap check.
func (s PlaylistSchedule) SharesDay(other PlaylistSchedule) bool {
	return s.Monday && other.Monday ||
		s.Tuesday && other.Tuesday ||
		s.Wednesday && other.Wednesday ||
		s.Thursday && other.Thursday ||
		s.Friday && other.Friday ||
		s.Saturday && other.Saturday ||
		s.Sunday && other.Sunday
}

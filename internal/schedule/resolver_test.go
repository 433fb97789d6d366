package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/christopherlanz-debug/dsV2/internal/model"
)

func weekdaySchedule(start, end string) model.PlaylistSchedule {
	return model.PlaylistSchedule{
		StartTime: start,
		EndTime:   end,
		Monday:    true,
		Tuesday:   true,
		Wednesday: true,
		Thursday:  true,
		Friday:    true,
		IsActive:  true,
	}
}

func at(day time.Weekday, clock string) Instant {
	t, err := ParseTimeOfDay(clock)
	if err != nil {
		panic(err)
	}
	return Instant{Day: day, Time: t}
}

func TestParseTimeOfDay(t *testing.T) {
	tod, err := ParseTimeOfDay("09:30:15")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay(9*3600+30*60+15), tod)

	tod, err = ParseTimeOfDay("17:00")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay(17*3600), tod)

	_, err = ParseTimeOfDay("not a time")
	assert.Error(t, err)

	_, err = ParseTimeOfDay("25:00:00")
	assert.Error(t, err)
}

func TestMatchesHalfOpenWindow(t *testing.T) {
	s := weekdaySchedule("09:00:00", "17:00:00")

	assert.True(t, Matches(s, at(time.Monday, "09:00:00")), "start boundary is inclusive")
	assert.True(t, Matches(s, at(time.Monday, "16:59:59")))
	assert.False(t, Matches(s, at(time.Monday, "17:00:00")), "end boundary is exclusive")
	assert.False(t, Matches(s, at(time.Monday, "08:59:59")))
	assert.False(t, Matches(s, at(time.Saturday, "12:00:00")), "day not enabled")
}

func TestMatchesInactiveSchedule(t *testing.T) {
	s := weekdaySchedule("09:00:00", "17:00:00")
	s.IsActive = false
	assert.False(t, Matches(s, at(time.Monday, "12:00:00")))
}

func TestResolveNoAssignment(t *testing.T) {
	_, ok := Resolve(nil, nil, at(time.Monday, "12:00:00"))
	assert.False(t, ok)
}

func TestResolveNoSchedulesAlwaysEligible(t *testing.T) {
	pid := 7
	got, ok := Resolve(&pid, nil, at(time.Sunday, "03:00:00"))
	require.True(t, ok)
	assert.Equal(t, 7, got)
}

func TestResolveAnyMatchingWindowWins(t *testing.T) {
	pid := 7
	active := []model.PlaylistSchedule{
		weekdaySchedule("09:00:00", "12:00:00"),
		weekdaySchedule("14:00:00", "17:00:00"),
	}

	got, ok := Resolve(&pid, active, at(time.Monday, "15:30:00"))
	require.True(t, ok)
	assert.Equal(t, 7, got)

	_, ok = Resolve(&pid, active, at(time.Monday, "13:00:00"))
	assert.False(t, ok, "between windows nothing plays")

	_, ok = Resolve(&pid, active, at(time.Sunday, "10:00:00"))
	assert.False(t, ok, "outside enabled days nothing plays")
}

func TestResolveFailClosed(t *testing.T) {
	pid := 7
	s := weekdaySchedule("09:00:00", "17:00:00")
	s.IsActive = false

	// An inactive schedule that slips past the store filter still never
	// matches, so the window covering the instant does not make it eligible.
	_, ok := Resolve(&pid, []model.PlaylistSchedule{s}, at(time.Monday, "12:00:00"))
	assert.False(t, ok)
}

func TestInstantFrom(t *testing.T) {
	ts := time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC) // a Monday
	now := InstantFrom(ts)
	assert.Equal(t, time.Monday, now.Day)
	assert.Equal(t, TimeOfDay(9*3600+30*60), now.Time)
}

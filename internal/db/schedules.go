package db

import (
	"github.com/rs/zerolog/log"

	"github.com/christopherlanz-debug/dsV2/internal/model"
)

const scheduleColumns = `
	id, playlist_id,
	to_char(start_time, 'HH24:MI:SS') AS start_time,
	to_char(end_time,   'HH24:MI:SS') AS end_time,
	monday, tuesday, wednesday, thursday, friday, saturday, sunday,
	is_active, created_at, updated_at`

func (s *pgStore) CreateSchedule(sc model.PlaylistSchedule) (model.PlaylistSchedule, error) {
	var out model.PlaylistSchedule
	const q = `
	INSERT INTO playlist_schedules
	  (playlist_id, start_time, end_time,
	   monday, tuesday, wednesday, thursday, friday, saturday, sunday,
	   is_active, created_at, updated_at)
	VALUES ($1, $2::time, $3::time, $4, $5, $6, $7, $8, $9, $10, $11, now(), now())
	RETURNING ` + scheduleColumns + `;`
	if err := s.db.Get(&out, q,
		sc.PlaylistID, sc.StartTime, sc.EndTime,
		sc.Monday, sc.Tuesday, sc.Wednesday, sc.Thursday, sc.Friday, sc.Saturday, sc.Sunday,
		sc.IsActive,
	); err != nil {
		log.Error().Err(err).Int("playlist_id", sc.PlaylistID).Msg("[db] CreateSchedule failed")
		return model.PlaylistSchedule{}, err
	}
	return out, nil
}

func (s *pgStore) GetScheduleByID(playlistID, scheduleID int) (model.PlaylistSchedule, error) {
	var out model.PlaylistSchedule
	q := `SELECT ` + scheduleColumns + ` FROM playlist_schedules WHERE id = $1 AND playlist_id = $2;`
	if err := s.db.Get(&out, q, scheduleID, playlistID); err != nil {
		return model.PlaylistSchedule{}, err
	}
	return out, nil
}

func (s *pgStore) ListSchedules(playlistID int) ([]model.PlaylistSchedule, error) {
	var out []model.PlaylistSchedule
	q := `SELECT ` + scheduleColumns + ` FROM playlist_schedules WHERE playlist_id = $1 ORDER BY id;`
	if err := s.db.Select(&out, q, playlistID); err != nil {
		log.Error().Err(err).Int("playlist_id", playlistID).Msg("[db] ListSchedules failed")
		return nil, err
	}
	return out, nil
}

// ListActiveSchedules returns only is_active schedules. The resolver's
// "no schedules" check runs against this filtered set, so a playlist whose
// schedules are all deactivated behaves as if it had none.
func (s *pgStore) ListActiveSchedules(playlistID int) ([]model.PlaylistSchedule, error) {
	var out []model.PlaylistSchedule
	q := `SELECT ` + scheduleColumns + ` FROM playlist_schedules WHERE playlist_id = $1 AND is_active = true ORDER BY id;`
	if err := s.db.Select(&out, q, playlistID); err != nil {
		log.Error().Err(err).Int("playlist_id", playlistID).Msg("[db] ListActiveSchedules failed")
		return nil, err
	}
	return out, nil
}

func (s *pgStore) UpdateSchedule(sc model.PlaylistSchedule) error {
	_, err := s.db.Exec(`
		UPDATE playlist_schedules
		SET start_time = $3::time, end_time = $4::time,
		    monday = $5, tuesday = $6, wednesday = $7, thursday = $8,
		    friday = $9, saturday = $10, sunday = $11,
		    is_active = $12, updated_at = now()
		WHERE id = $1 AND playlist_id = $2;`,
		sc.ID, sc.PlaylistID, sc.StartTime, sc.EndTime,
		sc.Monday, sc.Tuesday, sc.Wednesday, sc.Thursday, sc.Friday, sc.Saturday, sc.Sunday,
		sc.IsActive,
	)
	if err != nil {
		log.Error().Err(err).Int("schedule_id", sc.ID).Msg("[db] UpdateSchedule failed")
	}
	return err
}

func (s *pgStore) DeleteSchedule(playlistID, scheduleID int) error {
	_, err := s.db.Exec(`DELETE FROM playlist_schedules WHERE id = $1 AND playlist_id = $2;`, scheduleID, playlistID)
	if err != nil {
		log.Error().Err(err).Int("schedule_id", scheduleID).Msg("[db] DeleteSchedule failed")
	}
	return err
}

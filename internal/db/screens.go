package db

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/christopherlanz-debug/dsV2/internal/model"
)

const screenColumns = `
	id, name, location, device_token, assigned_playlist_id,
	is_active, last_seen, created_by, created_at, updated_at`

func (s *pgStore) CreateScreen(name string, location *string, createdBy int) (model.Screen, error) {
	var sc model.Screen
	const q = `
	INSERT INTO screens (name, location, is_active, created_by, created_at, updated_at)
	VALUES ($1, $2, true, $3, now(), now())
	RETURNING ` + screenColumns + `;`
	if err := s.db.Get(&sc, q, name, location, createdBy); err != nil {
		log.Error().Err(err).Str("name", name).Msg("[db] CreateScreen failed")
		return model.Screen{}, err
	}
	return sc, nil
}

func (s *pgStore) GetScreenByID(id int) (model.Screen, error) {
	var sc model.Screen
	q := `SELECT ` + screenColumns + ` FROM screens WHERE id = $1;`
	if err := s.db.Get(&sc, q, id); err != nil {
		return model.Screen{}, err
	}
	return sc, nil
}

func (s *pgStore) GetScreenByName(name string) (*model.Screen, error) {
	var sc model.Screen
	q := `SELECT ` + screenColumns + ` FROM screens WHERE name = $1;`
	if err := s.db.Get(&sc, q, name); err != nil {
		return nil, err
	}
	return &sc, nil
}

func (s *pgStore) GetScreenByDeviceToken(token string) (*model.Screen, error) {
	var sc model.Screen
	q := `SELECT ` + screenColumns + ` FROM screens WHERE device_token = $1;`
	if err := s.db.Get(&sc, q, token); err != nil {
		return nil, err
	}
	return &sc, nil
}

func (s *pgStore) ListScreens() ([]model.Screen, error) {
	var out []model.Screen
	q := `SELECT ` + screenColumns + ` FROM screens ORDER BY id;`
	if err := s.db.Select(&out, q); err != nil {
		log.Error().Err(err).Msg("[db] ListScreens failed")
		return nil, err
	}
	return out, nil
}

func (s *pgStore) UpdateScreen(id int, name, location *string) error {
	_, err := s.db.Exec(`
		UPDATE screens
		SET name       = COALESCE($2, name),
		    location   = COALESCE($3, location),
		    updated_at = now()
		WHERE id = $1;`,
		id, name, location,
	)
	if err != nil {
		log.Error().Err(err).Int("screen_id", id).Msg("[db] UpdateScreen failed")
	}
	return err
}

func (s *pgStore) DeleteScreen(id int) error {
	_, err := s.db.Exec(`DELETE FROM screens WHERE id = $1;`, id)
	if err != nil {
		log.Error().Err(err).Int("screen_id", id).Msg("[db] DeleteScreen failed")
	}
	return err
}

// AssignPlaylistToScreen sets (or clears, with nil) the screen's manually
// configured default playlist.
func (s *pgStore) AssignPlaylistToScreen(screenID int, playlistID *int) error {
	_, err := s.db.Exec(`
		UPDATE screens
		SET assigned_playlist_id = $2, updated_at = now()
		WHERE id = $1;`,
		screenID, playlistID,
	)
	if err != nil {
		log.Error().Err(err).Int("screen_id", screenID).Msg("[db] AssignPlaylistToScreen failed")
	}
	return err
}

func (s *pgStore) SetScreenDeviceToken(screenID int, token string) error {
	_, err := s.db.Exec(`
		UPDATE screens
		SET device_token = $2, updated_at = now()
		WHERE id = $1;`,
		screenID, token,
	)
	if err != nil {
		log.Error().Err(err).Int("screen_id", screenID).Msg("[db] SetScreenDeviceToken failed")
	}
	return err
}

// TouchScreen records a heartbeat from the player.
func (s *pgStore) TouchScreen(screenID int, at time.Time) error {
	_, err := s.db.Exec(`UPDATE screens SET last_seen = $2 WHERE id = $1;`, screenID, at)
	return err
}

func (s *pgStore) ListScreensUsingPlaylist(playlistID int) ([]model.Screen, error) {
	var out []model.Screen
	q := `SELECT ` + screenColumns + ` FROM screens WHERE assigned_playlist_id = $1;`
	if err := s.db.Select(&out, q, playlistID); err != nil {
		log.Error().Err(err).Int("playlist_id", playlistID).Msg("[db] ListScreensUsingPlaylist failed")
		return nil, err
	}
	return out, nil
}

// ClearPlaylistAssignments detaches the playlist from every screen that
// references it. Runs before playlist deletion so screens fall back to Idle
// instead of pointing at a missing playlist.
func (s *pgStore) ClearPlaylistAssignments(playlistID int) error {
	_, err := s.db.Exec(`
		UPDATE screens
		SET assigned_playlist_id = NULL, updated_at = now()
		WHERE assigned_playlist_id = $1;`,
		playlistID,
	)
	if err != nil {
		log.Error().Err(err).Int("playlist_id", playlistID).Msg("[db] ClearPlaylistAssignments failed")
	}
	return err
}

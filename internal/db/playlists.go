package db

import (
	"github.com/rs/zerolog/log"

	"github.com/christopherlanz-debug/dsV2/internal/model"
)

func (s *pgStore) CreatePlaylist(name string, description *string, loop, shuffle bool, createdBy int) (model.Playlist, error) {
	var p model.Playlist
	const q = `
	INSERT INTO playlists (name, description, loop, shuffle, created_by, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, now(), now())
	RETURNING id, name, description, loop, shuffle, created_by, created_at, updated_at;`
	if err := s.db.Get(&p, q, name, description, loop, shuffle, createdBy); err != nil {
		log.Error().Err(err).Msg("[db] CreatePlaylist: failed to insert playlist")
		return model.Playlist{}, err
	}
	return p, nil
}

func (s *pgStore) GetPlaylistByID(id int) (model.Playlist, error) {
	var p model.Playlist
	const q = `
	SELECT id, name, description, loop, shuffle, created_by, created_at, updated_at
	  FROM playlists
	 WHERE id = $1;`
	if err := s.db.Get(&p, q, id); err != nil {
		return model.Playlist{}, err
	}
	items, err := s.ListPlaylistItems(id)
	if err != nil {
		return p, err
	}
	p.Items = items
	return p, nil
}

func (s *pgStore) ListPlaylists() ([]model.Playlist, error) {
	var out []model.Playlist
	const q = `
	SELECT id, name, description, loop, shuffle, created_by, created_at, updated_at
	  FROM playlists
	 ORDER BY id;`
	if err := s.db.Select(&out, q); err != nil {
		log.Error().Err(err).Msg("[db] ListPlaylists: failed to select playlists")
		return nil, err
	}
	for i := range out {
		items, err := s.ListPlaylistItems(out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Items = items
	}
	return out, nil
}

func (s *pgStore) UpdatePlaylist(id int, name, description *string, loop, shuffle *bool) error {
	_, err := s.db.Exec(`
		UPDATE playlists
		SET
		name        = COALESCE($2, name),
		description = COALESCE($3, description),
		loop        = COALESCE($4, loop),
		shuffle     = COALESCE($5, shuffle),
		updated_at  = now()
		WHERE id = $1;`,
		id, name, description, loop, shuffle,
	)
	if err != nil {
		log.Error().Err(err).Int("playlist_id", id).Msg("[db] UpdatePlaylist failed")
	}
	return err
}

func (s *pgStore) DeletePlaylist(id int) error {
	_, err := s.db.Exec(`DELETE FROM playlists WHERE id = $1;`, id)
	if err != nil {
		log.Error().Err(err).Int("playlist_id", id).Msg("[db] DeletePlaylist failed")
	}
	return err
}

// ListPlaylistItems returns the playlist's items in display order with the
// referenced content item joined in.
func (s *pgStore) ListPlaylistItems(playlistID int) ([]model.PlaylistItem, error) {
	type row struct {
		model.PlaylistItem
		CIContentID  int     `db:"ci_content_id"`
		CIItemNumber int     `db:"ci_item_number"`
		CIURL        string  `db:"ci_url"`
		CIMimeType   *string `db:"ci_mime_type"`
		CIDuration   int     `db:"ci_duration"`
	}
	var rows []row
	const q = `
	SELECT
	  pi.id, pi.playlist_id, pi.content_item_id, pi.position, pi.duration_override, pi.created_at,
	  ci.content_id  AS ci_content_id,
	  ci.item_number AS ci_item_number,
	  ci.url         AS ci_url,
	  ci.mime_type   AS ci_mime_type,
	  ci.duration    AS ci_duration
	FROM playlist_items pi
	JOIN content_items  ci ON pi.content_item_id = ci.id
	WHERE pi.playlist_id = $1
	ORDER BY pi.position;`
	if err := s.db.Select(&rows, q, playlistID); err != nil {
		log.Error().Err(err).Int("playlist_id", playlistID).Msg("[db] ListPlaylistItems failed")
		return nil, err
	}
	out := make([]model.PlaylistItem, 0, len(rows))
	for _, r := range rows {
		it := r.PlaylistItem
		it.ContentItem = &model.ContentItem{
			ID:         it.ContentItemID,
			ContentID:  r.CIContentID,
			ItemNumber: r.CIItemNumber,
			URL:        r.CIURL,
			MimeType:   r.CIMimeType,
			Duration:   r.CIDuration,
		}
		out = append(out, it)
	}
	return out, nil
}

// InsertPlaylistItem appends the content item at the end of the playlist. The
// position is computed inside the insert so concurrent appends cannot collide.
func (s *pgStore) InsertPlaylistItem(playlistID, contentItemID int, durationOverride *int) (model.PlaylistItem, error) {
	var it model.PlaylistItem
	const q = `
	INSERT INTO playlist_items (playlist_id, content_item_id, position, duration_override, created_at)
	VALUES (
	  $1, $2,
	  (SELECT COALESCE(MAX(position) + 1, 0) FROM playlist_items WHERE playlist_id = $1),
	  $3, now()
	)
	RETURNING id, playlist_id, content_item_id, position, duration_override, created_at;`
	if err := s.db.Get(&it, q, playlistID, contentItemID, durationOverride); err != nil {
		log.Error().Err(err).Int("playlist_id", playlistID).Msg("[db] InsertPlaylistItem failed")
		return model.PlaylistItem{}, err
	}
	return it, nil
}

// DeletePlaylistItem removes the item and re-densifies positions: every item
// that followed the removed one is shifted down by one, in the same
// transaction.
func (s *pgStore) DeletePlaylistItem(playlistID, itemID int) (err error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	var removedPos int
	if err = tx.Get(&removedPos, `
		DELETE FROM playlist_items
		 WHERE id = $1 AND playlist_id = $2
		RETURNING position;`, itemID, playlistID); err != nil {
		return err
	}

	_, err = tx.Exec(`
		UPDATE playlist_items
		   SET position = position - 1
		 WHERE playlist_id = $1
		   AND position > $2;`, playlistID, removedPos)
	return err
}

// ApplyReorder replaces the position assignment in one transaction. positions
// maps item id to its new position; permutation validation happens above this
// layer. The initial shift keeps old and new position ranges disjoint while
// rows are rewritten one by one.
func (s *pgStore) ApplyReorder(playlistID int, positions map[int]int) (err error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	count := len(positions)
	if _, err = tx.Exec(`
		UPDATE playlist_items
		   SET position = position + $1
		 WHERE playlist_id = $2;`, count, playlistID); err != nil {
		return err
	}

	for itemID, pos := range positions {
		if _, err = tx.Exec(`
			UPDATE playlist_items
			   SET position = $1
			 WHERE id = $2
			   AND playlist_id = $3;`, pos, itemID, playlistID); err != nil {
			return err
		}
	}
	return nil
}

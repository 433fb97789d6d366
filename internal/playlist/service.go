package playlist

import (
	"database/sql"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/christopherlanz-debug/dsV2/internal/db"
	"github.com/christopherlanz-debug/dsV2/internal/model"
)

// Service is the playlist order store. Mutations are validated against the
// in-memory collection, persisted through the backing store, and then applied
// to the collection, whose copy-on-write snapshots the playback engine reads
// without ever observing a mid-mutation ordering.
type Service struct {
	store db.Store

	mu          sync.Mutex
	collections map[int]*Collection
}

func NewService(store db.Store) *Service {
	return &Service{
		store:       store,
		collections: make(map[int]*Collection),
	}
}

func itemFromModel(it model.PlaylistItem) Item {
	return Item{
		ID:            it.ID,
		ContentItemID: it.ContentItemID,
		Duration:      it.EffectiveDuration(),
	}
}

// collection returns the cached collection for the playlist, loading it from
// the store on first use. Callers must hold s.mu.
func (s *Service) collection(playlistID int) (*Collection, error) {
	if coll, ok := s.collections[playlistID]; ok {
		return coll, nil
	}
	if _, err := s.store.GetPlaylistByID(playlistID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	rows, err := s.store.ListPlaylistItems(playlistID)
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(rows))
	for _, r := range rows {
		items = append(items, itemFromModel(r))
	}
	coll := NewCollection(items)
	s.collections[playlistID] = coll
	return coll, nil
}

// Snapshot returns the current immutable item view for the playlist.
func (s *Service) Snapshot(playlistID int) (Snapshot, error) {
	s.mu.Lock()
	coll, err := s.collection(playlistID)
	s.mu.Unlock()
	if err != nil {
		return Snapshot{}, err
	}
	return coll.Snapshot(), nil
}

// InsertItem appends a content item at the end of the playlist.
func (s *Service) InsertItem(playlistID, contentItemID int, durationOverride *int) (model.PlaylistItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll, err := s.collection(playlistID)
	if err != nil {
		return model.PlaylistItem{}, err
	}

	ci, err := s.store.GetContentItemByID(contentItemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.PlaylistItem{}, ErrNotFound
		}
		return model.PlaylistItem{}, err
	}

	for _, existing := range coll.Snapshot().Items {
		if existing.ContentItemID == contentItemID {
			return model.PlaylistItem{}, ErrDuplicateItem
		}
	}

	row, err := s.store.InsertPlaylistItem(playlistID, contentItemID, durationOverride)
	if err != nil {
		return model.PlaylistItem{}, err
	}
	row.ContentItem = &ci

	if _, err := coll.Insert(itemFromModel(row)); err != nil {
		// Store and cache disagree; reload from the store next read.
		log.Error().Err(err).Int("playlist_id", playlistID).Msg("[playlist] cache insert failed, invalidating")
		delete(s.collections, playlistID)
	}
	return row, nil
}

// RemoveItem deletes the item and re-densifies positions.
func (s *Service) RemoveItem(playlistID, itemID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll, err := s.collection(playlistID)
	if err != nil {
		return err
	}

	if err := s.store.DeletePlaylistItem(playlistID, itemID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	if err := coll.Remove(itemID); err != nil {
		log.Error().Err(err).Int("playlist_id", playlistID).Msg("[playlist] cache remove failed, invalidating")
		delete(s.collections, playlistID)
	}
	return nil
}

// Reorder atomically replaces the playlist's position assignment. The
// submission must be a full permutation of the current items.
func (s *Service) Reorder(playlistID int, ordering []OrderEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll, err := s.collection(playlistID)
	if err != nil {
		return err
	}

	if err := validateOrdering(coll.Snapshot().Items, ordering); err != nil {
		return err
	}

	positions := make(map[int]int, len(ordering))
	for _, entry := range ordering {
		positions[entry.ItemID] = entry.Position
	}
	if err := s.store.ApplyReorder(playlistID, positions); err != nil {
		return err
	}

	if err := coll.Reorder(ordering); err != nil {
		log.Error().Err(err).Int("playlist_id", playlistID).Msg("[playlist] cache reorder failed, invalidating")
		delete(s.collections, playlistID)
	}
	return nil
}

// Invalidate drops the cached collection, forcing a reload from the store on
// next read. Called when the playlist is deleted or mutated out-of-band.
func (s *Service) Invalidate(playlistID int) {
	s.mu.Lock()
	delete(s.collections, playlistID)
	s.mu.Unlock()
}

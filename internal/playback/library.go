package playback

import (
	"github.com/christopherlanz-debug/dsV2/internal/db"
	"github.com/christopherlanz-debug/dsV2/internal/model"
	"github.com/christopherlanz-debug/dsV2/internal/playlist"
)

// StoreLibrary adapts the persistence store and the playlist order store to
// the playback read surface.
type StoreLibrary struct {
	Store     db.Store
	Playlists *playlist.Service
}

var _ Library = StoreLibrary{}

func (l StoreLibrary) Screen(id int) (model.Screen, error) {
	return l.Store.GetScreenByID(id)
}

func (l StoreLibrary) Playlist(id int) (model.Playlist, error) {
	return l.Store.GetPlaylistByID(id)
}

func (l StoreLibrary) ActiveSchedules(playlistID int) ([]model.PlaylistSchedule, error) {
	return l.Store.ListActiveSchedules(playlistID)
}

func (l StoreLibrary) Snapshot(playlistID int) (playlist.Snapshot, error) {
	return l.Playlists.Snapshot(playlistID)
}

// Store exposes the persistence operations passed to the API and the playback
// engine. Both read through this interface so tests can substitute a memory
// implementation.
package db

import (
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/christopherlanz-debug/dsV2/internal/model"
)

type Store interface {
	// user functions
	CreateUser(email, hashedPassword string, name *string) (int, error)
	GetUserByEmail(email string) (*model.User, error)
	GetUserByID(id int) (*model.User, error)

	// content functions
	CreateContent(title, contentType, url string, mimeType *string, duration int, pageCount *int, createdBy int) (model.Content, error)
	GetContentByID(id int) (model.Content, error)
	ListContent() ([]model.Content, error)
	DeleteContent(id int) error
	CreateContentItem(contentID, itemNumber int, url string, mimeType *string, duration int) (model.ContentItem, error)
	GetContentItemByID(id int) (model.ContentItem, error)
	ListContentItems(contentID int) ([]model.ContentItem, error)

	// playlist functions
	CreatePlaylist(name string, description *string, loop, shuffle bool, createdBy int) (model.Playlist, error)
	GetPlaylistByID(id int) (model.Playlist, error)
	ListPlaylists() ([]model.Playlist, error)
	UpdatePlaylist(id int, name, description *string, loop, shuffle *bool) error
	DeletePlaylist(id int) error
	ListPlaylistItems(playlistID int) ([]model.PlaylistItem, error)
	InsertPlaylistItem(playlistID, contentItemID int, durationOverride *int) (model.PlaylistItem, error)
	DeletePlaylistItem(playlistID, itemID int) error
	ApplyReorder(playlistID int, positions map[int]int) error

	// schedule functions
	CreateSchedule(s model.PlaylistSchedule) (model.PlaylistSchedule, error)
	GetScheduleByID(playlistID, scheduleID int) (model.PlaylistSchedule, error)
	ListSchedules(playlistID int) ([]model.PlaylistSchedule, error)
	ListActiveSchedules(playlistID int) ([]model.PlaylistSchedule, error)
	UpdateSchedule(s model.PlaylistSchedule) error
	DeleteSchedule(playlistID, scheduleID int) error

	// screen functions
	CreateScreen(name string, location *string, createdBy int) (model.Screen, error)
	GetScreenByID(id int) (model.Screen, error)
	GetScreenByName(name string) (*model.Screen, error)
	GetScreenByDeviceToken(token string) (*model.Screen, error)
	ListScreens() ([]model.Screen, error)
	UpdateScreen(id int, name, location *string) error
	DeleteScreen(id int) error
	AssignPlaylistToScreen(screenID int, playlistID *int) error
	SetScreenDeviceToken(screenID int, token string) error
	TouchScreen(screenID int, at time.Time) error
	ListScreensUsingPlaylist(playlistID int) ([]model.Screen, error)
	ClearPlaylistAssignments(playlistID int) error
}

type pgStore struct {
	db *sqlx.DB
}

// compile-time check that pgStore implements Store
var _ Store = (*pgStore)(nil)

func NewStore(database *sqlx.DB) Store {
	if database == nil {
		database = DB
	}
	return &pgStore{db: database}
}

package db

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/christopherlanz-debug/dsV2/internal/model"
)

// TestStoreIntegration runs the pg store against a real database. Skipped
// unless TEST_DATABASE_URL points at a disposable Postgres instance.
func TestStoreIntegration(t *testing.T) {
	if os.Getenv("TEST_DATABASE_URL") == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	require.NoError(t, InitTestDB("../../migrations"))
	store := TestStore

	userID, err := store.CreateUser("store-it@example.com", "hashedpassword", nil)
	require.NoError(t, err)
	require.Greater(t, userID, 0)

	t.Run("content and items", func(t *testing.T) {
		mime := "image/png"
		content, err := store.CreateContent("Lobby Poster", "image", "/uploads/poster.png", &mime, 15, nil, userID)
		require.NoError(t, err)
		assert.Equal(t, "Lobby Poster", content.Title)

		item, err := store.CreateContentItem(content.ID, 1, content.URL, content.MimeType, content.Duration)
		require.NoError(t, err)

		got, err := store.GetContentByID(content.ID)
		require.NoError(t, err)
		require.Len(t, got.Items, 1)
		assert.Equal(t, item.ID, got.Items[0].ID)
	})

	t.Run("playlist items keep dense positions", func(t *testing.T) {
		mime := "video/mp4"
		content, err := store.CreateContent("Promo Reel", "video", "/uploads/promo.mp4", &mime, 30, nil, userID)
		require.NoError(t, err)

		var itemIDs []int
		for n := 1; n <= 3; n++ {
			ci, err := store.CreateContentItem(content.ID, n, content.URL, content.MimeType, content.Duration)
			require.NoError(t, err)
			itemIDs = append(itemIDs, ci.ID)
		}

		playlist, err := store.CreatePlaylist("Morning Loop", nil, true, false, userID)
		require.NoError(t, err)
		for _, ciID := range itemIDs {
			_, err := store.InsertPlaylistItem(playlist.ID, ciID, nil)
			require.NoError(t, err)
		}

		items, err := store.ListPlaylistItems(playlist.ID)
		require.NoError(t, err)
		require.Len(t, items, 3)
		for i, it := range items {
			assert.Equal(t, i, it.Position)
		}

		// removing the middle item shifts the tail down
		require.NoError(t, store.DeletePlaylistItem(playlist.ID, items[1].ID))
		items, err = store.ListPlaylistItems(playlist.ID)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, 0, items[0].Position)
		assert.Equal(t, 1, items[1].Position)

		// swap the remaining two
		require.NoError(t, store.ApplyReorder(playlist.ID, map[int]int{
			items[0].ID: 1,
			items[1].ID: 0,
		}))
		reordered, err := store.ListPlaylistItems(playlist.ID)
		require.NoError(t, err)
		assert.Equal(t, items[1].ID, reordered[0].ID)
		assert.Equal(t, items[0].ID, reordered[1].ID)
	})

	t.Run("schedules filter on is_active", func(t *testing.T) {
		playlist, err := store.CreatePlaylist("Scheduled Loop", nil, true, false, userID)
		require.NoError(t, err)

		active, err := store.CreateSchedule(model.PlaylistSchedule{
			PlaylistID: playlist.ID,
			StartTime:  "09:00:00",
			EndTime:    "17:00:00",
			Monday:     true,
			IsActive:   true,
		})
		require.NoError(t, err)
		_, err = store.CreateSchedule(model.PlaylistSchedule{
			PlaylistID: playlist.ID,
			StartTime:  "18:00:00",
			EndTime:    "20:00:00",
			Friday:     true,
			IsActive:   false,
		})
		require.NoError(t, err)

		all, err := store.ListSchedules(playlist.ID)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		live, err := store.ListActiveSchedules(playlist.ID)
		require.NoError(t, err)
		require.Len(t, live, 1)
		assert.Equal(t, active.ID, live[0].ID)
		assert.Equal(t, "09:00:00", live[0].StartTime)
	})

	t.Run("screen lifecycle", func(t *testing.T) {
		location := "Lobby"
		screen, err := store.CreateScreen("Main Display", &location, userID)
		require.NoError(t, err)

		require.NoError(t, store.SetScreenDeviceToken(screen.ID, "it-token"))
		byToken, err := store.GetScreenByDeviceToken("it-token")
		require.NoError(t, err)
		assert.Equal(t, screen.ID, byToken.ID)

		playlist, err := store.CreatePlaylist("Assigned Loop", nil, true, false, userID)
		require.NoError(t, err)
		require.NoError(t, store.AssignPlaylistToScreen(screen.ID, &playlist.ID))

		using, err := store.ListScreensUsingPlaylist(playlist.ID)
		require.NoError(t, err)
		require.Len(t, using, 1)

		require.NoError(t, store.ClearPlaylistAssignments(playlist.ID))
		got, err := store.GetScreenByID(screen.ID)
		require.NoError(t, err)
		assert.Nil(t, got.AssignedPlaylistID)

		now := time.Now().UTC().Truncate(time.Second)
		require.NoError(t, store.TouchScreen(screen.ID, now))
		got, err = store.GetScreenByID(screen.ID)
		require.NoError(t, err)
		require.NotNil(t, got.LastSeen)
		assert.WithinDuration(t, now, *got.LastSeen, time.Second)
	})
}

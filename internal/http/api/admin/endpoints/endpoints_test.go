package endpoints

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/christopherlanz-debug/dsV2/internal/db"
	"github.com/christopherlanz-debug/dsV2/internal/http/api/admin/packets"
	"github.com/christopherlanz-debug/dsV2/internal/model"
	"github.com/christopherlanz-debug/dsV2/internal/playlist"
)

type testEnv struct {
	router    *gin.Engine
	store     *db.MemStore
	playlists *playlist.Service
	user      *model.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := db.NewMemStore()
	userID, err := store.CreateUser("admin@example.com", "hash", nil)
	require.NoError(t, err)
	user, err := store.GetUserByID(userID)
	require.NoError(t, err)

	playlists := playlist.NewService(store)

	r := gin.New()
	grp := r.Group("/api/admin")
	grp.Use(func(c *gin.Context) { c.Set("currentUser", user) })
	RegisterPlaylistRoutes(grp, store, playlists, nil)
	RegisterScheduleRoutes(grp, store, nil)
	RegisterScreenRoutes(grp, store, nil, 90*time.Second)

	return &testEnv{router: r, store: store, playlists: playlists, user: user}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}

// seedContentItem creates a content record with one item and returns the
// content item ID.
func (e *testEnv) seedContentItem(t *testing.T, duration int) int {
	t.Helper()
	c, err := e.store.CreateContent(fmt.Sprintf("media-%d", duration), model.ContentTypeImage,
		"/uploads/x.png", nil, duration, nil, e.user.ID)
	require.NoError(t, err)
	ci, err := e.store.CreateContentItem(c.ID, 1, c.URL, nil, duration)
	require.NoError(t, err)
	return ci.ID
}

func (e *testEnv) seedPlaylist(t *testing.T) packets.PlaylistResponse {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/admin/playlists",
		packets.CreatePlaylistRequest{Name: "lobby loop", Loop: true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[packets.PlaylistResponse](t, w)
}

func TestPlaylistCRUD(t *testing.T) {
	e := newTestEnv(t)

	pl := e.seedPlaylist(t)
	assert.True(t, pl.Loop)
	assert.Empty(t, pl.Items)

	w := e.do(t, http.MethodGet, fmt.Sprintf("/api/admin/playlists/%d", pl.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	newName := "entrance loop"
	w = e.do(t, http.MethodPut, fmt.Sprintf("/api/admin/playlists/%d", pl.ID),
		packets.UpdatePlaylistRequest{Name: &newName})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, newName, decode[packets.PlaylistResponse](t, w).Name)

	w = e.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/playlists/%d", pl.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodGet, fmt.Sprintf("/api/admin/playlists/%d", pl.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddItemAssignsDensePositions(t *testing.T) {
	e := newTestEnv(t)
	pl := e.seedPlaylist(t)

	for i := 0; i < 3; i++ {
		ciID := e.seedContentItem(t, 10+i)
		w := e.do(t, http.MethodPost, fmt.Sprintf("/api/admin/playlists/%d/items", pl.ID),
			packets.AddPlaylistItemRequest{ContentItemID: ciID})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		item := decode[packets.PlaylistItemResponse](t, w)
		assert.Equal(t, i, item.Position)
	}
}

func TestAddItemRejectsDuplicate(t *testing.T) {
	e := newTestEnv(t)
	pl := e.seedPlaylist(t)
	ciID := e.seedContentItem(t, 10)

	w := e.do(t, http.MethodPost, fmt.Sprintf("/api/admin/playlists/%d/items", pl.ID),
		packets.AddPlaylistItemRequest{ContentItemID: ciID})
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodPost, fmt.Sprintf("/api/admin/playlists/%d/items", pl.ID),
		packets.AddPlaylistItemRequest{ContentItemID: ciID})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAddItemRejectsUnknownContentItem(t *testing.T) {
	e := newTestEnv(t)
	pl := e.seedPlaylist(t)

	w := e.do(t, http.MethodPost, fmt.Sprintf("/api/admin/playlists/%d/items", pl.ID),
		packets.AddPlaylistItemRequest{ContentItemID: 9999})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDurationOverrideWinsOverIntrinsic(t *testing.T) {
	e := newTestEnv(t)
	pl := e.seedPlaylist(t)
	ciID := e.seedContentItem(t, 10)

	override := 25
	w := e.do(t, http.MethodPost, fmt.Sprintf("/api/admin/playlists/%d/items", pl.ID),
		packets.AddPlaylistItemRequest{ContentItemID: ciID, Duration: &override})
	require.Equal(t, http.StatusOK, w.Code)
	item := decode[packets.PlaylistItemResponse](t, w)
	assert.Equal(t, 25, item.Duration)
	require.NotNil(t, item.DurationOverride)
	assert.Equal(t, 25, *item.DurationOverride)
}

func TestRemoveItemClosesGap(t *testing.T) {
	e := newTestEnv(t)
	pl := e.seedPlaylist(t)

	var ids []int
	for i := 0; i < 3; i++ {
		w := e.do(t, http.MethodPost, fmt.Sprintf("/api/admin/playlists/%d/items", pl.ID),
			packets.AddPlaylistItemRequest{ContentItemID: e.seedContentItem(t, 10)})
		require.Equal(t, http.StatusOK, w.Code)
		ids = append(ids, decode[packets.PlaylistItemResponse](t, w).ID)
	}

	w := e.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/playlists/%d/items/%d", pl.ID, ids[1]), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodGet, fmt.Sprintf("/api/admin/playlists/%d/items", pl.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	items := decode[[]packets.PlaylistItemResponse](t, w)
	require.Len(t, items, 2)
	assert.Equal(t, 0, items[0].Position)
	assert.Equal(t, ids[0], items[0].ID)
	assert.Equal(t, 1, items[1].Position)
	assert.Equal(t, ids[2], items[1].ID)
}

func TestReorderAllOrNothing(t *testing.T) {
	e := newTestEnv(t)
	pl := e.seedPlaylist(t)

	var ids []int
	for i := 0; i < 3; i++ {
		w := e.do(t, http.MethodPost, fmt.Sprintf("/api/admin/playlists/%d/items", pl.ID),
			packets.AddPlaylistItemRequest{ContentItemID: e.seedContentItem(t, 10)})
		require.Equal(t, http.StatusOK, w.Code)
		ids = append(ids, decode[packets.PlaylistItemResponse](t, w).ID)
	}

	// partial submission is rejected and nothing moves
	w := e.do(t, http.MethodPut, fmt.Sprintf("/api/admin/playlists/%d/items", pl.ID),
		packets.ReorderPlaylistRequest{Ordering: []packets.ReorderEntry{
			{ID: ids[0], Order: 1},
			{ID: ids[1], Order: 0},
		}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = e.do(t, http.MethodGet, fmt.Sprintf("/api/admin/playlists/%d/items", pl.ID), nil)
	items := decode[[]packets.PlaylistItemResponse](t, w)
	assert.Equal(t, ids[0], items[0].ID, "ordering untouched after rejected reorder")

	// full permutation succeeds
	w = e.do(t, http.MethodPut, fmt.Sprintf("/api/admin/playlists/%d/items", pl.ID),
		packets.ReorderPlaylistRequest{Ordering: []packets.ReorderEntry{
			{ID: ids[2], Order: 0},
			{ID: ids[0], Order: 1},
			{ID: ids[1], Order: 2},
		}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	items = decode[[]packets.PlaylistItemResponse](t, w)
	require.Len(t, items, 3)
	assert.Equal(t, ids[2], items[0].ID)
	assert.Equal(t, ids[0], items[1].ID)
	assert.Equal(t, ids[1], items[2].ID)
}

func TestScheduleValidation(t *testing.T) {
	e := newTestEnv(t)
	pl := e.seedPlaylist(t)
	base := fmt.Sprintf("/api/admin/playlists/%d/schedules", pl.ID)

	// overnight window rejected
	w := e.do(t, http.MethodPost, base, packets.CreateScheduleRequest{
		StartTime: "22:00:00", EndTime: "06:00:00", Monday: true,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// valid business-hours window
	w = e.do(t, http.MethodPost, base, packets.CreateScheduleRequest{
		StartTime: "09:00:00", EndTime: "17:00:00", Monday: true, Tuesday: true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	created := decode[packets.ScheduleResponse](t, w)
	assert.True(t, created.IsActive, "schedules default to active")

	// overlapping window on a shared day conflicts
	w = e.do(t, http.MethodPost, base, packets.CreateScheduleRequest{
		StartTime: "16:00:00", EndTime: "18:00:00", Monday: true,
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// same window on disjoint days is fine
	w = e.do(t, http.MethodPost, base, packets.CreateScheduleRequest{
		StartTime: "16:00:00", EndTime: "18:00:00", Saturday: true,
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestScheduleUpdateAndDelete(t *testing.T) {
	e := newTestEnv(t)
	pl := e.seedPlaylist(t)
	base := fmt.Sprintf("/api/admin/playlists/%d/schedules", pl.ID)

	w := e.do(t, http.MethodPost, base, packets.CreateScheduleRequest{
		StartTime: "09:00:00", EndTime: "17:00:00", Monday: true,
	})
	require.Equal(t, http.StatusOK, w.Code)
	created := decode[packets.ScheduleResponse](t, w)

	// shrinking its own window must not collide with itself
	w = e.do(t, http.MethodPut, fmt.Sprintf("%s/%d", base, created.ID), packets.CreateScheduleRequest{
		StartTime: "10:00:00", EndTime: "16:00:00", Monday: true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "10:00:00", decode[packets.ScheduleResponse](t, w).StartTime)

	w = e.do(t, http.MethodDelete, fmt.Sprintf("%s/%d", base, created.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodGet, fmt.Sprintf("%s/%d", base, created.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestScreenAssignment(t *testing.T) {
	e := newTestEnv(t)
	pl := e.seedPlaylist(t)

	w := e.do(t, http.MethodPost, "/api/admin/screens",
		packets.CreateScreenRequest{Name: "lobby"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	screen := decode[packets.ScreenResponse](t, w)
	assert.Nil(t, screen.AssignedPlaylistID)
	assert.False(t, screen.Online, "no heartbeat yet")

	w = e.do(t, http.MethodPost, fmt.Sprintf("/api/admin/screens/%d/playlist", screen.ID),
		packets.AssignPlaylistToScreenRequest{PlaylistID: pl.ID})
	require.Equal(t, http.StatusOK, w.Code)
	assigned := decode[packets.ScreenResponse](t, w)
	require.NotNil(t, assigned.AssignedPlaylistID)
	assert.Equal(t, pl.ID, *assigned.AssignedPlaylistID)

	w = e.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/screens/%d/playlist", screen.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode[packets.ScreenResponse](t, w).AssignedPlaylistID)
}

func TestScreenDuplicateName(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(t, http.MethodPost, "/api/admin/screens", packets.CreateScreenRequest{Name: "lobby"})
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodPost, "/api/admin/screens", packets.CreateScreenRequest{Name: "lobby"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestPlaylistDeleteClearsScreenAssignment(t *testing.T) {
	e := newTestEnv(t)
	pl := e.seedPlaylist(t)

	w := e.do(t, http.MethodPost, "/api/admin/screens", packets.CreateScreenRequest{Name: "lobby"})
	require.Equal(t, http.StatusOK, w.Code)
	screen := decode[packets.ScreenResponse](t, w)

	w = e.do(t, http.MethodPost, fmt.Sprintf("/api/admin/screens/%d/playlist", screen.ID),
		packets.AssignPlaylistToScreenRequest{PlaylistID: pl.ID})
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/playlists/%d", pl.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodGet, fmt.Sprintf("/api/admin/screens/%d", screen.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode[packets.ScreenResponse](t, w).AssignedPlaylistID,
		"deleting a playlist unassigns the screens that used it")
}

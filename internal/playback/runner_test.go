package playback

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/christopherlanz-debug/dsV2/internal/events"
	"github.com/christopherlanz-debug/dsV2/internal/model"
	"github.com/christopherlanz-debug/dsV2/internal/playlist"
)

type fakeLibrary struct {
	mu        sync.Mutex
	screen    model.Screen
	screenErr error
	schedules []model.PlaylistSchedule
	schedErr  error
	playlists map[int]model.Playlist
	snapshots map[int]playlist.Snapshot
	snapErr   error
}

func (f *fakeLibrary) Screen(id int) (model.Screen, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.screen, f.screenErr
}

func (f *fakeLibrary) Playlist(id int) (model.Playlist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.playlists[id], nil
}

func (f *fakeLibrary) ActiveSchedules(playlistID int) ([]model.PlaylistSchedule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.schedules, f.schedErr
}

func (f *fakeLibrary) Snapshot(playlistID int) (playlist.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshots[playlistID], f.snapErr
}

type displayCall struct {
	screenID      int
	contentItemID int
	seconds       int
}

type fakeDisplay struct {
	mu    sync.Mutex
	calls []displayCall
	ch    chan displayCall
}

func newFakeDisplay() *fakeDisplay {
	return &fakeDisplay{ch: make(chan displayCall, 16)}
}

func (f *fakeDisplay) Display(screenID, contentItemID, seconds int) error {
	call := displayCall{screenID: screenID, contentItemID: contentItemID, seconds: seconds}
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
	select {
	case f.ch <- call:
	default:
	}
	return nil
}

func (f *fakeDisplay) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// monday noon, inside business hours
var testNow = time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

func assignedScreen(playlistID int) model.Screen {
	return model.Screen{ID: 1, Name: "lobby", AssignedPlaylistID: &playlistID}
}

func testItems() []playlist.Item {
	return []playlist.Item{
		{ID: 1, ContentItemID: 10, Duration: 5},
		{ID: 2, ContentItemID: 20, Duration: 3},
	}
}

func newTestRunner(lib Library, disp Display, bus *events.Bus) *Runner {
	r := NewRunner(1, lib, disp, bus, fixedClock{t: testNow}, time.Minute, zerolog.Nop())
	// the loop normally owns this timer
	r.itemTimer = time.NewTimer(time.Hour)
	r.stopItemTimer()
	return r
}

func TestResolveNoAssignmentStaysIdle(t *testing.T) {
	lib := &fakeLibrary{screen: model.Screen{ID: 1, Name: "lobby"}}
	disp := newFakeDisplay()
	r := newTestRunner(lib, disp, events.NewBus())

	r.resolve()

	assert.Equal(t, StateIdle, r.seq.State())
	assert.Zero(t, disp.callCount())
}

func TestResolveSeedsAndDisplaysFirstItem(t *testing.T) {
	lib := &fakeLibrary{
		screen:    assignedScreen(7),
		playlists: map[int]model.Playlist{7: {ID: 7, Loop: true}},
		snapshots: map[int]playlist.Snapshot{7: {Version: 1, Items: testItems()}},
	}
	disp := newFakeDisplay()
	r := newTestRunner(lib, disp, events.NewBus())

	r.resolve()

	assert.Equal(t, StatePlaying, r.seq.State())
	require.Equal(t, 1, disp.callCount())
	assert.Equal(t, displayCall{screenID: 1, contentItemID: 10, seconds: 5}, disp.calls[0])
}

func TestResolveOutsideScheduleWindowGoesIdle(t *testing.T) {
	lib := &fakeLibrary{
		screen: assignedScreen(7),
		schedules: []model.PlaylistSchedule{{
			StartTime: "09:00:00", EndTime: "10:00:00",
			Monday: true, IsActive: true,
		}},
		playlists: map[int]model.Playlist{7: {ID: 7, Loop: true}},
		snapshots: map[int]playlist.Snapshot{7: {Version: 1, Items: testItems()}},
	}
	disp := newFakeDisplay()
	r := newTestRunner(lib, disp, events.NewBus())

	r.resolve()

	assert.Equal(t, StateIdle, r.seq.State(), "noon is outside the 09-10 window")
	assert.Zero(t, disp.callCount())
}

func TestResolveFailStaticOnBackendError(t *testing.T) {
	lib := &fakeLibrary{
		screen:    assignedScreen(7),
		playlists: map[int]model.Playlist{7: {ID: 7, Loop: true}},
		snapshots: map[int]playlist.Snapshot{7: {Version: 1, Items: testItems()}},
	}
	disp := newFakeDisplay()
	r := newTestRunner(lib, disp, events.NewBus())

	r.resolve()
	require.Equal(t, StatePlaying, r.seq.State())

	lib.mu.Lock()
	lib.screenErr = assert.AnError
	lib.mu.Unlock()

	r.resolve()

	assert.Equal(t, StatePlaying, r.seq.State(), "backend error keeps the current item")
	assert.Equal(t, 1, disp.callCount(), "no re-display on failed resolution")
}

func TestResolveEmptyPlaylistReportsConfigError(t *testing.T) {
	lib := &fakeLibrary{
		screen:    assignedScreen(7),
		playlists: map[int]model.Playlist{7: {ID: 7}},
		snapshots: map[int]playlist.Snapshot{7: {Version: 1}},
	}
	disp := newFakeDisplay()
	bus := events.NewBus()
	errs := bus.Subscribe(events.EventConfigError)
	r := newTestRunner(lib, disp, bus)

	r.resolve()

	assert.Equal(t, StateIdle, r.seq.State())
	select {
	case payload := <-errs:
		assert.Equal(t, 7, payload["playlist_id"])
	default:
		t.Fatal("expected a config error event")
	}
}

func TestResolvePicksUpVersionDrift(t *testing.T) {
	lib := &fakeLibrary{
		screen:    assignedScreen(7),
		playlists: map[int]model.Playlist{7: {ID: 7, Loop: true}},
		snapshots: map[int]playlist.Snapshot{7: {Version: 1, Items: testItems()}},
	}
	disp := newFakeDisplay()
	r := newTestRunner(lib, disp, events.NewBus())

	r.resolve()
	require.Equal(t, uint64(1), r.seq.Version())

	// the item set mutated without a mutation event reaching this runner
	lib.mu.Lock()
	lib.snapshots[7] = playlist.Snapshot{Version: 2, Items: []playlist.Item{
		{ID: 1, ContentItemID: 10, Duration: 5},
	}}
	lib.mu.Unlock()

	r.resolve()

	assert.Equal(t, uint64(2), r.seq.Version())
	assert.Equal(t, StatePlaying, r.seq.State())
}

func TestPauseRemainingUsesInjectedClock(t *testing.T) {
	lib := &fakeLibrary{
		screen:    assignedScreen(7),
		playlists: map[int]model.Playlist{7: {ID: 7, Loop: true}},
		snapshots: map[int]playlist.Snapshot{7: {Version: 1, Items: testItems()}},
	}
	disp := newFakeDisplay()
	r := newTestRunner(lib, disp, events.NewBus())

	r.resolve()
	require.Equal(t, StatePlaying, r.seq.State())

	r.handle(command{kind: cmdPause})
	require.Equal(t, StatePaused, r.seq.State())

	// the injected clock has not advanced since the item was shown, so the
	// item's full 5s remain frozen
	remaining, ok := r.seq.Resume()
	require.True(t, ok)
	assert.Equal(t, 5*time.Second, remaining)
}

func TestManagerLifecycle(t *testing.T) {
	lib := &fakeLibrary{
		screen:    assignedScreen(7),
		playlists: map[int]model.Playlist{7: {ID: 7, Loop: true}},
		snapshots: map[int]playlist.Snapshot{7: {Version: 1, Items: testItems()}},
	}
	disp := newFakeDisplay()
	m := NewManager(lib, disp, events.NewBus(), fixedClock{t: testNow}, time.Minute, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = m.Run(ctx)
		close(done)
	}()

	m.StartScreen(1)

	select {
	case call := <-disp.ch:
		assert.Equal(t, 1, call.screenID)
		assert.Equal(t, 10, call.contentItemID)
	case <-time.After(5 * time.Second):
		t.Fatal("screen never displayed anything")
	}

	assert.Eventually(t, func() bool {
		state, running := m.ScreenState(1)
		return running && state == StatePlaying
	}, 5*time.Second, 10*time.Millisecond)

	// destroying the screen stops its loop immediately
	m.StopScreen(1)

	_, running := m.ScreenState(1)
	assert.False(t, running)

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("manager did not drain")
	}
}

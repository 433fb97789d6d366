package playback

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/christopherlanz-debug/dsV2/internal/playlist"
)

func snapOf(items ...playlist.Item) playlist.Snapshot {
	return playlist.Snapshot{Version: 1, Items: items}
}

func seededSequencer(t *testing.T, loop, shuffle bool, items ...playlist.Item) *Sequencer {
	t.Helper()
	q := NewSequencer(rand.New(rand.NewSource(1)))
	require.NoError(t, q.Load(42, loop, shuffle, snapOf(items...)))
	return q
}

func TestLoadRejectsEmptyPlaylist(t *testing.T) {
	q := NewSequencer(nil)
	err := q.Load(42, true, false, snapOf())
	assert.ErrorIs(t, err, ErrEmptyPlaylist)
	assert.Equal(t, StateIdle, q.State())
}

func TestLoadRejectsNonPositiveDuration(t *testing.T) {
	q := NewSequencer(nil)
	err := q.Load(42, true, false, snapOf(
		playlist.Item{ID: 1, ContentItemID: 10, Duration: 5},
		playlist.Item{ID: 2, ContentItemID: 20, Duration: 0},
	))
	assert.ErrorIs(t, err, ErrBadDuration)
	assert.Equal(t, StateIdle, q.State())
}

func TestSequentialPlaybackEndsWithoutLoop(t *testing.T) {
	q := seededSequencer(t, false, false,
		playlist.Item{ID: 1, ContentItemID: 10, Duration: 5},
		playlist.Item{ID: 2, ContentItemID: 20, Duration: 3},
	)

	cur, ok := q.Current()
	require.True(t, ok)
	assert.Equal(t, 1, cur.ID)

	next, ok := q.Advance()
	require.True(t, ok)
	assert.Equal(t, 2, next.ID)

	_, ok = q.Advance()
	assert.False(t, ok)
	assert.Equal(t, StateEnded, q.State())
}

func TestLoopRestartsCycle(t *testing.T) {
	q := seededSequencer(t, true, false,
		playlist.Item{ID: 1, ContentItemID: 10, Duration: 5},
		playlist.Item{ID: 2, ContentItemID: 20, Duration: 3},
	)

	q.Advance()
	next, ok := q.Advance()
	require.True(t, ok)
	assert.Equal(t, 1, next.ID, "loop restarts from a fresh cycle")
	assert.Equal(t, StatePlaying, q.State())
}

func TestShuffleCycleIsPermutationWithoutRepeats(t *testing.T) {
	items := []playlist.Item{
		{ID: 1, ContentItemID: 10, Duration: 1},
		{ID: 2, ContentItemID: 20, Duration: 1},
		{ID: 3, ContentItemID: 30, Duration: 1},
		{ID: 4, ContentItemID: 40, Duration: 1},
		{ID: 5, ContentItemID: 50, Duration: 1},
	}
	q := seededSequencer(t, true, true, items...)

	for cycle := 0; cycle < 3; cycle++ {
		seen := map[int]bool{}
		cur, ok := q.Current()
		require.True(t, ok)
		seen[cur.ID] = true
		for i := 1; i < len(items); i++ {
			next, ok := q.Advance()
			require.True(t, ok)
			assert.False(t, seen[next.ID], "item repeated within one cycle")
			seen[next.ID] = true
		}
		assert.Len(t, seen, len(items), "every item shown exactly once per cycle")
		// step into the next cycle
		_, ok = q.Advance()
		require.True(t, ok)
	}
}

func TestPauseFreezesRemainingTime(t *testing.T) {
	q := seededSequencer(t, true, false,
		playlist.Item{ID: 1, ContentItemID: 10, Duration: 10},
	)

	q.Pause(3 * time.Second)
	assert.Equal(t, StatePaused, q.State())

	_, ok := q.Advance()
	assert.False(t, ok, "no advancing while paused")

	remaining, ok := q.Resume()
	require.True(t, ok)
	assert.Equal(t, 3*time.Second, remaining)
	assert.Equal(t, StatePlaying, q.State())

	_, ok = q.Resume()
	assert.False(t, ok, "resume is a no-op when playing")
}

func TestApplySnapshotCurrentSurvivesReorder(t *testing.T) {
	q := seededSequencer(t, true, false,
		playlist.Item{ID: 1, ContentItemID: 10, Duration: 5},
		playlist.Item{ID: 2, ContentItemID: 20, Duration: 5},
		playlist.Item{ID: 3, ContentItemID: 30, Duration: 5},
	)
	q.Advance() // now on item 2

	// reorder: 3, 2, 1
	_, redisplay, err := q.ApplySnapshot(playlist.Snapshot{Version: 2, Items: []playlist.Item{
		{ID: 3, ContentItemID: 30, Duration: 5},
		{ID: 2, ContentItemID: 20, Duration: 5},
		{ID: 1, ContentItemID: 10, Duration: 5},
	}})
	require.NoError(t, err)
	assert.False(t, redisplay, "current item keeps playing uninterrupted")

	cur, ok := q.Current()
	require.True(t, ok)
	assert.Equal(t, 2, cur.ID)
}

func TestApplySnapshotRemovedCurrentAdvances(t *testing.T) {
	q := seededSequencer(t, false, false,
		playlist.Item{ID: 1, ContentItemID: 10, Duration: 5},
		playlist.Item{ID: 2, ContentItemID: 20, Duration: 5},
		playlist.Item{ID: 3, ContentItemID: 30, Duration: 5},
	)
	q.Advance() // on item 2

	item, redisplay, err := q.ApplySnapshot(playlist.Snapshot{Version: 2, Items: []playlist.Item{
		{ID: 1, ContentItemID: 10, Duration: 5},
		{ID: 3, ContentItemID: 30, Duration: 5},
	}})
	require.NoError(t, err)
	assert.True(t, redisplay)
	assert.Equal(t, 3, item.ID, "cursor moves to the next surviving item, not back to 1")

	// the already-played item 1 is not repeated this cycle
	_, ok := q.Advance()
	assert.False(t, ok)
	assert.Equal(t, StateEnded, q.State())
}

func TestApplySnapshotInsertedItemDueThisCycle(t *testing.T) {
	q := seededSequencer(t, false, false,
		playlist.Item{ID: 1, ContentItemID: 10, Duration: 5},
		playlist.Item{ID: 2, ContentItemID: 20, Duration: 5},
	)

	_, redisplay, err := q.ApplySnapshot(playlist.Snapshot{Version: 2, Items: []playlist.Item{
		{ID: 1, ContentItemID: 10, Duration: 5},
		{ID: 2, ContentItemID: 20, Duration: 5},
		{ID: 3, ContentItemID: 30, Duration: 5},
	}})
	require.NoError(t, err)
	assert.False(t, redisplay)

	next, ok := q.Advance()
	require.True(t, ok)
	assert.Equal(t, 2, next.ID)
	next, ok = q.Advance()
	require.True(t, ok)
	assert.Equal(t, 3, next.ID, "inserted item plays before the cycle ends")
}

func TestApplySnapshotAllRemainingRemovedNoLoop(t *testing.T) {
	q := seededSequencer(t, false, false,
		playlist.Item{ID: 1, ContentItemID: 10, Duration: 5},
		playlist.Item{ID: 2, ContentItemID: 20, Duration: 5},
	)
	q.Advance() // on item 2

	_, _, err := q.ApplySnapshot(playlist.Snapshot{Version: 2, Items: []playlist.Item{
		{ID: 1, ContentItemID: 10, Duration: 5},
	}})
	require.NoError(t, err)
	assert.Equal(t, StateEnded, q.State(), "nothing unplayed left and loop is off")
}

func TestApplySnapshotAllRemainingRemovedWithLoop(t *testing.T) {
	q := seededSequencer(t, true, false,
		playlist.Item{ID: 1, ContentItemID: 10, Duration: 5},
		playlist.Item{ID: 2, ContentItemID: 20, Duration: 5},
	)
	q.Advance() // on item 2

	item, redisplay, err := q.ApplySnapshot(playlist.Snapshot{Version: 2, Items: []playlist.Item{
		{ID: 1, ContentItemID: 10, Duration: 5},
	}})
	require.NoError(t, err)
	assert.True(t, redisplay)
	assert.Equal(t, 1, item.ID, "looping playlist starts a fresh cycle")
	assert.Equal(t, StatePlaying, q.State())
}

func TestApplySnapshotEmptyParksIdle(t *testing.T) {
	q := seededSequencer(t, true, false,
		playlist.Item{ID: 1, ContentItemID: 10, Duration: 5},
	)

	_, _, err := q.ApplySnapshot(playlist.Snapshot{Version: 2})
	assert.ErrorIs(t, err, ErrEmptyPlaylist)
	assert.Equal(t, StateIdle, q.State())
}

func TestApplySnapshotWhilePausedKeepsFrozenTime(t *testing.T) {
	q := seededSequencer(t, true, false,
		playlist.Item{ID: 1, ContentItemID: 10, Duration: 5},
		playlist.Item{ID: 2, ContentItemID: 20, Duration: 5},
	)
	q.Pause(2 * time.Second)

	// current item survives the mutation; the frozen remaining time holds
	_, redisplay, err := q.ApplySnapshot(playlist.Snapshot{Version: 2, Items: []playlist.Item{
		{ID: 2, ContentItemID: 20, Duration: 5},
		{ID: 1, ContentItemID: 10, Duration: 5},
	}})
	require.NoError(t, err)
	assert.False(t, redisplay)
	assert.Equal(t, StatePaused, q.State())

	remaining, ok := q.Resume()
	require.True(t, ok)
	assert.Equal(t, 2*time.Second, remaining)
}

func TestVersionTracksSnapshot(t *testing.T) {
	q := seededSequencer(t, true, false,
		playlist.Item{ID: 1, ContentItemID: 10, Duration: 5},
	)
	assert.Equal(t, uint64(1), q.Version())

	_, _, err := q.ApplySnapshot(playlist.Snapshot{Version: 7, Items: []playlist.Item{
		{ID: 1, ContentItemID: 10, Duration: 5},
	}})
	require.NoError(t, err)
	assert.Equal(t, uint64(7), q.Version())
}

package playback

import (
	"math/rand"
	"time"

	"github.com/christopherlanz-debug/dsV2/internal/playlist"
)

// Sequencer drives a stateful cursor over a resolved playlist's ordered
// items. It is a pure state machine: timers live in the Runner, which asks
// the sequencer what is showing and what comes next. The cycle is tracked as
// a sequence of item identities, not positions, so live mutations to the item
// set re-anchor cleanly.
type Sequencer struct {
	playlistID int
	loop       bool
	shuffle    bool

	items   map[int]playlist.Item // by item ID
	order   []int                 // item IDs in playlist order
	version uint64

	state     State
	cycle     []int // item IDs in play order for the current cycle
	cyclePos  int
	remaining time.Duration // frozen remaining time while Paused

	rng *rand.Rand
}

// NewSequencer creates an idle sequencer. rng drives shuffle permutations;
// pass nil for a time-seeded source.
func NewSequencer(rng *rand.Rand) *Sequencer {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Sequencer{state: StateIdle, rng: rng}
}

// State returns the current playback state.
func (q *Sequencer) State() State { return q.state }

// PlaylistID returns the playlist the sequencer was last seeded with, or 0
// when idle.
func (q *Sequencer) PlaylistID() int {
	if q.state == StateIdle {
		return 0
	}
	return q.playlistID
}

// Version returns the snapshot version the sequencer is playing from.
func (q *Sequencer) Version() uint64 { return q.version }

// Current returns the item under the cursor.
func (q *Sequencer) Current() (playlist.Item, bool) {
	if q.state != StatePlaying && q.state != StatePaused {
		return playlist.Item{}, false
	}
	it, ok := q.items[q.cycle[q.cyclePos]]
	return it, ok
}

// Load seeds the sequencer with a resolved playlist and transitions to
// Playing with the cursor on the first item of a fresh cycle. An empty
// snapshot or a non-positive effective duration is a configuration error: the
// sequencer parks in Idle and reports it.
func (q *Sequencer) Load(playlistID int, loop, shuffle bool, snap playlist.Snapshot) error {
	if len(snap.Items) == 0 {
		q.Reset()
		return ErrEmptyPlaylist
	}
	for _, it := range snap.Items {
		if it.Duration <= 0 {
			q.Reset()
			return ErrBadDuration
		}
	}

	q.playlistID = playlistID
	q.loop = loop
	q.shuffle = shuffle
	q.indexSnapshot(snap)
	q.cycle = q.newCycle()
	q.cyclePos = 0
	q.remaining = 0
	q.state = StatePlaying
	return nil
}

// Reset discards the cursor and returns to Idle.
func (q *Sequencer) Reset() {
	q.state = StateIdle
	q.playlistID = 0
	q.items = nil
	q.order = nil
	q.cycle = nil
	q.cyclePos = 0
	q.remaining = 0
	q.version = 0
}

func (q *Sequencer) indexSnapshot(snap playlist.Snapshot) {
	q.items = make(map[int]playlist.Item, len(snap.Items))
	q.order = make([]int, 0, len(snap.Items))
	for _, it := range snap.Items {
		q.items[it.ID] = it
		q.order = append(q.order, it.ID)
	}
	q.version = snap.Version
}

// newCycle produces the play order for one full traversal: playlist order, or
// a fresh uniform permutation when shuffling. Sampling without replacement
// within the cycle guarantees every item is shown exactly once per loop
// before any repeat.
func (q *Sequencer) newCycle() []int {
	cycle := append([]int(nil), q.order...)
	if q.shuffle {
		q.rng.Shuffle(len(cycle), func(i, j int) {
			cycle[i], cycle[j] = cycle[j], cycle[i]
		})
	}
	return cycle
}

// Advance moves the cursor to the next item. At the end of a cycle a looping
// playlist starts a fresh cycle (new permutation when shuffling); a
// non-looping playlist transitions to Ended and reports false.
func (q *Sequencer) Advance() (playlist.Item, bool) {
	if q.state != StatePlaying {
		return playlist.Item{}, false
	}
	q.cyclePos++
	if q.cyclePos >= len(q.cycle) {
		if !q.loop {
			q.state = StateEnded
			return playlist.Item{}, false
		}
		q.cycle = q.newCycle()
		q.cyclePos = 0
	}
	return q.items[q.cycle[q.cyclePos]], true
}

// Pause freezes the cursor, preserving the remaining display time of the
// current item so Resume continues mid-item.
func (q *Sequencer) Pause(remaining time.Duration) {
	if q.state != StatePlaying {
		return
	}
	if remaining < 0 {
		remaining = 0
	}
	q.remaining = remaining
	q.state = StatePaused
}

// Resume returns to Playing and reports the frozen remaining time the runner
// should rearm its timer with.
func (q *Sequencer) Resume() (time.Duration, bool) {
	if q.state != StatePaused {
		return 0, false
	}
	q.state = StatePlaying
	remaining := q.remaining
	q.remaining = 0
	return remaining, true
}

// ApplySnapshot re-anchors the cursor after a mutation to the currently
// playing playlist. Anchoring is by item identity, never numeric index: if
// the displayed item survived, playback resumes from it at its new position
// with its remaining time untouched; if it was removed, the cursor advances
// immediately to the next surviving item of the current cycle. The returned
// item and flag tell the runner whether it must re-display now.
func (q *Sequencer) ApplySnapshot(snap playlist.Snapshot) (playlist.Item, bool, error) {
	if q.state != StatePlaying && q.state != StatePaused {
		return playlist.Item{}, false, nil
	}
	if len(snap.Items) == 0 {
		q.Reset()
		return playlist.Item{}, false, ErrEmptyPlaylist
	}
	for _, it := range snap.Items {
		if it.Duration <= 0 {
			q.Reset()
			return playlist.Item{}, false, ErrBadDuration
		}
	}

	currentID := q.cycle[q.cyclePos]
	played := q.playedSet()
	oldTail := q.cycle[q.cyclePos+1:]

	q.indexSnapshot(snap)

	if _, survived := q.items[currentID]; survived {
		q.rebuildCycleAround(currentID, played)
		return playlist.Item{}, false, nil
	}

	// The displayed item is gone: advance to the next surviving item of the
	// old cycle without restarting the cycle or repeating what was shown.
	for _, id := range oldTail {
		if _, ok := q.items[id]; ok {
			q.rebuildCycleAround(id, played)
			q.remaining = 0
			if q.state == StatePaused {
				q.state = StatePlaying
			}
			return q.items[id], true, nil
		}
	}

	// Nothing left in this cycle.
	if !q.loop {
		q.state = StateEnded
		return playlist.Item{}, false, nil
	}
	q.cycle = q.newCycle()
	q.cyclePos = 0
	q.remaining = 0
	if q.state == StatePaused {
		q.state = StatePlaying
	}
	return q.items[q.cycle[0]], true, nil
}

// playedSet collects the item IDs already shown this cycle, excluding the
// current one.
func (q *Sequencer) playedSet() map[int]bool {
	played := make(map[int]bool, q.cyclePos)
	for _, id := range q.cycle[:q.cyclePos] {
		played[id] = true
	}
	return played
}

// rebuildCycleAround rebuilds the current cycle against the new item set so
// that already-played survivors stay behind the cursor, anchor is current,
// and everything not yet shown (including newly inserted items) is still due
// this cycle. Sequential playback keeps playlist order for the tail; shuffle
// re-randomizes only the unseen remainder.
func (q *Sequencer) rebuildCycleAround(anchor int, played map[int]bool) {
	var head, tail []int
	for _, id := range q.order {
		switch {
		case id == anchor:
		case played[id]:
			head = append(head, id)
		default:
			tail = append(tail, id)
		}
	}
	if q.shuffle {
		q.rng.Shuffle(len(tail), func(i, j int) {
			tail[i], tail[j] = tail[j], tail[i]
		})
	}
	q.cycle = append(append(head, anchor), tail...)
	q.cyclePos = len(head)
}

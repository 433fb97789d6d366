package playlist

import (
	"sync"
	"sync/atomic"
)

// Item is one entry of a playlist's ordered sequence, denormalized to the
// fields playback needs. Duration is the effective display time in seconds
// (override applied over the content item's intrinsic duration).
type Item struct {
	ID            int
	ContentItemID int
	Duration      int
}

// OrderEntry assigns an item a new position in a reorder submission.
type OrderEntry struct {
	ItemID   int `json:"id"`
	Position int `json:"order"`
}

// Snapshot is an immutable view of a playlist's items at some version. The
// Items slice is never mutated after publication, so readers may hold it
// across mutations without locking.
type Snapshot struct {
	Version uint64
	Items   []Item
}

// Collection owns the ordered item sequence of a single playlist and
// maintains the dense-position invariant: after any mutation, item positions
// are exactly 0..N-1 (the slice index is the position). Mutations are
// serialized; reads take the current snapshot atomically, so a concurrent
// reader never observes a mid-mutation ordering.
type Collection struct {
	mu   sync.Mutex
	snap atomic.Pointer[Snapshot]
}

// NewCollection builds a collection from items already in display order.
func NewCollection(items []Item) *Collection {
	c := &Collection{}
	c.snap.Store(&Snapshot{Version: 1, Items: append([]Item(nil), items...)})
	return c
}

// Snapshot returns the current immutable view.
func (c *Collection) Snapshot() Snapshot {
	return *c.snap.Load()
}

// Len returns the current item count.
func (c *Collection) Len() int {
	return len(c.snap.Load().Items)
}

func (c *Collection) publish(items []Item) {
	prev := c.snap.Load()
	c.snap.Store(&Snapshot{Version: prev.Version + 1, Items: items})
}

// Insert appends the item at position len(items). It fails with
// ErrDuplicateItem if the same content item is already a member. The new
// position is returned.
func (c *Collection) Insert(it Item) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cur := c.snap.Load().Items
	for _, existing := range cur {
		if existing.ContentItemID == it.ContentItemID {
			return 0, ErrDuplicateItem
		}
	}
	next := make([]Item, len(cur), len(cur)+1)
	copy(next, cur)
	next = append(next, it)
	c.publish(next)
	return len(next) - 1, nil
}

// Remove deletes the item and closes the gap, decrementing the position of
// every item that followed it. Fails with ErrNotFound if absent.
func (c *Collection) Remove(itemID int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cur := c.snap.Load().Items
	idx := -1
	for i, existing := range cur {
		if existing.ID == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotFound
	}
	next := make([]Item, 0, len(cur)-1)
	next = append(next, cur[:idx]...)
	next = append(next, cur[idx+1:]...)
	c.publish(next)
	return nil
}

// Reorder atomically replaces the position assignment. The submission must
// reference every current item exactly once with positions forming exactly
// 0..N-1; anything else fails with ErrInvalidOrdering and leaves the
// collection untouched.
func (c *Collection) Reorder(ordering []OrderEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cur := c.snap.Load().Items
	if err := validateOrdering(cur, ordering); err != nil {
		return err
	}

	byID := make(map[int]Item, len(cur))
	for _, it := range cur {
		byID[it.ID] = it
	}
	next := make([]Item, len(cur))
	for _, entry := range ordering {
		next[entry.Position] = byID[entry.ItemID]
	}
	c.publish(next)
	return nil
}

func validateOrdering(cur []Item, ordering []OrderEntry) error {
	if len(ordering) != len(cur) {
		return ErrInvalidOrdering
	}
	ids := make(map[int]bool, len(cur))
	for _, it := range cur {
		ids[it.ID] = true
	}
	seenID := make(map[int]bool, len(ordering))
	seenPos := make(map[int]bool, len(ordering))
	for _, entry := range ordering {
		if !ids[entry.ItemID] || seenID[entry.ItemID] {
			return ErrInvalidOrdering
		}
		if entry.Position < 0 || entry.Position >= len(cur) || seenPos[entry.Position] {
			return ErrInvalidOrdering
		}
		seenID[entry.ItemID] = true
		seenPos[entry.Position] = true
	}
	return nil
}

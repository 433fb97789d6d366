package playlist

import "errors"

var (
	// ErrNotFound covers a missing playlist, item, or content item.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateItem rejects inserting a content item already present in the
	// playlist. Duplicate membership would make reorder targets ambiguous.
	ErrDuplicateItem = errors.New("content item already in playlist")

	// ErrInvalidOrdering rejects a reorder submission whose positions are not a
	// permutation of 0..N-1 over exactly the current items.
	ErrInvalidOrdering = errors.New("ordering is not a permutation of current items")
)

package playback

import "errors"

// Configuration errors: the sequencer reports these and parks in Idle rather
// than crashing the evaluation loop.
var (
	ErrEmptyPlaylist = errors.New("resolved playlist has no items")
	ErrBadDuration   = errors.New("item has non-positive effective duration")
)

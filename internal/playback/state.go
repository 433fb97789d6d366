package playback

// State represents the sequencer state for one screen.
type State int

const (
	StateIdle    State = iota // no resolved playlist, or nothing displayable
	StatePlaying              // cursor advancing on the item timer
	StatePaused               // cursor frozen, remaining time preserved
	StateEnded                // non-looping playlist exhausted
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

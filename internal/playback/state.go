package playback

// State is the controller's position in the playback state machine.
//
//	┌──────┐ first write ┌─────────┐  toggle  ┌────────┐
//	│ Idle │────────────▶│ Playing │◀────────▶│ Paused │
//	└──────┘             └─────────┘          └────────┘
//	   │ toggle               │  ▲               │  ▲
//	   └──────────────────────┼──┼──────────────▶│  │
//	                     seek │  │ done     seek │  │ done
//	                          ▼  │               ▼  │
//	                        ┌──────────────────────────┐
//	                        │  Seeking (returns to the │
//	                        │  state it came from)     │
//	                        └──────────────────────────┘
//
// Terminal states:
//   - Finished: the source reached its end or the truncation limit.
//   - Stopped:  Quit, cancellation or a fatal error.
//
// Toggle in Idle pauses before anything has been written.
type State int

const (
	Idle State = iota
	Playing
	Paused
	Seeking
	Finished
	Stopped
)

// String returns the state name for display.
func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	case Seeking:
		return "Seeking"
	case Finished:
		return "Finished"
	case Stopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// IsTerminal reports whether no further transitions can happen.
func (s State) IsTerminal() bool {
	return s == Finished || s == Stopped
}

// IsPaused reports whether audio is held, either explicitly or because the
// session was paused before the first write.
func (s State) IsPaused() bool {
	return s == Paused
}

package playback

import "time"

// StateChange is emitted when the controller moves between states,
// including the transient Seeking state.
type StateChange struct {
	Previous State
	Current  State
}

// PositionChange is emitted when a seek lands. Regular advancement while
// playing is not reported; poll Snapshot for that.
type PositionChange struct {
	Position time.Duration
}

// VolumeChange is emitted when the volume factor or mute flag changes.
type VolumeChange struct {
	Volume float64
	Muted  bool
}

// Package keymap defines the playback key bindings and the help legend
// rendered under the progress bar.
package keymap

// Action represents a user-triggerable action.
type Action string

const (
	ActionPlayPause   Action = "play_pause"
	ActionSeekBack    Action = "seek_back"
	ActionSeekForward Action = "seek_forward"
	ActionVolumeUp    Action = "volume_up"
	ActionVolumeDown  Action = "volume_down"
	ActionToggleMute  Action = "toggle_mute"
	ActionQuit        Action = "quit"
)

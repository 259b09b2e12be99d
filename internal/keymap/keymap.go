package keymap

import "github.com/charmbracelet/bubbles/key"

// Binding ties an action to the keys that trigger it.
type Binding struct {
	Action      Action
	Keys        []string
	Description string
}

// All contains the playback bindings. Keys are a user-facing contract:
// change them only with a release note.
var All = []Binding{
	{ActionPlayPause, []string{"space", "p"}, "pause/resume"},
	{ActionSeekBack, []string{"left", "h"}, "seek back"},
	{ActionSeekForward, []string{"right", "l"}, "seek forward"},
	{ActionVolumeUp, []string{"up", "k"}, "volume up"},
	{ActionVolumeDown, []string{"down", "j"}, "volume down"},
	{ActionToggleMute, []string{"m"}, "mute/unmute"},
	{ActionQuit, []string{"q", "ctrl+c"}, "quit"},
}

// KeyBinding converts b to a bubbles binding, with the first key as its
// help label.
func (b Binding) KeyBinding() key.Binding {
	return key.NewBinding(
		key.WithKeys(b.Keys...),
		key.WithHelp(keyLabel(b.Keys[0]), b.Description),
	)
}

// Legend returns the compact hint bindings: pause, seek, volume, mute and
// quit. Descriptions follow the current pause and mute state.
func Legend(r *Resolver, paused, muted bool) []key.Binding {
	pause := "pause"
	if paused {
		pause = "resume"
	}
	mute := "mute"
	if muted {
		mute = "unmute"
	}

	return []key.Binding{
		pair(r, ActionPlayPause, "", pause),
		pair(r, ActionSeekBack, ActionSeekForward, "seek"),
		pair(r, ActionVolumeUp, ActionVolumeDown, "vol"),
		pair(r, ActionToggleMute, "", mute),
		pair(r, ActionQuit, "", "quit"),
	}
}

// pair builds one legend entry from the primary keys of one or two actions.
func pair(r *Resolver, a, b Action, desc string) key.Binding {
	keys := r.KeysFor(a)
	label := ""
	if len(keys) > 0 {
		label = keyLabel(keys[0])
	}
	if b != "" {
		other := r.KeysFor(b)
		keys = append(keys[:len(keys):len(keys)], other...)
		if len(other) > 0 {
			label += "/" + keyLabel(other[0])
		}
	}
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(label, desc))
}

var labels = map[string]string{
	"left":  "←",
	"right": "→",
	"up":    "↑",
	"down":  "↓",
}

func keyLabel(k string) string {
	if l, ok := labels[k]; ok {
		return l
	}
	return k
}

// Package command defines the control commands issued by input sources and
// the ordered bus that carries them to the playback controller.
package command

import (
	"fmt"
	"time"
)

// Command is one of TogglePause, SeekRelative, VolumeDelta, ToggleMute or Quit.
// The set is closed: only this package can add variants.
type Command interface {
	fmt.Stringer
	command()
}

// TogglePause switches between playing and paused.
type TogglePause struct{}

// SeekRelative moves the playback position by Delta (may be negative).
type SeekRelative struct {
	Delta time.Duration
}

// VolumeDelta changes the volume factor by Percent of its current value.
type VolumeDelta struct {
	Percent float64
}

// ToggleMute flips the mute flag without touching the volume factor.
type ToggleMute struct{}

// Quit stops playback immediately, discarding queued audio.
type Quit struct{}

func (TogglePause) command()  {}
func (SeekRelative) command() {}
func (VolumeDelta) command()  {}
func (ToggleMute) command()   {}
func (Quit) command()         {}

func (TogglePause) String() string { return "TogglePause" }

func (c SeekRelative) String() string { return fmt.Sprintf("SeekRelative(%s)", c.Delta) }

func (c VolumeDelta) String() string { return fmt.Sprintf("VolumeDelta(%+g%%)", c.Percent) }

func (ToggleMute) String() string { return "ToggleMute" }

func (Quit) String() string { return "Quit" }

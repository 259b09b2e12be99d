// Package input reads single key presses from the terminal and publishes
// the matching playback commands.
package input

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/muesli/cancelreader"

	"github.com/llehouerou/soundplay/internal/command"
	"github.com/llehouerou/soundplay/internal/keymap"
)

const (
	DefaultSeekStep   = 5 * time.Second
	DefaultVolumeStep = 5.0
)

// Publisher accepts commands; *command.Bus satisfies it.
type Publisher interface {
	Publish(ctx context.Context, cmd command.Command) error
}

// Options tunes the command produced for each action.
type Options struct {
	SeekStep time.Duration
	// VolumeStep is a percentage of the current volume.
	VolumeStep float64
}

// Listener turns key presses into commands.
type Listener struct {
	in     io.Reader
	raw    RawMode
	keys   *keymap.Resolver
	bus    Publisher
	seek   time.Duration
	volume float64
}

func NewListener(in io.Reader, raw RawMode, keys *keymap.Resolver, bus Publisher, opts Options) *Listener {
	if opts.SeekStep <= 0 {
		opts.SeekStep = DefaultSeekStep
	}
	if opts.VolumeStep <= 0 {
		opts.VolumeStep = DefaultVolumeStep
	}
	if keys == nil {
		keys = keymap.Default()
	}
	return &Listener{
		in:     in,
		raw:    raw,
		keys:   keys,
		bus:    bus,
		seek:   opts.SeekStep,
		volume: opts.VolumeStep,
	}
}

// Run switches the terminal to raw mode and publishes a command for every
// bound key until ctx is done or input ends. The terminal mode is restored
// on every return path.
func (l *Listener) Run(ctx context.Context) (err error) {
	restore, err := l.raw.MakeRaw()
	if err != nil {
		return fmt.Errorf("enter raw mode: %w", err)
	}
	defer func() {
		if rerr := restore(); rerr != nil && err == nil {
			err = fmt.Errorf("restore terminal: %w", rerr)
		}
	}()

	reader, err := cancelreader.NewReader(l.in)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer reader.Close()

	stop := context.AfterFunc(ctx, func() { reader.Cancel() })
	defer stop()

	buf := make([]byte, 64)
	for {
		n, rerr := reader.Read(buf)
		for _, k := range parseKeys(buf[:n]) {
			if perr := l.dispatch(ctx, k); perr != nil {
				return nil //nolint:nilerr // publish only fails once ctx is done
			}
		}
		if rerr != nil {
			if errors.Is(rerr, cancelreader.ErrCanceled) || errors.Is(rerr, io.EOF) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read input: %w", rerr)
		}
	}
}

func (l *Listener) dispatch(ctx context.Context, key string) error {
	action, ok := l.keys.Resolve(key)
	if !ok {
		return nil
	}
	cmd, ok := l.commandFor(action)
	if !ok {
		return nil
	}
	return l.bus.Publish(ctx, cmd)
}

func (l *Listener) commandFor(a keymap.Action) (command.Command, bool) {
	switch a {
	case keymap.ActionPlayPause:
		return command.TogglePause{}, true
	case keymap.ActionSeekBack:
		return command.SeekRelative{Delta: -l.seek}, true
	case keymap.ActionSeekForward:
		return command.SeekRelative{Delta: l.seek}, true
	case keymap.ActionVolumeUp:
		return command.VolumeDelta{Percent: l.volume}, true
	case keymap.ActionVolumeDown:
		return command.VolumeDelta{Percent: -l.volume}, true
	case keymap.ActionToggleMute:
		return command.ToggleMute{}, true
	case keymap.ActionQuit:
		return command.Quit{}, true
	}
	return nil, false
}

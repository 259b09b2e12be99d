// Package playback drives the decode and write loop and owns the playback
// state. Commands arrive on a bus; readers observe immutable snapshots.
package playback

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/llehouerou/soundplay/internal/audio"
	"github.com/llehouerou/soundplay/internal/command"
)

// Source is a pull source of decoded audio.
type Source interface {
	Next() (*audio.Chunk, error)
	// Seek returns the position reached, also when it fails.
	Seek(target time.Duration) (time.Duration, error)
	Duration() time.Duration
}

// Sink is the output the controller writes to.
type Sink interface {
	Write(ctx context.Context, chunk *audio.Chunk, volume float64, muted bool) error
	Suspend()
	Resume()
	Discard()
	Pending() time.Duration
	Close(flush bool) error
}

// Config holds the initial session parameters.
type Config struct {
	// Total is a known total duration, used when the source cannot tell.
	Total time.Duration
	// Limit truncates playback; zero plays to the end.
	Limit time.Duration
	// Volume is the initial volume factor.
	Volume float64
	Muted  bool
	// StartAt seeks before the first write.
	StartAt time.Duration
}

// PlaybackState is the controller-owned session state.
type PlaybackState struct {
	State    State
	Position time.Duration
	Total    time.Duration
	Volume   float64
	Muted    bool
}

// Snapshot is a read-only copy of PlaybackState for renderers.
type Snapshot struct {
	PlaybackState
	// Elapsed is the position actually heard: Position minus the audio still
	// queued in the sink.
	Elapsed time.Duration
}

// Progress returns Elapsed as a fraction of Total, or 0 when Total is
// unknown.
func (s Snapshot) Progress() float64 {
	if s.Total <= 0 {
		return 0
	}
	return min(float64(s.Elapsed)/float64(s.Total), 1)
}

// Controller applies commands and moves chunks from the source to the sink.
// It is the only writer of PlaybackState.
type Controller struct {
	src      Source
	out      Sink
	commands <-chan command.Command
	limit    time.Duration
	startAt  time.Duration

	state PlaybackState
	snap  atomic.Pointer[PlaybackState]

	mu   sync.Mutex
	subs []*Subscription
	done bool
}

func New(src Source, out Sink, commands <-chan command.Command, cfg Config) *Controller {
	total := cfg.Total
	if d := src.Duration(); d > 0 {
		total = d
	}
	if cfg.Limit > 0 && (total <= 0 || cfg.Limit < total) {
		total = cfg.Limit
	}

	c := &Controller{
		src:      src,
		out:      out,
		commands: commands,
		limit:    cfg.Limit,
		startAt:  cfg.StartAt,
		state: PlaybackState{
			State:  Idle,
			Total:  total,
			Volume: max(cfg.Volume, 0),
			Muted:  cfg.Muted,
		},
	}
	c.publish()
	return c
}

// Snapshot returns the latest published state. Safe for concurrent use.
func (c *Controller) Snapshot() Snapshot {
	st := *c.snap.Load()
	snap := Snapshot{PlaybackState: st, Elapsed: st.Position}
	if !st.State.IsTerminal() {
		snap.Elapsed = max(st.Position-c.out.Pending(), 0)
	}
	return snap
}

func (c *Controller) publish() {
	st := c.state
	c.snap.Store(&st)
}

// Subscribe returns a subscription to state, seek and volume events. After
// Run has returned the subscription is already done.
func (c *Controller) Subscribe() *Subscription {
	sub := newSubscription()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done {
		sub.close()
		return sub
	}
	c.subs = append(c.subs, sub)
	return sub
}

func (c *Controller) each(fn func(*Subscription)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, sub := range c.subs {
		fn(sub)
	}
}

func (c *Controller) closeSubscriptions() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.done = true
	for _, sub := range c.subs {
		sub.close()
	}
	c.subs = nil
}

func (c *Controller) setState(s State) {
	prev := c.state.State
	if prev == s {
		return
	}
	c.state.State = s
	c.publish()
	c.each(func(sub *Subscription) {
		sub.sendState(StateChange{Previous: prev, Current: s})
	})
}

func (c *Controller) volumeChanged() {
	e := VolumeChange{Volume: c.state.Volume, Muted: c.state.Muted}
	c.each(func(sub *Subscription) { sub.sendVolume(e) })
}

// Run plays until the source ends, a Quit command arrives, ctx is done or a
// fatal error occurs. Quit and cancellation are not errors. The sink is
// closed before Run returns: flushed on a natural end, discarded otherwise.
func (c *Controller) Run(ctx context.Context) error {
	defer c.closeSubscriptions()

	if c.startAt > 0 {
		c.seekTo(c.startAt)
	}

	for {
		if c.drain(ctx) {
			return c.stop()
		}

		if c.state.State.IsPaused() {
			select {
			case <-ctx.Done():
				return c.stop()
			case cmd := <-c.commands:
				if c.apply(cmd) {
					return c.stop()
				}
			}
			continue
		}

		chunk, err := c.src.Next()
		if errors.Is(err, io.EOF) {
			return c.finish()
		}
		if err != nil {
			return c.fail(err)
		}

		last := false
		if c.limit > 0 && c.state.Position+chunk.Duration() >= c.limit {
			chunk = chunk.Truncate(c.limit - c.state.Position)
			last = true
		}

		if err := c.out.Write(ctx, chunk, c.state.Volume, c.state.Muted); err != nil {
			if ctx.Err() != nil {
				return c.stop()
			}
			return c.fail(err)
		}

		if c.state.State == Idle {
			c.setState(Playing)
		}
		c.state.Position += chunk.Duration()
		if c.state.Total > 0 {
			c.state.Position = min(c.state.Position, c.state.Total)
		}
		c.publish()

		if last {
			return c.finish()
		}
	}
}

// drain applies every queued command without blocking and reports whether
// the session must stop.
func (c *Controller) drain(ctx context.Context) bool {
	for {
		select {
		case <-ctx.Done():
			return true
		case cmd := <-c.commands:
			if c.apply(cmd) {
				return true
			}
		default:
			return false
		}
	}
}

// apply executes one command and reports whether it was Quit.
func (c *Controller) apply(cmd command.Command) bool {
	switch cmd := cmd.(type) {
	case command.TogglePause:
		c.togglePause()
	case command.SeekRelative:
		c.seekTo(c.heard() + cmd.Delta)
	case command.VolumeDelta:
		c.state.Volume = max(c.state.Volume*(1+cmd.Percent/100), 0)
		c.volumeChanged()
	case command.ToggleMute:
		c.state.Muted = !c.state.Muted
		c.volumeChanged()
	case command.Quit:
		return true
	}
	c.publish()
	return false
}

// heard is the position the listener has reached: the source cursor minus
// the audio still queued in the sink. Relative seeks and the final stopped
// position start from here, since queued audio is discarded unheard.
func (c *Controller) heard() time.Duration {
	return max(c.state.Position-c.out.Pending(), 0)
}

func (c *Controller) togglePause() {
	switch c.state.State {
	case Playing, Idle:
		c.out.Suspend()
		c.setState(Paused)
	case Paused:
		c.out.Resume()
		c.setState(Playing)
	}
}

// seekTo clamps target to the session bounds, drops queued audio and moves
// the source. The position becomes whatever the source reached.
func (c *Controller) seekTo(target time.Duration) {
	prev := c.state.State
	c.setState(Seeking)

	target = max(target, 0)
	if c.state.Total > 0 {
		target = min(target, c.state.Total)
	}

	c.out.Discard()
	// A failed seek still reports where the source is; playback continues
	// from there.
	achieved, _ := c.src.Seek(target)

	c.state.Position = max(achieved, 0)
	c.setState(prev)
	c.each(func(sub *Subscription) { sub.sendSeek(c.state.Position) })
}

func (c *Controller) finish() error {
	err := c.out.Close(true)
	c.setState(Finished)
	return err
}

func (c *Controller) stop() error {
	c.state.Position = c.heard()
	err := c.out.Close(false)
	c.setState(Stopped)
	return err
}

func (c *Controller) fail(err error) error {
	c.state.Position = c.heard()
	_ = c.out.Close(false)
	c.setState(Stopped)
	return err
}

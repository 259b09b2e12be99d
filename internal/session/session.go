// Package session wires one playback run: decoder, sink, controller, key
// listener, progress renderer and the optional MPRIS bridge, all under one
// cancellation scope.
package session

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"github.com/llehouerou/soundplay/internal/audio"
	"github.com/llehouerou/soundplay/internal/command"
	"github.com/llehouerou/soundplay/internal/decoder"
	"github.com/llehouerou/soundplay/internal/errmsg"
	"github.com/llehouerou/soundplay/internal/icons"
	"github.com/llehouerou/soundplay/internal/input"
	"github.com/llehouerou/soundplay/internal/keymap"
	"github.com/llehouerou/soundplay/internal/meta"
	"github.com/llehouerou/soundplay/internal/mpris"
	"github.com/llehouerou/soundplay/internal/notify"
	"github.com/llehouerou/soundplay/internal/playback"
	"github.com/llehouerou/soundplay/internal/progress"
	"github.com/llehouerou/soundplay/internal/state"
)

const (
	busSize = 64
	// Positions closer than this to either end are not worth resuming.
	resumeMargin = 10 * time.Second
)

// Options are the per-run settings after flags and config are merged.
type Options struct {
	Path string

	// Limit truncates playback; zero plays to the end.
	Limit time.Duration
	// Total is a known duration used when the decoder cannot tell.
	Total time.Duration

	Volume float64
	// VolumeSet marks Volume as explicitly requested, which overrides a
	// remembered volume.
	VolumeSet bool

	NoProgress     bool
	Threshold      time.Duration
	RenderInterval time.Duration
	SeekStep       time.Duration
	VolumeStep     float64
	Icons          icons.Set

	RememberVolume bool
	Resume         bool
	MPRIS          bool
	Notify         bool
}

// Env is the process environment a session runs in.
type Env struct {
	Stdin     io.Reader
	Stderr    io.Writer
	StdinTTY  bool
	StderrTTY bool
	RawMode   input.RawMode
	// Width reports the terminal width for clipping frames.
	Width func() int
	// Messages carries captured native stderr lines.
	Messages <-chan string
	// Renderer styles frames for the Stderr stream; nil uses the default.
	Renderer *lipgloss.Renderer

	OpenSink func(audio.Format) (playback.Sink, error)
	State    state.Interface
	Meta     meta.Reader
	// Notifier overrides the desktop notifier used when Notify is set.
	Notifier notify.Notifier
}

// Interactive reports whether the key listener runs: the session must be
// longer than threshold, progress must be shown and stdin must be a
// terminal. An unknown total is never longer than the threshold.
func Interactive(total, threshold time.Duration, noProgress, stdinTTY bool) bool {
	return total > threshold && !noProgress && stdinTTY
}

type Session struct {
	opts Options
	env  Env
}

func New(opts Options, env Env) *Session {
	if env.Meta == nil {
		env.Meta = meta.TagReader{}
	}
	if env.Width == nil {
		env.Width = func() int { return 0 }
	}
	return &Session{opts: opts, env: env}
}

// Run plays the file and returns the final snapshot. Quit and ctx
// cancellation are not errors; decode and device failures are.
func (s *Session) Run(ctx context.Context) (playback.Snapshot, error) {
	dec, err := decoder.Open(s.opts.Path)
	if err != nil {
		return playback.Snapshot{}, err
	}
	defer dec.Close()

	info, _ := s.env.Meta.Read(s.opts.Path)
	total := s.opts.Total
	if total <= 0 {
		total = info.Length
	}

	key := resumeKey(s.opts.Path)
	cfg := playback.Config{
		Total:   total,
		Limit:   s.opts.Limit,
		Volume:  s.opts.Volume,
		StartAt: s.startAt(key, max(dec.Duration(), total)),
	}
	s.restoreVolume(&cfg)

	out, err := s.env.OpenSink(dec.Format())
	if err != nil {
		return playback.Snapshot{}, err
	}

	bus := command.NewBus(busSize)
	ctl := playback.New(dec, out, bus.C(), cfg)
	snap := ctl.Snapshot()

	interactive := Interactive(snap.Total, s.opts.Threshold, s.opts.NoProgress, s.env.StdinTTY)
	keys := keymap.Default()

	renderer := progress.NewRenderer(
		s.env.Stderr,
		ctl,
		progress.NewFormatter(s.opts.Icons, keys, interactive, s.env.Renderer),
		progress.Options{
			Interval: s.opts.RenderInterval,
			Width:    s.env.Width,
			Messages: s.env.Messages,
			Disabled: s.opts.NoProgress || !s.env.StderrTTY,
		},
	)
	renderer.PrintHeader(progress.Header{
		Title:      info.DisplayTitle(),
		Artist:     info.Artist,
		Codec:      dec.Codec(),
		SampleRate: dec.Format().SampleRate,
		Channels:   dec.Format().Channels,
		Size:       fileSize(s.opts.Path),
	})

	notifier := s.notifier()
	var notifyID uint32
	if notifier != nil {
		notifyID, _ = notifier.Notify(notify.NowPlaying(info))
	}

	if s.opts.MPRIS {
		adapter, err := mpris.New(ctl, bus, info)
		if err != nil {
			s.warn(errmsg.Format(errmsg.OpMPRIS, err))
		} else {
			defer adapter.Close()
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		defer cancel()
		return ctl.Run(gctx)
	})
	g.Go(func() error {
		return renderer.Run(gctx)
	})
	if interactive {
		listener := input.NewListener(s.env.Stdin, s.env.RawMode, keys, bus, input.Options{
			SeekStep:   s.opts.SeekStep,
			VolumeStep: s.opts.VolumeStep,
		})
		g.Go(func() error {
			return listener.Run(gctx)
		})
	}

	err = g.Wait()
	final := ctl.Snapshot()
	s.persist(key, final)
	if err != nil && notifier != nil {
		_, _ = notifier.Notify(notify.Failure(info, errmsg.Format(errmsg.OpFor(err), err), notifyID))
	}
	return final, err
}

func (s *Session) notifier() notify.Notifier {
	if !s.opts.Notify {
		return nil
	}
	if s.env.Notifier != nil {
		return s.env.Notifier
	}
	n, err := notify.New()
	if err != nil {
		return nil
	}
	return n
}

func (s *Session) startAt(key string, total time.Duration) time.Duration {
	if !s.opts.Resume || s.env.State == nil {
		return 0
	}
	r, err := s.env.State.GetResume(key)
	if err != nil || r == nil {
		return 0
	}
	if !resumable(r.Position, total) {
		return 0
	}
	return r.Position
}

func (s *Session) restoreVolume(cfg *playback.Config) {
	if !s.opts.RememberVolume || s.opts.VolumeSet || s.env.State == nil {
		return
	}
	v, err := s.env.State.GetVolume()
	if err != nil || v == nil {
		return
	}
	cfg.Volume = v.Volume
	cfg.Muted = v.Muted
}

func (s *Session) persist(key string, final playback.Snapshot) {
	if s.env.State == nil {
		return
	}
	if s.opts.RememberVolume {
		if err := s.env.State.SaveVolume(final.Volume, final.Muted); err != nil {
			s.warn(errmsg.Format(errmsg.OpStateSave, err))
		}
	}
	if !s.opts.Resume {
		return
	}
	if final.State == playback.Stopped && resumable(final.Elapsed, final.Total) {
		s.env.State.SaveResume(key, final.Elapsed, final.Total)
		return
	}
	if err := s.env.State.ClearResume(key); err != nil {
		s.warn(errmsg.Format(errmsg.OpStateSave, err))
	}
}

func (s *Session) warn(msg string) {
	if s.env.Stderr != nil {
		_, _ = fmt.Fprintln(s.env.Stderr, msg)
	}
}

// resumable reports whether pos is far enough from both ends of a session
// of length total (0 = unknown).
func resumable(pos, total time.Duration) bool {
	if pos < resumeMargin {
		return false
	}
	return total <= 0 || pos < total-resumeMargin
}

func resumeKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

func fileSize(path string) int64 {
	fi, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return fi.Size()
}

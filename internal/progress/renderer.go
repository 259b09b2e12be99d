// Package progress draws the live progress line. It only reads controller
// snapshots and never affects playback: write errors are dropped.
package progress

import (
	"context"
	"io"
	"time"

	"github.com/llehouerou/soundplay/internal/playback"
)

// DefaultInterval is the redraw period.
const DefaultInterval = 100 * time.Millisecond

const clearLine = "\r\x1b[K"

// Snapshotter is the read side of the playback controller.
type Snapshotter interface {
	Snapshot() playback.Snapshot
}

// Options configures a Renderer.
type Options struct {
	Interval time.Duration
	// Width reports the terminal width; nil or a result <= 0 disables
	// clipping.
	Width func() int
	// Messages carries captured diagnostic lines printed above the frame.
	Messages <-chan string
	// Disabled suppresses all output.
	Disabled bool
}

// Renderer periodically redraws the progress frame on one terminal line.
type Renderer struct {
	out      io.Writer
	src      Snapshotter
	format   *Formatter
	interval time.Duration
	width    func() int
	messages <-chan string
	disabled bool
}

func NewRenderer(out io.Writer, src Snapshotter, f *Formatter, opts Options) *Renderer {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Width == nil {
		opts.Width = func() int { return 0 }
	}
	return &Renderer{
		out:      out,
		src:      src,
		format:   f,
		interval: opts.Interval,
		width:    opts.Width,
		messages: opts.Messages,
		disabled: opts.Disabled,
	}
}

// PrintHeader writes the header line once, before the first frame.
func (r *Renderer) PrintHeader(h Header) {
	if r.disabled {
		return
	}
	_, _ = io.WriteString(r.out, h.Line(r.width())+"\n")
}

// Run redraws every interval until ctx is done, then draws the final frame
// and ends the line.
func (r *Renderer) Run(ctx context.Context) error {
	if r.disabled {
		return nil
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.draw()
	for {
		select {
		case <-ctx.Done():
			r.flushMessages()
			r.draw()
			_, _ = io.WriteString(r.out, "\n")
			return nil
		case line := <-r.messages:
			r.printMessage(line)
			r.draw()
		case <-ticker.C:
			r.draw()
		}
	}
}

func (r *Renderer) draw() {
	frame := r.format.Frame(r.src.Snapshot(), r.width())
	_, _ = io.WriteString(r.out, clearLine+frame)
}

func (r *Renderer) printMessage(line string) {
	_, _ = io.WriteString(r.out, clearLine+sanitize(line)+"\n")
}

func (r *Renderer) flushMessages() {
	for {
		select {
		case line := <-r.messages:
			r.printMessage(line)
		default:
			return
		}
	}
}

package sink

import (
	"bufio"
	"context"
	"io"
	"time"

	"github.com/llehouerou/soundplay/internal/audio"
)

// Raw writes scaled s16le interleaved samples to a writer, typically stdout.
// Nothing is queued beyond the write buffer, so Pending is always zero.
type Raw struct {
	w       io.Writer
	bw      *bufio.Writer
	scratch []int16
	bytes   []byte
	closed  bool
}

func NewRaw(w io.Writer) *Raw {
	return &Raw{w: w, bw: bufio.NewWriter(w)}
}

func (r *Raw) Write(ctx context.Context, chunk *audio.Chunk, volume float64, muted bool) error {
	if r.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if cap(r.scratch) < len(chunk.Samples) {
		r.scratch = make([]int16, len(chunk.Samples))
		r.bytes = make([]byte, 0, len(chunk.Samples)*bytesPerSample)
	}
	data := encode(chunk.Samples, volume, muted, r.scratch[:len(chunk.Samples)], r.bytes)
	if _, err := r.bw.Write(data); err != nil {
		return &DeviceError{Err: err}
	}
	return nil
}

func (r *Raw) Suspend() {}
func (r *Raw) Resume()  {}

// Discard drops bytes still sitting in the write buffer.
func (r *Raw) Discard() { r.bw.Reset(r.w) }

func (r *Raw) Pending() time.Duration { return 0 }

func (r *Raw) Close(flush bool) error {
	if r.closed {
		return nil
	}
	r.closed = true
	if !flush {
		r.Discard()
		return nil
	}
	if err := r.bw.Flush(); err != nil {
		return &DeviceError{Err: err}
	}
	return nil
}

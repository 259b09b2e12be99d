// Package sink delivers decoded chunks to an output, applying volume and mute
// at write time.
package sink

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/llehouerou/soundplay/internal/audio"
)

// Sink is an output for decoded audio.
type Sink interface {
	// Write scales chunk by volume (0 when muted) and queues it. It blocks
	// while the output buffer is full, until ctx is done.
	Write(ctx context.Context, chunk *audio.Chunk, volume float64, muted bool) error

	// Suspend stops the output from consuming queued audio.
	Suspend()
	Resume()

	// Discard drops queued audio that has not been played yet.
	Discard()

	// Pending is the duration of queued audio not yet played.
	Pending() time.Duration

	// Close releases the output. With flush, queued audio is played first.
	Close(flush bool) error
}

// ErrDeviceBusy is wrapped by DeviceError when the output device is already
// claimed by another sink in this process.
var ErrDeviceBusy = errors.New("audio device already in use")

// ErrFormatMismatch is returned when a chunk does not match the format the
// sink was opened with.
var ErrFormatMismatch = errors.New("chunk format does not match sink")

// ErrClosed is returned by Write after Close.
var ErrClosed = errors.New("sink closed")

// DeviceError reports an output device that cannot be opened or written.
type DeviceError struct {
	Err error
}

func (e *DeviceError) Error() string { return fmt.Sprintf("audio device: %v", e.Err) }

func (e *DeviceError) Unwrap() error { return e.Err }

// Scale converts float samples to int16, multiplying by volume and clipping
// to the int16 range. Muted output is silence. dst must be at least as long
// as samples.
func Scale(samples []float64, volume float64, muted bool, dst []int16) {
	if muted || volume <= 0 {
		clear(dst[:len(samples)])
		return
	}
	for i, s := range samples {
		v := math.Round(s * volume * 32768)
		switch {
		case v > math.MaxInt16:
			v = math.MaxInt16
		case v < math.MinInt16:
			v = math.MinInt16
		case math.IsNaN(v):
			v = 0
		}
		dst[i] = int16(v)
	}
}

// encode scales samples into little-endian s16 bytes.
func encode(samples []float64, volume float64, muted bool, scratch []int16, out []byte) []byte {
	Scale(samples, volume, muted, scratch)
	out = out[:0]
	for _, v := range scratch[:len(samples)] {
		out = append(out, byte(v), byte(uint16(v)>>8)) //nolint:gosec // two's complement split
	}
	return out
}

func checkFormat(chunk *audio.Chunk, want audio.Format) error {
	if chunk.Format() != want {
		return fmt.Errorf("%w: got %d Hz/%d ch, want %d Hz/%d ch", ErrFormatMismatch,
			chunk.SampleRate, chunk.Channels, want.SampleRate, want.Channels)
	}
	return nil
}

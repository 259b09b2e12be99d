package sink

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/smallnest/ringbuffer"

	"github.com/llehouerou/soundplay/internal/audio"
)

const (
	// DefaultBuffer is the depth of audio queued ahead of the device.
	DefaultBuffer = 200 * time.Millisecond

	// speakerBuffer is the device-side latency handed to speaker.Init.
	speakerBuffer = time.Second / 10

	// pollInterval bounds how long Write sleeps waiting for ring space when
	// no wakeup arrives (e.g. while the device is suspended).
	pollInterval = 20 * time.Millisecond

	// drainGrace is added to the pending duration when flushing on Close.
	drainGrace = 500 * time.Millisecond

	bytesPerSample = 2
)

// claimed guards the process-wide speaker.
var claimed atomic.Bool

// device is the process-wide audio output. It is speaker in production.
type device interface {
	Init(rate beep.SampleRate, bufferSize int) error
	Play(s beep.Streamer)
	Lock()
	Unlock()
	Clear()
	Close()
}

type speakerDevice struct{}

func (speakerDevice) Init(rate beep.SampleRate, bufferSize int) error {
	return speaker.Init(rate, bufferSize)
}

func (speakerDevice) Play(s beep.Streamer) { speaker.Play(s) }
func (speakerDevice) Lock()                { speaker.Lock() }
func (speakerDevice) Unlock()              { speaker.Unlock() }
func (speakerDevice) Clear()               { speaker.Clear() }
func (speakerDevice) Close()               { speaker.Close() }

// Options configures a device sink.
type Options struct {
	// Buffer is the depth of the ring between Write and the device.
	// Zero means DefaultBuffer.
	Buffer time.Duration
}

// Device plays audio through the system output.
//
// Chunks are scaled and queued as s16le frames in a bounded ring buffer.
// The speaker goroutine drains the ring; when it runs dry the device plays
// silence and the underrun is counted.
type Device struct {
	dev    device
	format audio.Format
	ring   *ringbuffer.RingBuffer
	ctrl   *beep.Ctrl

	// space is signalled whenever the device consumes from the ring.
	space chan struct{}

	mu      sync.Mutex
	scratch []int16
	bytes   []byte
	closed  bool

	started   atomic.Bool
	underruns atomic.Int64
}

// Open claims the audio device for the given format.
func Open(format audio.Format, opts Options) (*Device, error) {
	return openDevice(speakerDevice{}, format, opts)
}

func openDevice(dev device, format audio.Format, opts Options) (*Device, error) {
	if format.SampleRate <= 0 || format.Channels < 1 || format.Channels > 2 {
		return nil, &DeviceError{Err: ErrFormatMismatch}
	}
	if !claimed.CompareAndSwap(false, true) {
		return nil, &DeviceError{Err: ErrDeviceBusy}
	}

	rate := beep.SampleRate(format.SampleRate)
	if err := dev.Init(rate, rate.N(speakerBuffer)); err != nil {
		claimed.Store(false)
		return nil, &DeviceError{Err: err}
	}

	buffer := opts.Buffer
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	frameBytes := bytesPerSample * format.Channels
	frames := max(format.Frames(buffer), 1)

	d := &Device{
		dev:    dev,
		format: format,
		ring:   ringbuffer.New(frames * frameBytes),
		space:  make(chan struct{}, 1),
	}
	d.ctrl = &beep.Ctrl{Streamer: &ringStreamer{d: d}}
	dev.Play(d.ctrl)
	return d, nil
}

func (d *Device) frameBytes() int { return bytesPerSample * d.format.Channels }

func (d *Device) Write(ctx context.Context, chunk *audio.Chunk, volume float64, muted bool) error {
	if err := checkFormat(chunk, d.format); err != nil {
		return err
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}
	if cap(d.scratch) < len(chunk.Samples) {
		d.scratch = make([]int16, len(chunk.Samples))
		d.bytes = make([]byte, 0, len(chunk.Samples)*bytesPerSample)
	}
	data := encode(chunk.Samples, volume, muted, d.scratch[:len(chunk.Samples)], d.bytes)
	d.mu.Unlock()

	d.started.Store(true)
	frameBytes := d.frameBytes()
	for len(data) > 0 {
		free := d.ring.Free() / frameBytes * frameBytes
		if free > 0 {
			n, err := d.ring.Write(data[:min(free, len(data))])
			data = data[n:]
			if err != nil && n == 0 {
				return &DeviceError{Err: err}
			}
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-d.space:
		case <-time.After(pollInterval):
		}
	}
	return nil
}

// Suspend pauses the device. Queued audio stays in the ring.
func (d *Device) Suspend() { d.setPaused(true) }

func (d *Device) Resume() { d.setPaused(false) }

func (d *Device) setPaused(paused bool) {
	d.dev.Lock()
	d.ctrl.Paused = paused
	d.dev.Unlock()
}

// Discard drops the audio queued in the ring. Audio the speaker has already
// pulled into its own buffer, at most speakerBuffer of it, still plays.
func (d *Device) Discard() {
	d.ring.Reset()
	d.signalSpace()
}

func (d *Device) Pending() time.Duration {
	return d.format.Duration(d.ring.Length() / d.frameBytes())
}

// Underruns returns how many times the device found the ring empty after
// playback started.
func (d *Device) Underruns() int64 { return d.underruns.Load() }

// Close releases the device. With flush it waits for queued audio to play,
// bounded by the pending duration plus a grace period.
func (d *Device) Close(flush bool) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.mu.Unlock()

	if flush {
		d.Resume()
		deadline := time.Now().Add(d.Pending() + drainGrace)
		for d.ring.Length() > 0 && time.Now().Before(deadline) {
			select {
			case <-d.space:
			case <-time.After(pollInterval):
			}
		}
	}
	d.ring.Reset()

	d.dev.Clear()
	d.dev.Close()
	claimed.Store(false)
	return nil
}

func (d *Device) signalSpace() {
	select {
	case d.space <- struct{}{}:
	default:
	}
}

// ringStreamer feeds the speaker from the ring.
type ringStreamer struct {
	d   *Device
	raw []byte
}

func (s *ringStreamer) Stream(samples [][2]float64) (int, bool) {
	d := s.d
	frameBytes := d.frameBytes()
	want := len(samples) * frameBytes
	if cap(s.raw) < want {
		s.raw = make([]byte, want)
	}

	avail := min(d.ring.Length()/frameBytes*frameBytes, want)
	n := 0
	if avail > 0 {
		n, _ = d.ring.Read(s.raw[:avail])
		d.signalSpace()
	}

	frames := n / frameBytes
	for i := range frames {
		off := i * frameBytes
		left := float64(int16(uint16(s.raw[off])|uint16(s.raw[off+1])<<8)) / 32768 //nolint:gosec // s16le
		right := left
		if d.format.Channels == 2 {
			right = float64(int16(uint16(s.raw[off+2])|uint16(s.raw[off+3])<<8)) / 32768 //nolint:gosec // s16le
		}
		samples[i] = [2]float64{left, right}
	}
	if frames < len(samples) {
		clear(samples[frames:])
		if d.started.Load() {
			d.underruns.Add(1)
		}
	}
	// The device keeps playing until Close; silence fills any gap.
	return len(samples), true
}

func (s *ringStreamer) Err() error { return nil }

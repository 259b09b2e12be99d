// Package audio holds the sample types shared by the decoder, the playback
// controller and the sinks.
package audio

import "time"

// Format describes the layout of decoded samples.
type Format struct {
	SampleRate int
	Channels   int
}

// Duration converts a frame count to a duration at this sample rate.
func (f Format) Duration(frames int) time.Duration {
	if f.SampleRate <= 0 {
		return 0
	}
	return time.Duration(frames) * time.Second / time.Duration(f.SampleRate)
}

// Frames converts a duration to a frame count at this sample rate.
func (f Format) Frames(d time.Duration) int {
	return int(d * time.Duration(f.SampleRate) / time.Second)
}

// Chunk is one block of interleaved PCM samples in the range [-1, 1].
//
// A chunk is immutable once emitted by a decoder. It is handed from the
// decoder to the controller and from the controller to a sink; nobody keeps
// a reference after passing it on.
type Chunk struct {
	Samples    []float64
	Channels   int
	SampleRate int
}

// Format returns the chunk's sample format.
func (c *Chunk) Format() Format {
	return Format{SampleRate: c.SampleRate, Channels: c.Channels}
}

// Frames returns the number of sample frames (samples per channel).
func (c *Chunk) Frames() int {
	if c.Channels <= 0 {
		return 0
	}
	return len(c.Samples) / c.Channels
}

// Duration returns the playback duration of the chunk.
func (c *Chunk) Duration() time.Duration {
	return c.Format().Duration(c.Frames())
}

// Truncate returns a chunk holding at most the given duration of audio.
// The receiver is left untouched.
func (c *Chunk) Truncate(d time.Duration) *Chunk {
	frames := c.Format().Frames(d)
	if frames >= c.Frames() {
		return c
	}
	if frames < 0 {
		frames = 0
	}
	return &Chunk{
		Samples:    c.Samples[:frames*c.Channels],
		Channels:   c.Channels,
		SampleRate: c.SampleRate,
	}
}

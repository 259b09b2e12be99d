package audio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestChunk_FramesAndDuration(t *testing.T) {
	c := &Chunk{Samples: make([]float64, 8000), Channels: 2, SampleRate: 8000}

	assert.Equal(t, 4000, c.Frames())
	assert.Equal(t, 500*time.Millisecond, c.Duration())
}

func TestChunk_ZeroChannels(t *testing.T) {
	c := &Chunk{Samples: make([]float64, 10)}

	assert.Equal(t, 0, c.Frames())
	assert.Equal(t, time.Duration(0), c.Duration())
}

func TestChunk_Truncate(t *testing.T) {
	c := &Chunk{Samples: make([]float64, 1000), Channels: 1, SampleRate: 1000}

	short := c.Truncate(250 * time.Millisecond)
	assert.Equal(t, 250, short.Frames())
	assert.Equal(t, 1000, c.Frames(), "original must not change")

	assert.Same(t, c, c.Truncate(2*time.Second))
	assert.Equal(t, 0, c.Truncate(-time.Second).Frames())
}

func TestFormat_Frames(t *testing.T) {
	f := Format{SampleRate: 44100, Channels: 2}

	assert.Equal(t, 44100, f.Frames(time.Second))
	assert.Equal(t, time.Second, f.Duration(44100))
	assert.Equal(t, time.Duration(0), Format{}.Duration(100))
}

package decoder

import (
	"io"
	"time"

	"github.com/gopxl/beep/v2"

	"github.com/llehouerou/soundplay/internal/audio"
)

// streamDecoder adapts a beep.StreamSeekCloser to the chunked Decoder
// contract. Every codec variant produces a beep stream; this type is the only
// place where frames become chunks.
type streamDecoder struct {
	stream   beep.StreamSeekCloser
	format   beep.Format
	channels int
	codec    string
	buf      [][2]float64
}

func newStreamDecoder(s beep.StreamSeekCloser, format beep.Format, codec string) *streamDecoder {
	channels := format.NumChannels
	if channels < 1 || channels > 2 {
		// beep streams are stereo frames; anything wider has been downmixed.
		channels = 2
	}
	return &streamDecoder{
		stream:   s,
		format:   format,
		channels: channels,
		codec:    codec,
		buf:      make([][2]float64, ChunkFrames),
	}
}

// Next fills one chunk. Short reads are retried until the chunk is full or
// the stream reports it is exhausted.
func (d *streamDecoder) Next() (*audio.Chunk, error) {
	n := 0
	for n < len(d.buf) {
		m, ok := d.stream.Stream(d.buf[n:])
		n += m
		if !ok || m == 0 {
			break
		}
	}

	if n == 0 {
		if err := d.stream.Err(); err != nil && !isTruncation(err) {
			return nil, &DecodeError{Codec: d.codec, Err: err}
		}
		return nil, io.EOF
	}

	samples := make([]float64, n*d.channels)
	if d.channels == 1 {
		for i := range n {
			samples[i] = d.buf[i][0]
		}
	} else {
		for i := range n {
			samples[2*i] = d.buf[i][0]
			samples[2*i+1] = d.buf[i][1]
		}
	}

	return &audio.Chunk{
		Samples:    samples,
		Channels:   d.channels,
		SampleRate: int(d.format.SampleRate),
	}, nil
}

func (d *streamDecoder) Seek(target time.Duration) (time.Duration, error) {
	target = max(target, 0)
	frame := d.format.SampleRate.N(target)
	if length := d.stream.Len(); length > 0 && frame > length {
		frame = length
	}

	if err := d.stream.Seek(frame); err != nil {
		pos := d.Position()
		return pos, &SeekError{Target: target, Achieved: pos, Err: err}
	}
	return d.Position(), nil
}

func (d *streamDecoder) Position() time.Duration {
	return d.format.SampleRate.D(d.stream.Position())
}

func (d *streamDecoder) Duration() time.Duration {
	length := d.stream.Len()
	if length <= 0 {
		return 0
	}
	return d.format.SampleRate.D(length)
}

func (d *streamDecoder) Format() audio.Format {
	return audio.Format{SampleRate: int(d.format.SampleRate), Channels: d.channels}
}

func (d *streamDecoder) Codec() string { return d.codec }

func (d *streamDecoder) Close() error { return d.stream.Close() }

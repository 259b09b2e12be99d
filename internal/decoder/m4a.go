package decoder

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/llehouerou/alac"
	"github.com/llehouerou/go-faad2"
	"github.com/llehouerou/go-m4a"
)

var errUnsupportedM4ACodec = errors.New("m4a: unsupported codec")

// frameDecoder turns one container sample into stereo frames.
type frameDecoder interface {
	decode(sample []byte) ([][2]float64, error)
	close()
}

// m4aStream reads AAC or ALAC samples out of an MP4 container.
type m4aStream struct {
	f         *os.File
	container *m4a.Reader
	frames    frameDecoder
	rate      int
	length    int

	idx     int
	pending [][2]float64
	// pos counts frames returned since the last seek, on top of base.
	base int
	pos  int
	err  error
}

func openM4A(f *os.File) (beep.StreamSeekCloser, beep.Format, string, error) {
	container, err := m4a.Open(f)
	if err != nil {
		return nil, beep.Format{}, "", err
	}

	rate := int(container.SampleRate())
	channels := int(container.Channels())
	var frames frameDecoder
	switch container.Codec() {
	case m4a.CodecAAC:
		frames, err = newAACDecoder(container.CodecConfig(), channels)
	case m4a.CodecALAC:
		frames, err = newALACDecoder(rate, int(container.SampleSize()), channels)
	default:
		err = errUnsupportedM4ACodec
	}
	if err != nil {
		return nil, beep.Format{}, "", err
	}

	s := &m4aStream{
		f:         f,
		container: container,
		frames:    frames,
		rate:      rate,
		length:    int(container.Duration().Seconds() * float64(rate)),
	}
	format := beep.Format{
		SampleRate:  beep.SampleRate(rate),
		NumChannels: min(max(channels, 1), 2),
		Precision:   2,
	}
	return s, format, container.Codec().String(), nil
}

func (s *m4aStream) Stream(samples [][2]float64) (n int, ok bool) {
	if s.err != nil {
		return 0, false
	}
	for n < len(samples) {
		if len(s.pending) > 0 {
			m := copy(samples[n:], s.pending)
			s.pending = s.pending[m:]
			s.pos += m
			n += m
			continue
		}
		if s.idx >= s.container.SampleCount() {
			break
		}

		data, err := s.container.ReadSample(s.idx)
		if err != nil {
			s.err = err
			break
		}
		s.idx++

		decoded, err := s.frames.decode(data)
		if err != nil {
			s.err = err
			break
		}
		s.pending = decoded
	}
	return n, n > 0
}

func (s *m4aStream) Err() error    { return s.err }
func (s *m4aStream) Len() int      { return s.length }
func (s *m4aStream) Position() int { return s.base + s.pos }

// Seek moves to the container sample containing p. The reached position is
// the start time of that sample.
func (s *m4aStream) Seek(p int) error {
	p = min(max(p, 0), s.length)
	target := time.Duration(float64(p) / float64(s.rate) * float64(time.Second))

	s.idx = s.container.SeekToTime(target)
	s.base = int(s.container.SampleTime(s.idx).Seconds() * float64(s.rate))
	s.pos = 0
	s.pending = nil
	s.err = nil
	return nil
}

func (s *m4aStream) Close() error {
	s.frames.close()
	return s.f.Close()
}

type aacDecoder struct {
	decoder  *faad2.Decoder
	channels int
}

func newAACDecoder(config []byte, channels int) (*aacDecoder, error) {
	ctx := context.Background()
	decoder, err := faad2.NewDecoder(ctx)
	if err != nil {
		return nil, err
	}
	if err := decoder.Init(ctx, config); err != nil {
		decoder.Close(ctx)
		return nil, err
	}
	return &aacDecoder{decoder: decoder, channels: max(channels, 1)}, nil
}

func (d *aacDecoder) decode(sample []byte) ([][2]float64, error) {
	pcm, err := d.decoder.Decode(context.Background(), sample)
	if err != nil {
		return nil, err
	}
	frames := make([][2]float64, len(pcm)/d.channels)
	for i := range frames {
		left := float64(pcm[i*d.channels]) / 32768.0
		right := left
		if d.channels > 1 {
			right = float64(pcm[i*d.channels+1]) / 32768.0
		}
		frames[i] = [2]float64{left, right}
	}
	return frames, nil
}

func (d *aacDecoder) close() {
	d.decoder.Close(context.Background())
}

type alacDecoder struct {
	decoder    *alac.Alac
	sampleSize int
	channels   int
}

func newALACDecoder(rate, sampleSize, channels int) (*alacDecoder, error) {
	decoder, err := alac.NewWithConfig(alac.Config{
		SampleRate:  rate,
		SampleSize:  sampleSize,
		NumChannels: channels,
		FrameSize:   4096,
	})
	if err != nil {
		return nil, err
	}
	return &alacDecoder{decoder: decoder, sampleSize: sampleSize, channels: max(channels, 1)}, nil
}

// decode converts little-endian 16 or 24 bit PCM to stereo frames.
func (d *alacDecoder) decode(sample []byte) ([][2]float64, error) {
	data := d.decoder.Decode(sample)

	width := 2
	scale := 32768.0
	if d.sampleSize == 24 {
		width = 3
		scale = 8388608.0
	}
	stride := width * d.channels
	frames := make([][2]float64, len(data)/stride)
	for i := range frames {
		off := i * stride
		left := float64(pcmSample(data[off:], width)) / scale
		right := left
		if d.channels > 1 {
			right = float64(pcmSample(data[off+width:], width)) / scale
		}
		frames[i] = [2]float64{left, right}
	}
	return frames, nil
}

func (d *alacDecoder) close() {}

// pcmSample reads one signed little-endian sample of 2 or 3 bytes.
func pcmSample(b []byte, width int) int32 {
	if width == 2 {
		return int32(int16(uint16(b[0]) | uint16(b[1])<<8))
	}
	v := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
	if v&0x800000 != 0 {
		v |= ^0xFFFFFF
	}
	return v
}

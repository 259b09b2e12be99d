package decoder

import (
	"encoding/binary"
	"errors"
	"io"
	"os"

	"github.com/gopxl/beep/v2"
	"github.com/llehouerou/go-mp3"
)

// mp3Stream wraps llehouerou/go-mp3, which yields interleaved 16-bit stereo.
type mp3Stream struct {
	decoder *mp3.Decoder
	closer  io.Closer
	err     error
	raw     []byte
}

func openMP3(f *os.File) (beep.StreamSeekCloser, beep.Format, string, error) {
	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, beep.Format{}, "", err
	}
	rate := decoder.SampleRate()
	if rate == 0 {
		return nil, beep.Format{}, "", errors.New("mp3: invalid sample rate")
	}

	format := beep.Format{
		SampleRate:  beep.SampleRate(rate),
		NumChannels: 2,
		Precision:   2,
	}
	return &mp3Stream{decoder: decoder, closer: f}, format, "MP3", nil
}

const mp3FrameBytes = 4

func (s *mp3Stream) Stream(samples [][2]float64) (n int, ok bool) {
	if s.err != nil {
		return 0, false
	}

	want := len(samples) * mp3FrameBytes
	if cap(s.raw) < want {
		s.raw = make([]byte, want)
	}
	s.raw = s.raw[:want]

	read, err := io.ReadFull(s.decoder, s.raw)
	if err != nil && !isTruncation(err) {
		s.err = err
		return 0, false
	}

	frames := read / mp3FrameBytes
	if frames == 0 {
		return 0, false
	}
	for i := range frames {
		off := i * mp3FrameBytes
		left := int16(binary.LittleEndian.Uint16(s.raw[off:]))    //nolint:gosec // audio samples
		right := int16(binary.LittleEndian.Uint16(s.raw[off+2:])) //nolint:gosec // audio samples
		samples[i][0] = float64(left) / 32768
		samples[i][1] = float64(right) / 32768
	}
	return frames, true
}

func (s *mp3Stream) Err() error { return s.err }

// Len returns 0 when the decoder cannot tell the sample count up front.
func (s *mp3Stream) Len() int {
	return int(max(s.decoder.SampleCount(), 0))
}

func (s *mp3Stream) Position() int {
	return int(s.decoder.SamplePosition())
}

func (s *mp3Stream) Seek(p int) error {
	p = max(p, 0)
	if length := s.Len(); length > 0 {
		p = min(p, length)
	}
	if err := s.decoder.SeekToSample(int64(p)); err != nil {
		return err
	}
	s.err = nil
	return nil
}

func (s *mp3Stream) Close() error { return s.closer.Close() }

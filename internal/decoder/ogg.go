package decoder

import (
	"errors"
	"io"
	"os"
	"sort"

	"github.com/gopxl/beep/v2"
)

var errOggNoAudio = errors.New("ogg: stream ends before audio data")

// maxOggHeaderPackets bounds the header scan on malformed streams.
const maxOggHeaderPackets = 8

// oggStream decodes an Ogg Opus or Ogg Vorbis file into stereo frames.
type oggStream struct {
	f      *os.File
	reader *oggPacketReader
	codec  oggCodec

	// dataStart is the offset of the first audio page.
	dataStart int64
	index     []oggPageEntry
	length    int

	pos int
	// skip is the number of decoded frames still to drop (Opus pre-skip).
	skip int

	pcm     []float32
	pending []float32
	err     error
}

func openOgg(f *os.File) (beep.StreamSeekCloser, beep.Format, string, error) {
	reader := newOggPacketReader(f)

	first, err := reader.next()
	if err != nil {
		return nil, beep.Format{}, "", err
	}
	codec, err := detectOggCodec(first)
	if err != nil {
		return nil, beep.Format{}, "", err
	}

	for range maxOggHeaderPackets {
		packet, err := reader.next()
		if err != nil {
			if isTruncation(err) {
				return nil, beep.Format{}, "", errOggNoAudio
			}
			return nil, beep.Format{}, "", err
		}
		complete, err := codec.AddHeaderPacket(packet)
		if err != nil {
			return nil, beep.Format{}, "", err
		}
		if complete {
			break
		}
	}

	// Header packets end on a page boundary, so the reader sits at the first
	// audio page with nothing buffered.
	dataStart, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, beep.Format{}, "", err
	}
	index, err := indexOggPages(f, dataStart)
	if err != nil {
		return nil, beep.Format{}, "", err
	}
	if err := reader.reset(dataStart); err != nil {
		return nil, beep.Format{}, "", err
	}

	s := &oggStream{
		f:         f,
		reader:    reader,
		codec:     codec,
		dataStart: dataStart,
		index:     index,
		skip:      codec.PreSkip(),
		pcm:       make([]float32, codec.MaxFrame()*codec.Channels()),
	}
	if len(index) > 0 {
		s.length = max(int(index[len(index)-1].granule)-codec.PreSkip(), 0)
	}

	format := beep.Format{
		SampleRate:  beep.SampleRate(codec.SampleRate()),
		NumChannels: min(codec.Channels(), 2),
		Precision:   2,
	}
	return s, format, codec.Name(), nil
}

func (s *oggStream) Stream(samples [][2]float64) (n int, ok bool) {
	if s.err != nil {
		return 0, false
	}
	channels := s.codec.Channels()

	for n < len(samples) {
		if len(s.pending) == 0 {
			if !s.decodePacket() {
				break
			}
			continue
		}

		frames := min(len(s.pending)/channels, len(samples)-n)
		for i := range frames {
			left := float64(s.pending[i*channels])
			right := left
			if channels > 1 {
				right = float64(s.pending[i*channels+1])
			}
			samples[n+i] = [2]float64{left, right}
		}
		s.pending = s.pending[frames*channels:]
		s.pos += frames
		n += frames
	}
	return n, n > 0
}

// decodePacket decodes packets until one yields frames. It returns false at
// the end of the stream or on a read error, which is kept in s.err.
func (s *oggStream) decodePacket() bool {
	channels := s.codec.Channels()
	for {
		packet, err := s.reader.next()
		if err != nil {
			s.err = err
			return false
		}
		frames, err := s.codec.Decode(packet, s.pcm)
		if err != nil || frames <= 0 {
			// Damaged packets are dropped; the codec resynchronises on the
			// next one.
			continue
		}

		if s.length > 0 {
			frames = min(frames, s.length-s.pos+s.skip)
			if frames <= 0 {
				s.err = io.EOF
				return false
			}
		}

		pcm := s.pcm[:frames*channels]
		if s.skip > 0 {
			drop := min(s.skip, frames)
			s.skip -= drop
			pcm = pcm[drop*channels:]
		}
		if len(pcm) == 0 {
			continue
		}
		s.pending = pcm
		return true
	}
}

func (s *oggStream) Err() error {
	if isTruncation(s.err) {
		return nil
	}
	return s.err
}

func (s *oggStream) Len() int      { return s.length }
func (s *oggStream) Position() int { return s.pos }

// Seek jumps to the last page whose granule position is at or before p.
// The position reached is the granule of that page, which may be earlier
// than requested.
func (s *oggStream) Seek(p int) error {
	p = max(p, 0)
	if s.length > 0 {
		p = min(p, s.length)
	}
	preSkip := s.codec.PreSkip()
	target := int64(p + preSkip)

	i := sort.Search(len(s.index), func(i int) bool {
		return s.index[i].granule > target
	})

	offset, pos, skip := s.dataStart, 0, preSkip
	if i > 0 {
		entry := s.index[i-1]
		offset = entry.end
		pos = max(int(entry.granule)-preSkip, 0)
		skip = max(preSkip-int(entry.granule), 0)
	}

	if err := s.reader.reset(offset); err != nil {
		s.err = err
		return err
	}
	s.codec.Reset()
	s.pos = pos
	s.skip = skip
	s.pending = nil
	s.err = nil
	return nil
}

func (s *oggStream) Close() error {
	return s.f.Close()
}

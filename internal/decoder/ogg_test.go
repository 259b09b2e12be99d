package decoder

import (
	"bytes"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOggPageHeader(t *testing.T) {
	page := oggPage(0x04, 48000, 7, []byte("abc"))

	hdr, err := parseOggPageHeader(bytes.NewReader(page))
	require.NoError(t, err)
	assert.Equal(t, byte(0x04), hdr.Flags)
	assert.Equal(t, int64(48000), hdr.GranulePos)
	assert.Equal(t, uint32(1), hdr.SerialNumber)
	assert.Equal(t, uint32(7), hdr.SequenceNum)
	assert.Equal(t, []uint8{3}, hdr.SegmentTable)
	assert.Equal(t, int64(3), hdr.bodySize())
}

func TestParseOggPageHeader_Invalid(t *testing.T) {
	t.Run("magic", func(t *testing.T) {
		page := oggPage(0, 0, 0)
		copy(page, "BadS")
		_, err := parseOggPageHeader(bytes.NewReader(page))
		assert.ErrorIs(t, err, errInvalidOggMagic)
	})

	t.Run("version", func(t *testing.T) {
		page := oggPage(0, 0, 0)
		page[4] = 1
		_, err := parseOggPageHeader(bytes.NewReader(page))
		assert.ErrorIs(t, err, errInvalidOggVersion)
	})

	t.Run("short", func(t *testing.T) {
		_, err := parseOggPageHeader(bytes.NewReader([]byte("OggS\x00")))
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})
}

func TestReadOggPageBody_Lacing(t *testing.T) {
	long := bytes.Repeat([]byte{0xAA}, 300)
	page := oggPage(0, 0, 0, []byte("one"), long, []byte{})

	r := bytes.NewReader(page)
	hdr, err := parseOggPageHeader(r)
	require.NoError(t, err)

	packets, partial, err := readOggPageBody(r, hdr)
	require.NoError(t, err)
	assert.Nil(t, partial)
	require.Len(t, packets, 3)
	assert.Equal(t, []byte("one"), packets[0])
	assert.Equal(t, long, packets[1])
	assert.Empty(t, packets[2])
}

func TestOggPacketReader_ContinuedPacket(t *testing.T) {
	first := bytes.Repeat([]byte{1}, 255)
	rest := []byte{2, 2, 2}

	var stream []byte
	// Page 1 ends with an unterminated 255-byte segment.
	stream = append(stream, oggRawPage(0, oggNoGranule, 0, []byte{255}, first)...)
	stream = append(stream, oggRawPage(oggFlagContinued, 100, 1, []byte{3, 4}, append(append([]byte{}, rest...), []byte("next")...))...)

	reader := newOggPacketReader(bytes.NewReader(stream))

	pkt, err := reader.next()
	require.NoError(t, err)
	assert.Equal(t, append(append([]byte{}, first...), rest...), pkt)

	pkt, err = reader.next()
	require.NoError(t, err)
	assert.Equal(t, []byte("next"), pkt)

	_, err = reader.next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestOggPacketReader_Reset(t *testing.T) {
	p1 := oggPage(0, 10, 0, []byte("a"), []byte("b"))
	p2 := oggPage(0, 20, 1, []byte("c"))
	reader := newOggPacketReader(bytes.NewReader(append(p1, p2...)))

	pkt, err := reader.next()
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), pkt)

	require.NoError(t, reader.reset(int64(len(p1))))
	pkt, err = reader.next()
	require.NoError(t, err)
	assert.Equal(t, []byte("c"), pkt)
}

func TestIndexOggPages(t *testing.T) {
	var stream []byte
	stream = append(stream, oggPage(0, 0, 0, []byte("head"))...)
	start := int64(len(stream))
	stream = append(stream, oggPage(0, 1000, 1, []byte("x"))...)
	end1 := int64(len(stream))
	stream = append(stream, oggRawPage(0, oggNoGranule, 2, []byte{255}, bytes.Repeat([]byte{0}, 255))...)
	stream = append(stream, oggPage(oggFlagContinued, 2000, 3, []byte("y"))...)
	end2 := int64(len(stream))

	index, err := indexOggPages(bytes.NewReader(stream), start)
	require.NoError(t, err)
	assert.Equal(t, []oggPageEntry{
		{granule: 1000, end: end1},
		{granule: 2000, end: end2},
	}, index)
}

func TestIndexOggPages_TruncatedLastPage(t *testing.T) {
	var stream []byte
	stream = append(stream, oggPage(0, 1000, 0, []byte("x"))...)
	last := oggPage(0, 999999, 1, bytes.Repeat([]byte{1}, 100))
	stream = append(stream, last[:len(last)-50]...)

	index, err := indexOggPages(bytes.NewReader(stream), 0)
	require.NoError(t, err)
	require.Len(t, index, 1)
	assert.Equal(t, int64(1000), index[0].granule)
}

// fakeOggCodec turns each packet into packet[1] frames of value packet[0]/100.
type fakeOggCodec struct {
	channels int
	preSkip  int
	resets   int
}

func (c *fakeOggCodec) Name() string                         { return "Fake" }
func (c *fakeOggCodec) SampleRate() int                      { return 1000 }
func (c *fakeOggCodec) Channels() int                        { return c.channels }
func (c *fakeOggCodec) PreSkip() int                         { return c.preSkip }
func (c *fakeOggCodec) MaxFrame() int                        { return 255 }
func (c *fakeOggCodec) AddHeaderPacket([]byte) (bool, error) { return true, nil }
func (c *fakeOggCodec) Reset()                               { c.resets++ }

var errBadPacket = errors.New("bad packet")

func (c *fakeOggCodec) Decode(packet []byte, pcm []float32) (int, error) {
	if len(packet) < 2 {
		return 0, errBadPacket
	}
	frames := int(packet[1])
	for i := range frames * c.channels {
		pcm[i] = float32(packet[0]) / 100
	}
	return frames, nil
}

// newFakeOggStream lays out pages of 100 decoded frames each, value page
// index. Granules count decoded frames, pre-skip included.
func newFakeOggStream(t *testing.T, codec *fakeOggCodec, pages int) *oggStream {
	t.Helper()
	var data []byte
	for i := range pages {
		granule := int64((i + 1) * 100)
		data = append(data, oggPage(0, granule, uint32(i), []byte{byte(i), 100})...) //nolint:gosec // small
	}
	path := writeTemp(t, "fake.ogg", data)
	f, err := os.Open(path)
	require.NoError(t, err)

	index, err := indexOggPages(f, 0)
	require.NoError(t, err)
	reader := newOggPacketReader(f)
	require.NoError(t, reader.reset(0))

	s := &oggStream{
		f:      f,
		reader: reader,
		codec:  codec,
		index:  index,
		skip:   codec.preSkip,
		pcm:    make([]float32, codec.MaxFrame()*codec.channels),
		length: int(index[len(index)-1].granule) - codec.preSkip,
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func drainOgg(s *oggStream) [][2]float64 {
	var out [][2]float64
	buf := make([][2]float64, 64)
	for {
		n, ok := s.Stream(buf)
		out = append(out, buf[:n]...)
		if !ok {
			return out
		}
	}
}

func TestOggStream_DecodesAllFrames(t *testing.T) {
	s := newFakeOggStream(t, &fakeOggCodec{channels: 1}, 5)

	frames := drainOgg(s)
	require.Len(t, frames, 500)
	assert.InDelta(t, 0.0, frames[0][0], 1e-6)
	assert.InDelta(t, 0.04, frames[499][0], 1e-6)
	assert.Equal(t, frames[250][0], frames[250][1], "mono is duplicated")
	assert.Equal(t, 500, s.Position())
	assert.NoError(t, s.Err())
}

func TestOggStream_PreSkip(t *testing.T) {
	s := newFakeOggStream(t, &fakeOggCodec{channels: 2, preSkip: 30}, 3)

	assert.Equal(t, 270, s.Len())
	frames := drainOgg(s)
	require.Len(t, frames, 270)
	assert.InDelta(t, 0.0, frames[0][0], 1e-6)
	assert.InDelta(t, 0.01, frames[70][0], 1e-6)
}

func TestOggStream_SeekToPageBoundary(t *testing.T) {
	codec := &fakeOggCodec{channels: 1}
	s := newFakeOggStream(t, codec, 5)

	require.NoError(t, s.Seek(250))
	// Page 1 ends at granule 200: decoding restarts with page 2.
	assert.Equal(t, 200, s.Position())
	assert.Equal(t, 1, codec.resets)

	frames := drainOgg(s)
	require.Len(t, frames, 300)
	assert.InDelta(t, 0.02, frames[0][0], 1e-6)
}

func TestOggStream_SeekBeforeFirstGranule(t *testing.T) {
	s := newFakeOggStream(t, &fakeOggCodec{channels: 1}, 3)
	drainOgg(s)

	require.NoError(t, s.Seek(50))
	assert.Equal(t, 0, s.Position())
	assert.Len(t, drainOgg(s), 300)
}

func TestOggStream_SeekClamps(t *testing.T) {
	s := newFakeOggStream(t, &fakeOggCodec{channels: 1}, 3)

	require.NoError(t, s.Seek(10_000))
	assert.Equal(t, 300, s.Position())
	n, ok := s.Stream(make([][2]float64, 8))
	assert.Zero(t, n)
	assert.False(t, ok)

	require.NoError(t, s.Seek(-5))
	assert.Equal(t, 0, s.Position())
}

func TestOggStream_SkipsBadPackets(t *testing.T) {
	var data []byte
	data = append(data, oggPage(0, 100, 0, []byte{1}, []byte{1, 100})...)
	path := writeTemp(t, "bad.ogg", data)
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	codec := &fakeOggCodec{channels: 1}
	s := &oggStream{
		f:      f,
		reader: newOggPacketReader(f),
		codec:  codec,
		pcm:    make([]float32, 255),
		length: 100,
	}
	assert.Len(t, drainOgg(s), 100)
}

func TestDetectOggCodec(t *testing.T) {
	t.Run("unknown", func(t *testing.T) {
		_, err := detectOggCodec([]byte("Speex   "))
		assert.ErrorIs(t, err, errUnknownOggCodec)
	})

	t.Run("short opus head", func(t *testing.T) {
		_, err := detectOggCodec([]byte("OpusHead\x01\x02"))
		assert.ErrorIs(t, err, errInvalidOpusHead)
	})

	t.Run("vorbis identification", func(t *testing.T) {
		ident := []byte("\x01vorbis\x00\x00\x00\x00\x02\x44\xac\x00\x00")
		codec, err := detectOggCodec(ident)
		require.NoError(t, err)
		assert.Equal(t, "Vorbis", codec.Name())
		assert.Equal(t, 2, codec.Channels())
		assert.Equal(t, 44100, codec.SampleRate())
		assert.Zero(t, codec.PreSkip())
	})

	t.Run("vorbis zero channels", func(t *testing.T) {
		ident := []byte("\x01vorbis\x00\x00\x00\x00\x00\x44\xac\x00\x00")
		_, err := detectOggCodec(ident)
		assert.ErrorIs(t, err, errInvalidVorbisHeader)
	})
}

func TestVorbisCodec_DecodeBeforeHeaders(t *testing.T) {
	codec, err := newVorbisCodec([]byte("\x01vorbis\x00\x00\x00\x00\x01\x40\x1f\x00\x00"))
	require.NoError(t, err)

	complete, err := codec.AddHeaderPacket([]byte("\x03vorbis"))
	require.NoError(t, err)
	assert.False(t, complete)

	_, err = codec.Decode([]byte{0}, make([]float32, 16))
	assert.ErrorIs(t, err, errVorbisNotReady)
}

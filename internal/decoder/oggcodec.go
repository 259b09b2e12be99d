package decoder

import (
	"encoding/binary"
	"errors"

	"github.com/jfreymuth/vorbis"
	"github.com/jj11hh/opus"
)

var (
	errUnknownOggCodec      = errors.New("ogg: unknown codec (not Opus or Vorbis)")
	errInvalidOpusHead      = errors.New("opus: invalid OpusHead packet")
	errUnsupportedOpus      = errors.New("opus: unsupported version")
	errInvalidVorbisHeader  = errors.New("vorbis: invalid identification header")
	errVorbisNotReady       = errors.New("vorbis: headers incomplete")
	errVorbisBufferTooSmall = errors.New("vorbis: output buffer too small")
)

// opusSampleRate is the rate Opus always decodes at.
const opusSampleRate = 48000

// opusMaxFrame is the largest Opus frame in samples per channel (120 ms).
const opusMaxFrame = 5760

// oggCodec decodes the packets of one logical Ogg stream.
type oggCodec interface {
	Name() string
	SampleRate() int
	Channels() int

	// PreSkip is the number of decoded samples to drop at stream start.
	PreSkip() int

	// AddHeaderPacket feeds the next header packet and reports whether
	// every header has been received.
	AddHeaderPacket(packet []byte) (complete bool, err error)

	// Decode decodes an audio packet into interleaved float32 samples and
	// returns the number of samples per channel.
	Decode(packet []byte, pcm []float32) (int, error)

	// MaxFrame is the largest number of samples per channel one packet can
	// produce.
	MaxFrame() int

	// Reset clears inter-packet state after a seek.
	Reset()
}

// detectOggCodec picks a codec from the first packet of the stream.
func detectOggCodec(first []byte) (oggCodec, error) {
	if len(first) >= 8 && string(first[:8]) == "OpusHead" {
		return newOpusCodec(first)
	}
	if len(first) >= 7 && first[0] == 0x01 && string(first[1:7]) == "vorbis" {
		return newVorbisCodec(first)
	}
	return nil, errUnknownOggCodec
}

type opusCodec struct {
	decoder  *opus.Decoder
	channels int
	preSkip  int
}

// newOpusCodec parses an OpusHead packet:
//
//	[0:8]   "OpusHead"
//	[8]     version (1)
//	[9]     channel count
//	[10:12] pre-skip (LE)
//	[12:16] input sample rate (informational)
func newOpusCodec(head []byte) (*opusCodec, error) {
	if len(head) < 19 {
		return nil, errInvalidOpusHead
	}
	if head[8] != 1 {
		return nil, errUnsupportedOpus
	}
	channels := int(head[9])
	if channels < 1 {
		return nil, errInvalidOpusHead
	}

	decoder, err := opus.NewDecoder(opusSampleRate, channels)
	if err != nil {
		return nil, err
	}
	return &opusCodec{
		decoder:  decoder,
		channels: channels,
		preSkip:  int(binary.LittleEndian.Uint16(head[10:12])),
	}, nil
}

func (c *opusCodec) Name() string    { return "Opus" }
func (c *opusCodec) SampleRate() int { return opusSampleRate }
func (c *opusCodec) Channels() int   { return c.channels }
func (c *opusCodec) PreSkip() int    { return c.preSkip }
func (c *opusCodec) MaxFrame() int   { return opusMaxFrame }

// AddHeaderPacket consumes the OpusTags packet that follows OpusHead.
func (c *opusCodec) AddHeaderPacket(_ []byte) (bool, error) {
	return true, nil
}

func (c *opusCodec) Decode(packet []byte, pcm []float32) (int, error) {
	return c.decoder.DecodeFloat32(packet, pcm)
}

// Reset is a no-op: the Opus decoder resynchronises on its own.
func (c *opusCodec) Reset() {}

type vorbisCodec struct {
	decoder    *vorbis.Decoder
	channels   int
	sampleRate int
	headers    [][]byte
}

// newVorbisCodec parses the identification header:
//
//	[0]     packet type (0x01)
//	[1:7]   "vorbis"
//	[7:11]  version (0)
//	[11]    channels
//	[12:16] sample rate (LE)
func newVorbisCodec(ident []byte) (*vorbisCodec, error) {
	if len(ident) < 16 {
		return nil, errInvalidVorbisHeader
	}
	if binary.LittleEndian.Uint32(ident[7:11]) != 0 || ident[11] == 0 {
		return nil, errInvalidVorbisHeader
	}
	return &vorbisCodec{
		channels:   int(ident[11]),
		sampleRate: int(binary.LittleEndian.Uint32(ident[12:16])),
		headers:    [][]byte{append([]byte(nil), ident...)},
	}, nil
}

func (c *vorbisCodec) Name() string    { return "Vorbis" }
func (c *vorbisCodec) SampleRate() int { return c.sampleRate }
func (c *vorbisCodec) Channels() int   { return c.channels }
func (c *vorbisCodec) PreSkip() int    { return 0 }

// MaxFrame is half the largest Vorbis block size (8192).
func (c *vorbisCodec) MaxFrame() int { return 4096 }

// AddHeaderPacket collects the comment and setup headers. The decoder is
// built once all three headers are present.
func (c *vorbisCodec) AddHeaderPacket(packet []byte) (bool, error) {
	if c.decoder != nil {
		return true, nil
	}
	c.headers = append(c.headers, append([]byte(nil), packet...))
	if len(c.headers) < 3 {
		return false, nil
	}

	decoder := &vorbis.Decoder{}
	for _, hdr := range c.headers {
		if err := decoder.ReadHeader(hdr); err != nil {
			return false, err
		}
	}
	c.decoder = decoder
	c.headers = nil
	return true, nil
}

func (c *vorbisCodec) Decode(packet []byte, pcm []float32) (int, error) {
	if c.decoder == nil {
		return 0, errVorbisNotReady
	}
	samples, err := c.decoder.Decode(packet)
	if err != nil {
		return 0, err
	}
	if len(pcm) < len(samples) {
		return 0, errVorbisBufferTooSmall
	}
	n := copy(pcm, samples)
	return n / c.channels, nil
}

func (c *vorbisCodec) Reset() {
	if c.decoder != nil {
		c.decoder.Clear()
	}
}

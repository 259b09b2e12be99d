// Package decoder opens audio files and exposes them as a uniform pull
// source of fixed-size sample chunks, whatever the underlying codec.
package decoder

import (
	"io"
	"os"
	"time"

	"github.com/gopxl/beep/v2"

	"github.com/llehouerou/soundplay/internal/audio"
)

// ChunkFrames is the number of frames in every chunk except the last one.
const ChunkFrames = 2048

// sniffSize is how many leading bytes are inspected to pick a variant.
const sniffSize = 12

// Decoder is a pull source of decoded audio.
//
// A Decoder supports exactly one consumer and is not safe for concurrent
// use.
type Decoder interface {
	// Next returns the next chunk, or io.EOF once the stream is exhausted.
	// A truncated file ends with io.EOF at the truncation point.
	Next() (*audio.Chunk, error)

	// Seek moves to the closest supported point at or before target and
	// returns the position actually reached. On failure it returns a
	// *SeekError holding the position the decoder is at.
	Seek(target time.Duration) (time.Duration, error)

	// Position returns the position of the next chunk to be returned.
	Position() time.Duration

	// Duration returns the total length, or 0 when unknown.
	Duration() time.Duration

	Format() audio.Format

	// Codec returns a short codec name such as "FLAC" or "Vorbis".
	Codec() string

	Close() error
}

// variant is one supported container/codec family.
type variant struct {
	name string
	// match inspects the first sniffSize bytes of the file (after any ID3v2
	// tag has been skipped).
	match func(header []byte) bool
	// keepTag makes open receive the file at offset 0 even when an ID3v2
	// tag precedes the audio data.
	keepTag bool
	open    func(f *os.File) (beep.StreamSeekCloser, beep.Format, string, error)
}

// variants lists the supported formats. Order matters only for signatures
// that could overlap; MP3 frame sync is the loosest so it goes last.
var variants = []variant{
	{name: "WAV", match: isWAV, open: openWAV},
	{name: "FLAC", match: isFLAC, open: openFLAC},
	{name: "Ogg", match: isOgg, open: openOgg},
	{name: "M4A", match: isM4A, open: openM4A},
	{name: "MP3", match: isMP3, keepTag: true, open: openMP3},
}

// Open opens path and selects a decoder by inspecting its signature.
//
// Errors are *IOError when the file cannot be read and *DecodeError when its
// contents are not a supported, well-formed audio stream.
func Open(path string) (Decoder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Path: path, Err: err}
	}

	v, offset, err := sniff(f)
	if err != nil {
		f.Close()
		if isTruncation(err) {
			return nil, &DecodeError{Path: path, Err: ErrUnsupportedFormat}
		}
		return nil, &IOError{Path: path, Err: err}
	}
	if v == nil {
		f.Close()
		return nil, &DecodeError{Path: path, Err: ErrUnsupportedFormat}
	}

	start := offset
	if v.keepTag {
		start = 0
	}
	if _, err := f.Seek(start, io.SeekStart); err != nil {
		f.Close()
		return nil, &IOError{Path: path, Err: err}
	}

	stream, format, codec, err := v.open(f)
	if err != nil {
		f.Close()
		return nil, &DecodeError{Path: path, Codec: v.name, Err: err}
	}
	if codec == "" {
		codec = v.name
	}
	return newStreamDecoder(stream, format, codec), nil
}

// sniff reads the file signature, skipping a leading ID3v2 tag, and returns
// the matching variant with the offset at which the audio data starts.
// A nil variant means the format is not recognised.
func sniff(r io.ReadSeeker) (*variant, int64, error) {
	offset, err := skipID3v2(r)
	if err != nil {
		return nil, 0, err
	}

	header := make([]byte, sniffSize)
	n, err := io.ReadFull(r, header)
	if err != nil && !isTruncation(err) {
		return nil, 0, err
	}
	if n == 0 {
		return nil, 0, io.ErrUnexpectedEOF
	}
	header = header[:n]

	if v := detect(header); v != nil {
		return v, offset, nil
	}
	// An ID3v2 tag with no recognisable payload is still most likely MP3.
	if offset > 0 {
		return variantByName("MP3"), offset, nil
	}
	return nil, 0, nil
}

// detect returns the first variant whose signature matches header.
func detect(header []byte) *variant {
	for i := range variants {
		if variants[i].match(header) {
			return &variants[i]
		}
	}
	return nil
}

func variantByName(name string) *variant {
	for i := range variants {
		if variants[i].name == name {
			return &variants[i]
		}
	}
	return nil
}

func isWAV(h []byte) bool {
	return len(h) >= 12 && string(h[0:4]) == "RIFF" && string(h[8:12]) == "WAVE"
}

func isFLAC(h []byte) bool {
	return len(h) >= 4 && string(h[0:4]) == "fLaC"
}

func isOgg(h []byte) bool {
	return len(h) >= 4 && string(h[0:4]) == "OggS"
}

func isM4A(h []byte) bool {
	return len(h) >= 8 && string(h[4:8]) == "ftyp"
}

func isMP3(h []byte) bool {
	return len(h) >= 2 && h[0] == 0xFF && h[1]&0xE0 == 0xE0
}

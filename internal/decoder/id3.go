package decoder

import (
	"errors"
	"io"
)

const id3HeaderSize = 10

// skipID3v2 positions r after an ID3v2 tag and returns the offset of the
// first byte following it. Without a tag r is rewound and 0 is returned.
// Some taggers prepend ID3v2 to FLAC files, which the FLAC decoder rejects.
func skipID3v2(r io.ReadSeeker) (int64, error) {
	var header [id3HeaderSize]byte
	n, err := io.ReadFull(r, header[:])
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return 0, err
	}
	if n < id3HeaderSize || string(header[0:3]) != "ID3" {
		_, err = r.Seek(0, io.SeekStart)
		return 0, err
	}

	// Tag size is a syncsafe integer: 7 bits per byte.
	size := int64(header[6]&0x7F)<<21 | int64(header[7]&0x7F)<<14 |
		int64(header[8]&0x7F)<<7 | int64(header[9]&0x7F)
	offset := id3HeaderSize + size
	// Footer present flag.
	if header[5]&0x10 != 0 {
		offset += id3HeaderSize
	}

	_, err = r.Seek(offset, io.SeekStart)
	return offset, err
}

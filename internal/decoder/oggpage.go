package decoder

import (
	"encoding/binary"
	"errors"
	"io"
)

var (
	errInvalidOggMagic   = errors.New("ogg: invalid capture pattern")
	errInvalidOggVersion = errors.New("ogg: unsupported version")
)

const (
	oggHeaderSize    = 27
	oggFlagContinued = 0x01
	// oggNoGranule marks pages on which no packet ends.
	oggNoGranule = -1
)

// oggPageHeader is the fixed header of an Ogg page plus its segment table.
type oggPageHeader struct {
	Flags        byte
	GranulePos   int64
	SerialNumber uint32
	SequenceNum  uint32
	SegmentTable []uint8
}

// bodySize returns the total length of the page payload.
func (h *oggPageHeader) bodySize() int64 {
	var n int64
	for _, s := range h.SegmentTable {
		n += int64(s)
	}
	return n
}

func parseOggPageHeader(r io.Reader) (*oggPageHeader, error) {
	var buf [oggHeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, err
	}
	if string(buf[0:4]) != "OggS" {
		return nil, errInvalidOggMagic
	}
	if buf[4] != 0 {
		return nil, errInvalidOggVersion
	}

	hdr := &oggPageHeader{
		Flags:        buf[5],
		GranulePos:   int64(binary.LittleEndian.Uint64(buf[6:14])), //nolint:gosec // granule is signed on the wire
		SerialNumber: binary.LittleEndian.Uint32(buf[14:18]),
		SequenceNum:  binary.LittleEndian.Uint32(buf[18:22]),
	}
	// buf[22:26] is the CRC; pages are trusted.
	if segments := int(buf[26]); segments > 0 {
		hdr.SegmentTable = make([]uint8, segments)
		if _, err := io.ReadFull(r, hdr.SegmentTable); err != nil {
			return nil, err
		}
	}
	return hdr, nil
}

// readOggPageBody splits a page payload into packets. A packet is terminated
// by a segment shorter than 255 bytes; trailing data without a terminator is
// returned as partial and continues on the next page.
func readOggPageBody(r io.Reader, hdr *oggPageHeader) (packets [][]byte, partial []byte, err error) {
	body := make([]byte, hdr.bodySize())
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, nil, err
	}

	start, end := 0, 0
	for _, seg := range hdr.SegmentTable {
		end += int(seg)
		if seg < 255 {
			packets = append(packets, body[start:end])
			start = end
		}
	}
	if start < end {
		partial = body[start:end]
	}
	return packets, partial, nil
}

// oggPacketReader reassembles packets across page boundaries.
type oggPacketReader struct {
	r       io.ReadSeeker
	pending [][]byte
	partial []byte
}

func newOggPacketReader(r io.ReadSeeker) *oggPacketReader {
	return &oggPacketReader{r: r}
}

// next returns the next complete packet, or io.EOF at the end of the stream.
func (o *oggPacketReader) next() ([]byte, error) {
	for len(o.pending) == 0 {
		hdr, err := parseOggPageHeader(o.r)
		if err != nil {
			return nil, err
		}
		packets, partial, err := readOggPageBody(o.r, hdr)
		if err != nil {
			return nil, err
		}

		if hdr.Flags&oggFlagContinued != 0 && o.partial != nil {
			if len(packets) > 0 {
				packets[0] = append(o.partial, packets[0]...)
			} else {
				partial = append(o.partial, partial...)
			}
		}
		o.pending = packets
		o.partial = partial
	}

	pkt := o.pending[0]
	o.pending = o.pending[1:]
	return pkt, nil
}

// reset drops buffered packets and continues reading at offset, which must
// be the start of a page.
func (o *oggPacketReader) reset(offset int64) error {
	o.pending = nil
	o.partial = nil
	_, err := o.r.Seek(offset, io.SeekStart)
	return err
}

// oggPageEntry locates one page that ends at least one packet.
type oggPageEntry struct {
	granule int64
	// end is the offset of the following page.
	end int64
}

// indexOggPages scans page headers from start to the end of the stream and
// returns the pages carrying a granule position. It is the seek table used
// for coarse seeking. A truncated last page ends the scan without error.
func indexOggPages(r io.ReadSeeker, start int64) ([]oggPageEntry, error) {
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}
	if _, err := r.Seek(start, io.SeekStart); err != nil {
		return nil, err
	}

	var index []oggPageEntry
	offset := start
	for {
		hdr, err := parseOggPageHeader(r)
		if err != nil {
			if isTruncation(err) {
				return index, nil
			}
			return nil, err
		}
		headerLen := int64(oggHeaderSize + len(hdr.SegmentTable))
		end := offset + headerLen + hdr.bodySize()
		if end > size {
			return index, nil
		}
		if _, err := r.Seek(end, io.SeekStart); err != nil {
			return nil, err
		}
		if hdr.GranulePos != oggNoGranule {
			index = append(index, oggPageEntry{granule: hdr.GranulePos, end: end})
		}
		offset = end
	}
}

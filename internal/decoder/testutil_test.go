package decoder

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// wavBytes builds a 16-bit PCM WAV file holding a 440 Hz tone.
func wavBytes(rate, channels int, frames int) []byte {
	dataSize := frames * channels * 2
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(rate))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(rate*channels*2))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(channels*2))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(dataSize))
	for i := range frames {
		v := int16(math.Sin(2*math.Pi*440*float64(i)/float64(rate)) * 8000)
		for range channels {
			_ = binary.Write(&buf, binary.LittleEndian, v)
		}
	}
	return buf.Bytes()
}

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// oggPage encodes one page. Each packet is laced into 255-byte segments.
func oggPage(flags byte, granule int64, seq uint32, packets ...[]byte) []byte {
	var table []byte
	var body []byte
	for _, p := range packets {
		n := len(p)
		for n >= 255 {
			table = append(table, 255)
			n -= 255
		}
		table = append(table, byte(n))
		body = append(body, p...)
	}
	return oggRawPage(flags, granule, seq, table, body)
}

func oggRawPage(flags byte, granule int64, seq uint32, table, body []byte) []byte {
	page := make([]byte, oggHeaderSize, oggHeaderSize+len(table)+len(body))
	copy(page, "OggS")
	page[5] = flags
	binary.LittleEndian.PutUint64(page[6:], uint64(granule)) //nolint:gosec // test data
	binary.LittleEndian.PutUint32(page[14:], 1)
	binary.LittleEndian.PutUint32(page[18:], seq)
	page[26] = byte(len(table))
	page = append(page, table...)
	return append(page, body...)
}

// flacBytes builds a 16-bit mono FLAC file at 8 kHz holding a 440 Hz tone,
// stored as verbatim subframes of blockSize samples each.
func flacBytes(frames, blockSize int) []byte {
	const rate = 8000

	var buf bytes.Buffer
	buf.WriteString("fLaC")

	// STREAMINFO, flagged as the last metadata block.
	buf.Write([]byte{0x80, 0, 0, 34})
	_ = binary.Write(&buf, binary.BigEndian, uint16(blockSize))
	_ = binary.Write(&buf, binary.BigEndian, uint16(blockSize))
	buf.Write(make([]byte, 6)) // min/max frame size unknown
	packed := uint64(rate)<<44 | uint64(0)<<41 | uint64(15)<<36 | uint64(frames)
	_ = binary.Write(&buf, binary.BigEndian, packed)
	buf.Write(make([]byte, 16)) // MD5 unset

	for n, start := 0, 0; start < frames; n, start = n+1, start+blockSize {
		size := min(blockSize, frames-start)

		frame := []byte{
			0xFF, 0xF8, // sync, fixed block size
			0x74,    // block size from header end (16 bit), 8 kHz
			0x08,    // mono, 16 bits per sample
			byte(n), // frame number, single-byte UTF-8
			byte((size - 1) >> 8), byte(size - 1),
		}
		frame = append(frame, flacCRC8(frame))

		frame = append(frame, 0x02) // verbatim subframe
		for i := start; i < start+size; i++ {
			v := int16(math.Sin(2*math.Pi*440*float64(i)/rate) * 8000)
			frame = binary.BigEndian.AppendUint16(frame, uint16(v)) //nolint:gosec // two's complement on the wire
		}
		frame = binary.BigEndian.AppendUint16(frame, flacCRC16(frame))
		buf.Write(frame)
	}
	return buf.Bytes()
}

func flacCRC8(data []byte) byte {
	var crc byte
	for _, b := range data {
		crc ^= b
		for range 8 {
			if crc&0x80 != 0 {
				crc = crc<<1 ^ 0x07
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

func flacCRC16(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc ^= uint16(b) << 8
		for range 8 {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x8005
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

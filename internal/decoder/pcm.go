package decoder

import (
	"os"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/wav"
)

func openWAV(f *os.File) (beep.StreamSeekCloser, beep.Format, string, error) {
	s, format, err := wav.Decode(f)
	return s, format, "WAV", err
}

func openFLAC(f *os.File) (beep.StreamSeekCloser, beep.Format, string, error) {
	s, format, err := flac.Decode(f)
	return s, format, "FLAC", err
}

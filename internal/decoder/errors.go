package decoder

import (
	"errors"
	"fmt"
	"io"
	"time"
)

// ErrUnsupportedFormat is wrapped by DecodeError when no variant recognises
// the file signature.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// DecodeError reports corrupt or unsupported input. It is fatal.
type DecodeError struct {
	Path  string
	Codec string
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Codec == "" {
		return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("decode %s (%s): %v", e.Path, e.Codec, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IOError reports a source file that cannot be accessed. It is fatal at open.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string { return fmt.Sprintf("open %s: %v", e.Path, e.Err) }

func (e *IOError) Unwrap() error { return e.Err }

// SeekError reports a seek target the codec could not reach. Achieved is the
// position the decoder is at after the failed attempt; callers continue from
// there.
type SeekError struct {
	Target   time.Duration
	Achieved time.Duration
	Err      error
}

func (e *SeekError) Error() string {
	return fmt.Sprintf("seek to %s (at %s): %v", e.Target, e.Achieved, e.Err)
}

func (e *SeekError) Unwrap() error { return e.Err }

// isTruncation reports whether err only means the stream ended early.
func isTruncation(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import (
	"errors"
	"fmt"

	"github.com/llehouerou/soundplay/internal/decoder"
	"github.com/llehouerou/soundplay/internal/sink"
)

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Startup
	OpConfigLoad Op = "load configuration"
	OpStateOpen  Op = "open state database"

	// Playback
	OpFileOpen   Op = "open file"
	OpDecode     Op = "decode audio"
	OpDeviceOpen Op = "open audio device"
	OpPlayback   Op = "play"
	OpInput      Op = "read keyboard input"

	// Persistence and integrations
	OpStateSave Op = "save playback state"
	OpMetadata  Op = "read tags"
	OpMPRIS     Op = "register media controls"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}

// OpFor picks the operation matching a playback error, falling back to
// OpPlayback for errors outside the taxonomy.
func OpFor(err error) Op {
	var (
		ioErr     *decoder.IOError
		decodeErr *decoder.DecodeError
		deviceErr *sink.DeviceError
	)
	switch {
	case errors.As(err, &ioErr):
		return OpFileOpen
	case errors.As(err, &decodeErr):
		return OpDecode
	case errors.As(err, &deviceErr):
		return OpDeviceOpen
	default:
		return OpPlayback
	}
}

package input

import (
	"os"

	"golang.org/x/term"
)

// RawMode switches a terminal to raw input and returns the function that
// restores its previous mode.
type RawMode interface {
	MakeRaw() (restore func() error, err error)
}

type fdRawMode struct {
	fd int
}

// TerminalRawMode returns the raw mode controller for f, usually os.Stdin.
func TerminalRawMode(f *os.File) RawMode {
	return fdRawMode{fd: int(f.Fd())} //nolint:gosec // fd fits in int
}

func (m fdRawMode) MakeRaw() (func() error, error) {
	state, err := term.MakeRaw(m.fd)
	if err != nil {
		return nil, err
	}
	return func() error { return term.Restore(m.fd, state) }, nil
}

// IsTerminal reports whether f is connected to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd())) //nolint:gosec // fd fits in int
}

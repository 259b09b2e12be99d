//go:build windows

// Package stderr is a pass-through on Windows, where the audio backend does
// not write to the console on its own.
package stderr

import "os"

// Messages never receives anything on Windows.
var Messages = make(chan string)

func Start() error { return nil }

// Original returns os.Stderr.
func Original() *os.File { return os.Stderr }

// WriteOriginal writes msg to stderr.
func WriteOriginal(msg string) {
	_, _ = os.Stderr.WriteString(msg)
}

func Stop() {}

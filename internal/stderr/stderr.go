//go:build !windows

// Package stderr captures output that native decoders and the audio backend
// write straight to file descriptor 2, so it cannot tear through the progress
// line. Captured lines are handed to the renderer, which prints them above
// the frame on the original stream.
package stderr

import (
	"bufio"
	"os"
	"strings"
	"sync"
	"syscall"
)

// Messages receives captured lines. Lines are dropped when nobody reads.
var Messages = make(chan string, 100)

var (
	mu       sync.Mutex
	original *os.File
	pipeR    *os.File
	pipeW    *os.File
	started  bool
)

// Start redirects fd 2 into a pipe. On failure the process keeps writing to
// the real stderr and the error is only informational.
func Start() error {
	mu.Lock()
	defer mu.Unlock()
	if started {
		return nil
	}

	r, w, err := os.Pipe()
	if err != nil {
		return err
	}

	fd, err := syscall.Dup(int(os.Stderr.Fd()))
	if err != nil {
		r.Close()
		w.Close()
		return err
	}

	if err := syscall.Dup2(int(w.Fd()), int(os.Stderr.Fd())); err != nil {
		_ = syscall.Close(fd)
		r.Close()
		w.Close()
		return err
	}

	original = os.NewFile(uintptr(fd), "/dev/stderr")
	pipeR, pipeW = r, w
	started = true

	go forward(r)
	return nil
}

func forward(r *os.File) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		select {
		case Messages <- line:
		default:
		}
	}
}

// Original returns the stream that reaches the user's terminal: the saved
// descriptor while capturing, os.Stderr otherwise.
func Original() *os.File {
	mu.Lock()
	defer mu.Unlock()
	if original != nil {
		return original
	}
	return os.Stderr
}

// WriteOriginal writes msg to the original stderr, bypassing capture.
func WriteOriginal(msg string) {
	_, _ = Original().WriteString(msg)
}

// Stop restores fd 2. Lines still in the pipe are lost.
func Stop() {
	mu.Lock()
	defer mu.Unlock()
	if !started {
		return
	}

	_ = syscall.Dup2(int(original.Fd()), int(os.Stderr.Fd()))
	original.Close()
	original = nil

	pipeW.Close()
	pipeR.Close()
	started = false
}

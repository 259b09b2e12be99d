package state

import "time"

// Interface defines the state manager contract for dependency injection and testing.
type Interface interface {
	GetVolume() (*VolumeState, error)
	SaveVolume(volume float64, muted bool) error
	GetResume(path string) (*Resume, error)
	SaveResume(path string, position, duration time.Duration)
	ClearResume(path string) error
	Close() error
}

// Verify Manager implements Interface at compile time.
var _ Interface = (*Manager)(nil)

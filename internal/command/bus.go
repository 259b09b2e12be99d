package command

import "context"

const defaultBusSize = 16

// Bus is an ordered many-producer, single-consumer channel of commands.
type Bus struct {
	ch chan Command
}

// NewBus creates a bus buffering up to size commands. A size <= 0 uses the
// default.
func NewBus(size int) *Bus {
	if size <= 0 {
		size = defaultBusSize
	}
	return &Bus{ch: make(chan Command, size)}
}

// Publish enqueues cmd, blocking while the bus is full.
// Returns ctx.Err() if ctx is done first.
func (b *Bus) Publish(ctx context.Context, cmd Command) error {
	select {
	case b.ch <- cmd:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryPublish enqueues cmd without blocking. Returns false if the bus is full.
func (b *Bus) TryPublish(cmd Command) bool {
	select {
	case b.ch <- cmd:
		return true
	default:
		return false
	}
}

// C returns the receive side. Only the controller reads from it.
func (b *Bus) C() <-chan Command {
	return b.ch
}

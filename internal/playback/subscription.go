package playback

import "time"

const eventBufferSize = 16

// Subscription delivers controller events to one reader. Sends never block
// the controller: events are dropped when a buffer is full.
type Subscription struct {
	StateChanged  <-chan StateChange
	Seeked        <-chan PositionChange
	VolumeChanged <-chan VolumeChange
	// Done is closed when the controller's Run returns.
	Done <-chan struct{}

	stateCh  chan StateChange
	seekCh   chan PositionChange
	volumeCh chan VolumeChange
	doneCh   chan struct{}
}

func newSubscription() *Subscription {
	s := &Subscription{
		stateCh:  make(chan StateChange, eventBufferSize),
		seekCh:   make(chan PositionChange, eventBufferSize),
		volumeCh: make(chan VolumeChange, eventBufferSize),
		doneCh:   make(chan struct{}),
	}
	s.StateChanged = s.stateCh
	s.Seeked = s.seekCh
	s.VolumeChanged = s.volumeCh
	s.Done = s.doneCh
	return s
}

func (s *Subscription) close() {
	close(s.doneCh)
}

func (s *Subscription) sendState(e StateChange) {
	select {
	case s.stateCh <- e:
	default:
	}
}

func (s *Subscription) sendSeek(pos time.Duration) {
	select {
	case s.seekCh <- PositionChange{Position: pos}:
	default:
	}
}

func (s *Subscription) sendVolume(e VolumeChange) {
	select {
	case s.volumeCh <- e:
	default:
	}
}

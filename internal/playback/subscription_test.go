package playback

import (
	"testing"
	"testing/synctest"
	"time"
)

func TestNewSubscription_ChannelsReadable(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		sub := newSubscription()

		sub.sendState(StateChange{Previous: Idle, Current: Playing})
		sub.sendSeek(30 * time.Second)
		sub.sendVolume(VolumeChange{Volume: 1.5, Muted: true})

		e := <-sub.StateChanged
		if e.Current != Playing {
			t.Errorf("StateChanged.Current = %v, want Playing", e.Current)
		}

		pos := <-sub.Seeked
		if pos.Position != 30*time.Second {
			t.Errorf("Seeked.Position = %v, want 30s", pos.Position)
		}

		v := <-sub.VolumeChanged
		if v.Volume != 1.5 || !v.Muted {
			t.Errorf("VolumeChanged = %+v, want {1.5 true}", v)
		}
	})
}

func TestSubscription_Close_SignalsDone(t *testing.T) {
	synctest.Test(t, func(_ *testing.T) {
		sub := newSubscription()
		sub.close()
		<-sub.Done
	})
}

func TestSubscription_NonBlocking_DropsWhenFull(t *testing.T) {
	sub := newSubscription()

	for range eventBufferSize + 5 {
		sub.sendState(StateChange{})
	}

	count := 0
	for {
		select {
		case <-sub.StateChanged:
			count++
		default:
			if count != eventBufferSize {
				t.Errorf("received %d events, want %d (buffer size)", count, eventBufferSize)
			}
			return
		}
	}
}

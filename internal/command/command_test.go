package command

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommand_String(t *testing.T) {
	tests := []struct {
		cmd  Command
		want string
	}{
		{TogglePause{}, "TogglePause"},
		{SeekRelative{Delta: -5 * time.Second}, "SeekRelative(-5s)"},
		{VolumeDelta{Percent: 5}, "VolumeDelta(+5%)"},
		{VolumeDelta{Percent: -5}, "VolumeDelta(-5%)"},
		{ToggleMute{}, "ToggleMute"},
		{Quit{}, "Quit"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cmd.String())
		})
	}
}

func TestBus_PreservesOrder(t *testing.T) {
	bus := NewBus(4)
	ctx := context.Background()

	require.NoError(t, bus.Publish(ctx, TogglePause{}))
	require.NoError(t, bus.Publish(ctx, SeekRelative{Delta: time.Second}))
	require.NoError(t, bus.Publish(ctx, Quit{}))

	assert.Equal(t, TogglePause{}, <-bus.C())
	assert.Equal(t, SeekRelative{Delta: time.Second}, <-bus.C())
	assert.Equal(t, Quit{}, <-bus.C())
}

func TestBus_PublishRespectsContext(t *testing.T) {
	bus := NewBus(1)
	require.True(t, bus.TryPublish(ToggleMute{}))
	assert.False(t, bus.TryPublish(ToggleMute{}), "bus should be full")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := bus.Publish(ctx, Quit{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBus_ManyProducers(t *testing.T) {
	bus := NewBus(0)
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 25 {
				_ = bus.Publish(ctx, ToggleMute{})
			}
		}()
	}

	received := 0
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	for received < 100 {
		<-bus.C()
		received++
	}
	<-done
	assert.Equal(t, 100, received)
}

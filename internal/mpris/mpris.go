//go:build linux

package mpris

import (
	"sync"
	"time"

	"github.com/quarckster/go-mpris-server/pkg/events"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/llehouerou/soundplay/internal/command"
	"github.com/llehouerou/soundplay/internal/meta"
)

const busName = "soundplay"

// Adapter exposes a playback session on the session bus as
// org.mpris.MediaPlayer2.soundplay. Method calls become bus commands;
// controller events become property change signals.
type Adapter struct {
	server *server.Server
	events *events.EventHandler
	done   chan struct{}
	wg     sync.WaitGroup
}

// New registers the player and starts forwarding events.
func New(ctl Controller, bus Publisher, info meta.Info) (*Adapter, error) {
	player := &playerAdapter{ctl: ctl, bus: bus, info: info}
	a := &Adapter{
		server: server.NewServer(busName, &rootAdapter{bus: bus}, player),
		done:   make(chan struct{}),
	}
	a.events = events.NewEventHandler(a.server)

	go func() {
		_ = a.server.Listen()
	}()

	a.wg.Add(1)
	go a.forward(ctl)
	return a, nil
}

func (a *Adapter) forward(ctl Controller) {
	defer a.wg.Done()
	sub := ctl.Subscribe()
	for {
		select {
		case <-a.done:
			return
		case <-sub.Done:
			_ = a.events.Player.OnPlayPause()
			return
		case <-sub.StateChanged:
			_ = a.events.Player.OnPlayPause()
		case e := <-sub.Seeked:
			_ = a.events.Player.OnSeek(types.Microseconds(e.Position.Microseconds()))
		case <-sub.VolumeChanged:
			_ = a.events.Player.OnVolume()
		}
	}
}

// Close unregisters the player and releases the D-Bus connection.
func (a *Adapter) Close() error {
	close(a.done)
	a.wg.Wait()
	return a.server.Stop()
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct {
	bus Publisher
}

func (r *rootAdapter) Raise() error {
	return nil // no window
}

func (r *rootAdapter) Quit() error {
	r.bus.TryPublish(command.Quit{})
	return nil
}

func (r *rootAdapter) CanQuit() (bool, error)      { return true, nil }
func (r *rootAdapter) CanRaise() (bool, error)     { return false, nil }
func (r *rootAdapter) HasTrackList() (bool, error) { return false, nil }
func (r *rootAdapter) Identity() (string, error)   { return "soundplay", nil }

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"file"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{
		"audio/wav", "audio/flac", "audio/mpeg", "audio/ogg", "audio/opus", "audio/mp4",
	}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter.
type playerAdapter struct {
	ctl  Controller
	bus  Publisher
	info meta.Info
}

func (p *playerAdapter) Next() error     { return nil }
func (p *playerAdapter) Previous() error { return nil }

func (p *playerAdapter) Pause() error {
	if cmd, ok := pauseCommand(p.ctl.Snapshot()); ok {
		p.bus.TryPublish(cmd)
	}
	return nil
}

func (p *playerAdapter) Play() error {
	if cmd, ok := playCommand(p.ctl.Snapshot()); ok {
		p.bus.TryPublish(cmd)
	}
	return nil
}

func (p *playerAdapter) PlayPause() error {
	p.bus.TryPublish(command.TogglePause{})
	return nil
}

func (p *playerAdapter) Stop() error {
	p.bus.TryPublish(command.Quit{})
	return nil
}

func (p *playerAdapter) Seek(offset types.Microseconds) error {
	p.bus.TryPublish(command.SeekRelative{Delta: time.Duration(offset) * time.Microsecond})
	return nil
}

func (p *playerAdapter) SetPosition(_ string, position types.Microseconds) error {
	p.bus.TryPublish(setPositionCommand(p.ctl.Snapshot(), time.Duration(position)*time.Microsecond))
	return nil
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(_ string) error {
	return nil // single-file sessions
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	return playbackStatus(p.ctl.Snapshot().State), nil
}

func (p *playerAdapter) Rate() (float64, error)        { return 1.0, nil }
func (p *playerAdapter) SetRate(_ float64) error       { return nil }
func (p *playerAdapter) MinimumRate() (float64, error) { return 1.0, nil }
func (p *playerAdapter) MaximumRate() (float64, error) { return 1.0, nil }

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	return metadata(p.info, p.ctl.Snapshot().Total), nil
}

func (p *playerAdapter) Volume() (float64, error) {
	s := p.ctl.Snapshot()
	if s.Muted {
		return 0, nil
	}
	return s.Volume, nil
}

func (p *playerAdapter) SetVolume(v float64) error {
	if cmd, ok := setVolumeCommand(p.ctl.Snapshot(), v); ok {
		p.bus.TryPublish(cmd)
	}
	return nil
}

func (p *playerAdapter) Position() (int64, error) {
	return p.ctl.Snapshot().Elapsed.Microseconds(), nil
}

func (p *playerAdapter) CanGoNext() (bool, error)     { return false, nil }
func (p *playerAdapter) CanGoPrevious() (bool, error) { return false, nil }
func (p *playerAdapter) CanPlay() (bool, error)       { return true, nil }
func (p *playerAdapter) CanPause() (bool, error)      { return true, nil }
func (p *playerAdapter) CanSeek() (bool, error)       { return true, nil }
func (p *playerAdapter) CanControl() (bool, error)    { return true, nil }

package mpris

import (
	"fmt"
	"hash/fnv"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/llehouerou/soundplay/internal/command"
	"github.com/llehouerou/soundplay/internal/meta"
	"github.com/llehouerou/soundplay/internal/playback"
)

// Controller is the read side of the playback controller.
type Controller interface {
	Snapshot() playback.Snapshot
	Subscribe() *playback.Subscription
}

// Publisher queues commands without blocking the D-Bus handler.
type Publisher interface {
	TryPublish(cmd command.Command) bool
}

// playCommand resumes a paused session; Play while playing does nothing.
func playCommand(s playback.Snapshot) (command.Command, bool) {
	if s.State.IsPaused() {
		return command.TogglePause{}, true
	}
	return nil, false
}

func pauseCommand(s playback.Snapshot) (command.Command, bool) {
	if s.State.IsPaused() || s.State.IsTerminal() {
		return nil, false
	}
	return command.TogglePause{}, true
}

// setPositionCommand expresses an absolute position as a relative seek from
// the position heard so far, which is where relative seeks start.
func setPositionCommand(s playback.Snapshot, target time.Duration) command.Command {
	return command.SeekRelative{Delta: target - s.Elapsed}
}

// setVolumeCommand expresses an absolute volume as a relative change. A
// silent session cannot be scaled back up, so it is refused.
func setVolumeCommand(s playback.Snapshot, volume float64) (command.Command, bool) {
	volume = max(volume, 0)
	if s.Volume <= 0 || volume == s.Volume {
		return nil, false
	}
	return command.VolumeDelta{Percent: (volume/s.Volume - 1) * 100}, true
}

func playbackStatus(st playback.State) types.PlaybackStatus {
	switch st {
	case playback.Paused:
		return types.PlaybackStatusPaused
	case playback.Finished, playback.Stopped:
		return types.PlaybackStatusStopped
	default:
		return types.PlaybackStatusPlaying
	}
}

func metadata(info meta.Info, total time.Duration) types.Metadata {
	m := types.Metadata{
		TrackId:     dbus.ObjectPath(formatTrackID(info.Path)),
		Length:      types.Microseconds(total.Microseconds()),
		Title:       info.DisplayTitle(),
		Album:       info.Album,
		TrackNumber: info.Track,
		ArtUrl:      artURL(info.Path),
	}
	if info.Artist != "" {
		m.Artist = []string{info.Artist}
	}
	return m
}

func formatTrackID(path string) string {
	h := fnv.New64a()
	h.Write([]byte(path))
	return fmt.Sprintf("/org/mpris/MediaPlayer2/soundplay/Track/%x", h.Sum64())
}

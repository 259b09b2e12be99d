package mpris

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/llehouerou/soundplay/internal/command"
	"github.com/llehouerou/soundplay/internal/meta"
	"github.com/llehouerou/soundplay/internal/playback"
)

func snap(state playback.State, pos time.Duration, volume float64) playback.Snapshot {
	return playback.Snapshot{
		PlaybackState: playback.PlaybackState{State: state, Position: pos, Volume: volume},
		Elapsed:       pos,
	}
}

func TestPlayPauseCommands(t *testing.T) {
	tests := []struct {
		state     playback.State
		wantPlay  bool
		wantPause bool
	}{
		{playback.Idle, false, true},
		{playback.Playing, false, true},
		{playback.Paused, true, false},
		{playback.Seeking, false, true},
		{playback.Finished, false, false},
		{playback.Stopped, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			cmd, ok := playCommand(snap(tt.state, 0, 1))
			if ok != tt.wantPlay {
				t.Errorf("playCommand ok = %v, want %v", ok, tt.wantPlay)
			}
			if ok && cmd != (command.TogglePause{}) {
				t.Errorf("playCommand = %#v, want TogglePause", cmd)
			}

			cmd, ok = pauseCommand(snap(tt.state, 0, 1))
			if ok != tt.wantPause {
				t.Errorf("pauseCommand ok = %v, want %v", ok, tt.wantPause)
			}
			if ok && cmd != (command.TogglePause{}) {
				t.Errorf("pauseCommand = %#v, want TogglePause", cmd)
			}
		})
	}
}

func TestSetPositionCommand(t *testing.T) {
	got := setPositionCommand(snap(playback.Playing, 30*time.Second, 1), 10*time.Second)
	if want := (command.SeekRelative{Delta: -20 * time.Second}); got != want {
		t.Errorf("setPositionCommand = %#v, want %#v", got, want)
	}
}

func TestSetPositionCommand_FromHeardPosition(t *testing.T) {
	s := snap(playback.Playing, 30*time.Second, 1)
	s.Elapsed = 29800 * time.Millisecond

	got := setPositionCommand(s, 10*time.Second)
	if want := (command.SeekRelative{Delta: -19800 * time.Millisecond}); got != want {
		t.Errorf("setPositionCommand = %#v, want %#v", got, want)
	}
}

func TestSetVolumeCommand(t *testing.T) {
	tests := []struct {
		name    string
		current float64
		target  float64
		want    float64
		ok      bool
	}{
		{"halve", 1, 0.5, -50, true},
		{"raise", 0.5, 1, 100, true},
		{"to silence", 1, 0, -100, true},
		{"negative clamps to silence", 1, -2, -100, true},
		{"unchanged", 1, 1, 0, false},
		{"silent cannot be scaled", 0, 1, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, ok := setVolumeCommand(snap(playback.Playing, 0, tt.current), tt.target)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			vd, isVD := cmd.(command.VolumeDelta)
			if !isVD {
				t.Fatalf("command = %#v, want VolumeDelta", cmd)
			}
			if math.Abs(vd.Percent-tt.want) > 1e-9 {
				t.Errorf("Percent = %v, want %v", vd.Percent, tt.want)
			}
			if got := tt.current * (1 + vd.Percent/100); math.Abs(got-max(tt.target, 0)) > 1e-9 {
				t.Errorf("applied volume = %v, want %v", got, tt.target)
			}
		})
	}
}

func TestPlaybackStatus(t *testing.T) {
	tests := []struct {
		state playback.State
		want  types.PlaybackStatus
	}{
		{playback.Idle, types.PlaybackStatusPlaying},
		{playback.Playing, types.PlaybackStatusPlaying},
		{playback.Seeking, types.PlaybackStatusPlaying},
		{playback.Paused, types.PlaybackStatusPaused},
		{playback.Finished, types.PlaybackStatusStopped},
		{playback.Stopped, types.PlaybackStatusStopped},
	}

	for _, tt := range tests {
		if got := playbackStatus(tt.state); got != tt.want {
			t.Errorf("playbackStatus(%v) = %v, want %v", tt.state, got, tt.want)
		}
	}
}

func TestMetadata(t *testing.T) {
	info := meta.Info{Path: "/music/a/01 Intro.flac", Artist: "Band", Album: "Record", Track: 1}

	m := metadata(info, 90*time.Second)

	if m.Title != "01 Intro" {
		t.Errorf("Title = %q, want file name fallback", m.Title)
	}
	if len(m.Artist) != 1 || m.Artist[0] != "Band" {
		t.Errorf("Artist = %v", m.Artist)
	}
	if m.Length != types.Microseconds(90_000_000) {
		t.Errorf("Length = %v, want 90s", m.Length)
	}
	if !strings.HasPrefix(string(m.TrackId), "/org/mpris/MediaPlayer2/soundplay/Track/") {
		t.Errorf("TrackId = %q", m.TrackId)
	}
}

func TestFormatTrackID_Stable(t *testing.T) {
	a := formatTrackID("/music/a.flac")
	if a != formatTrackID("/music/a.flac") {
		t.Error("track id is not deterministic")
	}
	if a == formatTrackID("/music/b.flac") {
		t.Error("different paths share a track id")
	}
}

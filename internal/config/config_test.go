package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adrg/xdg"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("Could not get home dir: %v", err)
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"tilde expands to home", "~/soundplay.toml", filepath.Join(home, "soundplay.toml")},
		{"absolute path unchanged", "/etc/soundplay.toml", "/etc/soundplay.toml"},
		{"relative path unchanged", "conf/soundplay.toml", "conf/soundplay.toml"},
		{"empty string unchanged", "", ""},
		{"tilde only", "~", home},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandPath(tt.input)
			if result != tt.expected {
				t.Errorf("expandPath(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestGetConfigPaths(t *testing.T) {
	paths := getConfigPaths()

	if len(paths) != 2 {
		t.Fatalf("getConfigPaths() = %v, want 2 entries", paths)
	}
	if want := filepath.Join(xdg.ConfigHome, "soundplay", "config.toml"); paths[0] != want {
		t.Errorf("first config path = %q, want %q", paths[0], want)
	}
	if paths[1] != "soundplay.toml" {
		t.Errorf("last config path = %q, want %q", paths[1], "soundplay.toml")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ExplicitFile(t *testing.T) {
	path := writeConfig(t, `
icons = "nerd"
volume = 0.8
buffer_ms = 300
render_interval_ms = 50
interactive_threshold = "30s"
seek_step = "10s"
volume_step = 10.0
remember_volume = true
resume = true
mpris = true
notify = true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Icons != "nerd" {
		t.Errorf("Icons = %q, want nerd", cfg.Icons)
	}
	if got := cfg.InitialVolume(); got != 0.8 {
		t.Errorf("InitialVolume() = %v, want 0.8", got)
	}
	if got := cfg.Buffer(); got != 300*time.Millisecond {
		t.Errorf("Buffer() = %v, want 300ms", got)
	}
	if got := cfg.RenderInterval(); got != 50*time.Millisecond {
		t.Errorf("RenderInterval() = %v, want 50ms", got)
	}
	if got := cfg.Threshold(); got != 30*time.Second {
		t.Errorf("Threshold() = %v, want 30s", got)
	}
	if got := cfg.Seek(); got != 10*time.Second {
		t.Errorf("Seek() = %v, want 10s", got)
	}
	if got := cfg.VolumeStepPercent(); got != 10 {
		t.Errorf("VolumeStepPercent() = %v, want 10", got)
	}
	if !cfg.RememberVolume || !cfg.Resume || !cfg.MPRIS || !cfg.Notify {
		t.Errorf("flags = %v/%v/%v/%v, want all true", cfg.RememberVolume, cfg.Resume, cfg.MPRIS, cfg.Notify)
	}
}

func TestLoad_ExplicitMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("Load() with missing explicit file should fail")
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := writeConfig(t, "volume = [")
	if _, err := Load(path); err == nil {
		t.Error("Load() with invalid TOML should fail")
	}
}

func TestDefaults(t *testing.T) {
	cfg := &Config{}

	if got := cfg.InitialVolume(); got != 1 {
		t.Errorf("InitialVolume() = %v, want 1", got)
	}
	if got := cfg.Buffer(); got != DefaultBuffer {
		t.Errorf("Buffer() = %v, want %v", got, DefaultBuffer)
	}
	if got := cfg.RenderInterval(); got != DefaultRenderInterval {
		t.Errorf("RenderInterval() = %v, want %v", got, DefaultRenderInterval)
	}
	if got := cfg.Threshold(); got != DefaultInteractiveThreshold {
		t.Errorf("Threshold() = %v, want %v", got, DefaultInteractiveThreshold)
	}
	if got := cfg.Seek(); got != DefaultSeekStep {
		t.Errorf("Seek() = %v, want %v", got, DefaultSeekStep)
	}
	if got := cfg.VolumeStepPercent(); got != DefaultVolumeStep {
		t.Errorf("VolumeStepPercent() = %v, want %v", got, DefaultVolumeStep)
	}
}

func TestInitialVolume(t *testing.T) {
	tests := []struct {
		name string
		vol  *float64
		want float64
	}{
		{"unset", nil, 1},
		{"zero is silent", new(float64), 0},
		{"negative falls back", ptr(-1.0), 1},
		{"amplified", ptr(2.5), 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Volume: tt.vol}
			if got := cfg.InitialVolume(); got != tt.want {
				t.Errorf("InitialVolume() = %v, want %v", got, tt.want)
			}
		})
	}
}

func ptr[T any](v T) *T { return &v }

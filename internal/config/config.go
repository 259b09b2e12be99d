package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const appName = "soundplay"

// Defaults applied when a key is missing or out of range.
const (
	DefaultBuffer               = 200 * time.Millisecond
	DefaultRenderInterval       = 100 * time.Millisecond
	DefaultInteractiveThreshold = time.Minute
	DefaultSeekStep             = 5 * time.Second
	DefaultVolumeStep           = 5.0
)

type Config struct {
	Icons  string   `koanf:"icons"`  // "unicode", "nerd" or "none"
	Volume *float64 `koanf:"volume"` // initial volume factor (default: 1.0)

	BufferMS         int `koanf:"buffer_ms"`          // device ring depth (default: 200)
	RenderIntervalMS int `koanf:"render_interval_ms"` // progress redraw period (default: 100)

	// Sessions longer than this get the key listener (default: "1m").
	InteractiveThreshold time.Duration `koanf:"interactive_threshold"`

	SeekStep   time.Duration `koanf:"seek_step"`   // default: "5s"
	VolumeStep float64       `koanf:"volume_step"` // percent of current volume (default: 5)

	RememberVolume bool `koanf:"remember_volume"` // restore last volume/mute
	Resume         bool `koanf:"resume"`          // continue files where they were left
	MPRIS          bool `koanf:"mpris"`           // expose the session over D-Bus (Linux)
	Notify         bool `koanf:"notify"`          // desktop notification when playback starts
}

// Load reads the configuration files. With an explicit path only that file
// is read and it must exist; otherwise the XDG config file and then
// ./soundplay.toml are merged, later files winning.
func Load(explicit string) (*Config, error) {
	k := koanf.New(".")

	if explicit != "" {
		path := expandPath(explicit)
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	} else {
		for _, path := range getConfigPaths() {
			if _, err := os.Stat(path); err != nil {
				continue
			}
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, fmt.Errorf("load %s: %w", path, err)
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func getConfigPaths() []string {
	return []string{
		filepath.Join(xdg.ConfigHome, appName, "config.toml"),
		appName + ".toml",
	}
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// InitialVolume returns the configured volume, 1.0 when unset or negative.
func (c *Config) InitialVolume() float64 {
	if c.Volume == nil || *c.Volume < 0 {
		return 1
	}
	return *c.Volume
}

func (c *Config) Buffer() time.Duration {
	if c.BufferMS <= 0 {
		return DefaultBuffer
	}
	return time.Duration(c.BufferMS) * time.Millisecond
}

func (c *Config) RenderInterval() time.Duration {
	if c.RenderIntervalMS <= 0 {
		return DefaultRenderInterval
	}
	return time.Duration(c.RenderIntervalMS) * time.Millisecond
}

func (c *Config) Threshold() time.Duration {
	if c.InteractiveThreshold <= 0 {
		return DefaultInteractiveThreshold
	}
	return c.InteractiveThreshold
}

func (c *Config) Seek() time.Duration {
	if c.SeekStep <= 0 {
		return DefaultSeekStep
	}
	return c.SeekStep
}

func (c *Config) VolumeStepPercent() float64 {
	if c.VolumeStep <= 0 {
		return DefaultVolumeStep
	}
	return c.VolumeStep
}

// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Game   GameConfig   `toml:"game"`
	Player PlayerConfig `toml:"player"`
	Theme  ThemeConfig  `toml:"theme"`
	Log    LogConfig    `toml:"log"`
}

// GameConfig maps game-related settings. Durations use Go syntax ("500ms").
type GameConfig struct {
	InitialDelay   *string `toml:"initial-delay"`
	DelayStep      *string `toml:"delay-step"`
	FPS            *int    `toml:"fps"`
	SampleInterval *string `toml:"sample-interval"`
	LiveWindow     *int    `toml:"live-window"`
	Corpus         *string `toml:"corpus"`
}

// PlayerConfig maps player settings.
type PlayerConfig struct {
	User *string `toml:"user"`
}

// ThemeConfig maps colors; any lipgloss color string is accepted.
type ThemeConfig struct {
	Pending *string `toml:"pending"`
	Cursor  *string `toml:"cursor"`
	Score   *string `toml:"score"`
	Faster  *string `toml:"faster"`
	Slower  *string `toml:"slower"`
	Line    *string `toml:"line"`
	Error   *string `toml:"error"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level  *string `toml:"level"`
	Format *string `toml:"format"`
	Path   *string `toml:"path"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

// Template is written by EnsureConfigFile for a fresh install.
const Template = `# storytype configuration

[game]
# initial-delay = "500ms"
# delay-step = "2ms"
# fps = 60
# sample-interval = "1s"
# live-window = 10
# corpus = ""

[player]
# user = ""

[theme]
# pending = "#8C8C8C"
# cursor = "#C89A3A"
# score = "#F0F0F0"
# faster = "#52C41A"
# slower = "#FF4D4F"
# line = "#40A9FF"
# error = "#FF4D4F"

[log]
# level = "info"
# format = "json"
# path = ""
`

// EnsureConfigFile writes Template to path unless a file already exists.
func EnsureConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(Template), 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

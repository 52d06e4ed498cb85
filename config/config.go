package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// InputSource selects where key presses come from
type InputSource string

const (
	InputEvdev InputSource = "evdev"
	InputMIDI  InputSource = "midi"
)

// InputConfig configures the key source
type InputConfig struct {
	Source   InputSource `json:"source"`
	Device   string      `json:"device,omitempty"`   // evdev device, detected when empty
	MIDIPort string      `json:"midiPort,omitempty"` // substring of the MIDI input name, empty = any
	QuitKey  string      `json:"quitKey,omitempty"`
}

// UIConfig stores UI preferences
type UIConfig struct {
	FPS     int    `json:"fps,omitempty"`
	Palette string `json:"palette,omitempty"` // GPL file, embedded default when empty
}

// Config is the main configuration structure
type Config struct {
	Input InputConfig `json:"input"`
	UI    UIConfig    `json:"ui,omitempty"`
	Debug bool        `json:"debug,omitempty"`
}

const (
	DefaultFPS     = 60
	DefaultQuitKey = "q"
	maxFPS         = 240
)

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Input: InputConfig{
			Source:  InputEvdev,
			QuitKey: DefaultQuitKey,
		},
		UI: UIConfig{
			FPS: DefaultFPS,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "keysurface"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found.
// Missing fields take their defaults.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// Validate fills zero values with defaults and rejects the rest
func (c *Config) Validate() error {
	switch c.Input.Source {
	case "":
		c.Input.Source = InputEvdev
	case InputEvdev, InputMIDI:
	default:
		return fmt.Errorf("unknown input source %q (want %q or %q)", c.Input.Source, InputEvdev, InputMIDI)
	}
	if c.Input.QuitKey == "" {
		c.Input.QuitKey = DefaultQuitKey
	}
	if c.UI.FPS == 0 {
		c.UI.FPS = DefaultFPS
	}
	if c.UI.FPS < 1 || c.UI.FPS > maxFPS {
		return fmt.Errorf("fps %d out of range 1-%d", c.UI.FPS, maxFPS)
	}
	return nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Package config persists engine and pattern state to
// ~/.config/go-sequence-arp/config.json as indented JSON.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"go-sequence-arp/engine"
)

// OutputConfig names the MIDI output port to send note-on/off to.
type OutputConfig struct {
	PortName    string `json:"portName,omitempty"`
	AutoConnect bool   `json:"autoConnect"`
}

// InputConfig names the MIDI input port the chord should be read from.
type InputConfig struct {
	PortName    string `json:"portName,omitempty"`
	AutoConnect bool   `json:"autoConnect"`
}

// UIConfig stores the handful of UI preferences worth remembering across
// runs.
type UIConfig struct {
	LastFocusedPattern int `json:"lastFocusedPattern,omitempty"`
}

// Config is the full persisted state: global engine settings, the four
// patterns, I/O port selection, and UI preferences.
type Config struct {
	Engine   engine.EngineConfig      `json:"engine"`
	Patterns [engine.PatternCount]engine.PatternConfig `json:"patterns"`
	Input    InputConfig              `json:"input,omitempty"`
	Output   OutputConfig             `json:"output,omitempty"`
	UI       UIConfig                 `json:"ui,omitempty"`
}

// DefaultConfig returns a Config seeded with the engine's own defaults.
func DefaultConfig() *Config {
	cfg := &Config{
		Engine: engine.DefaultEngineConfig(),
		Output: OutputConfig{AutoConnect: true},
		Input:  InputConfig{AutoConnect: true},
	}
	for i := range cfg.Patterns {
		cfg.Patterns[i] = *engine.NewPatternConfig()
	}
	return cfg
}

// ConfigDir returns the config directory path, ~/.config/go-sequence-arp.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-sequence-arp"), nil
}

// ConfigPath returns the full path to config.json.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns DefaultConfig if no file
// exists yet.
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
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to disk, creating the config directory if needed.
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
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

// ApplyTo pushes the loaded config into a running engine: global settings
// first, then each pattern's configuration.
func (c *Config) ApplyTo(e *engine.PatternEngine) {
	e.SetEngineConfig(c.Engine)
	for i := 0; i < engine.PatternCount; i++ {
		if p := e.Pattern(i); p != nil {
			*p = c.Patterns[i]
		}
	}
}

// CaptureFrom snapshots a running engine's settings back into c, ready for
// Save.
func (c *Config) CaptureFrom(e *engine.PatternEngine) {
	c.Engine = e.EngineConfig()
	for i := 0; i < engine.PatternCount; i++ {
		if p := e.Pattern(i); p != nil {
			c.Patterns[i] = *p
		}
	}
}

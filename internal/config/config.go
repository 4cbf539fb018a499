// Package config is the YAML configuration surface of the termdeck daemon.
//
// The config file is the primary configuration source; flags exist for small
// overrides and environments where a file is awkward. Defaults and
// validation live here so the rest of the code can assume a well-formed
// config.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"termdeck/internal/status"
)

// Config is the top-level YAML configuration.
type Config struct {
	// Device holds hardware link settings.
	Device DeviceConfig `yaml:"device"`

	// Session configures how the supervised terminal session is driven.
	Session SessionConfig `yaml:"session"`

	// Models lists the names cycled by the model encoder. The first entry
	// is selected at startup.
	Models []string `yaml:"models"`

	// Status configures the ingestion sources.
	Status StatusConfig `yaml:"status"`

	// Profiles points at the button layout store.
	Profiles ProfilesConfig `yaml:"profiles"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

type DeviceConfig struct {
	// Brightness is the panel backlight level (0-100).
	Brightness int `yaml:"brightness"`
	// Intro plays the startup animation on connect.
	Intro bool `yaml:"intro"`
}

type SessionConfig struct {
	// TerminalApp is the terminal application new sessions open in.
	TerminalApp string `yaml:"terminal_app"`
	// LaunchCommand is typed into a freshly opened session.
	LaunchCommand string `yaml:"launch_command"`
}

type StatusConfig struct {
	// FilePath is the hook-written status file.
	FilePath string `yaml:"file_path"`
	// SocketPath is the unix socket the IPC server binds.
	SocketPath string `yaml:"socket_path"`
	// WsURL, when set, subscribes to a websocket status feed.
	WsURL string `yaml:"ws_url,omitempty"`
}

type ProfilesConfig struct {
	Path string `yaml:"path"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns a fully-populated Config with defaults.
func DefaultConfig() Config {
	return Config{
		Device: DeviceConfig{
			Brightness: 80,
			Intro:      true,
		},
		Session: SessionConfig{
			TerminalApp:   "iTerm",
			LaunchCommand: "",
		},
		Models: []string{"opus", "sonnet", "haiku"},
		Status: StatusConfig{
			FilePath:   status.DefaultPath(),
			SocketPath: "/tmp/termdeck.sock",
		},
		Profiles: ProfilesConfig{
			Path: "~/.config/termdeck/profiles.yaml",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfigFile reads and parses a YAML config file on top of the defaults.
// Unknown fields are rejected (helps catch typos) via KnownFields(true).
func LoadConfigFile(path string) (Config, error) {
	if path == "" {
		return Config{}, errors.New("config path is empty")
	}
	b, err := os.ReadFile(ExpandPath(path))
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	cfg := DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config yaml: %w", err)
	}
	// Only whitespace/comments are allowed after the document.
	if err := dec.Decode(&struct{}{}); err == nil {
		return Config{}, fmt.Errorf("decode config yaml: unexpected trailing document")
	}

	return cfg, nil
}

// FlagOverrides are applied on top of a loaded config. Each override is only
// applied when its pointer is non-nil, even if the value is a zero value.
type FlagOverrides struct {
	Brightness *int
	StatusFile *string
	SocketPath *string
	WsURL      *string
	LogLevel   *string
}

// Apply merges the overrides into cfg.
func (o FlagOverrides) Apply(cfg *Config) {
	if cfg == nil {
		return
	}
	if o.Brightness != nil {
		cfg.Device.Brightness = *o.Brightness
	}
	if o.StatusFile != nil {
		cfg.Status.FilePath = *o.StatusFile
	}
	if o.SocketPath != nil {
		cfg.Status.SocketPath = *o.SocketPath
	}
	if o.WsURL != nil {
		cfg.Status.WsURL = *o.WsURL
	}
	if o.LogLevel != nil {
		cfg.Logging.Level = *o.LogLevel
	}
}

// Validate checks config invariants after defaults + file + overrides.
func (c *Config) Validate() error {
	if c.Device.Brightness < 0 || c.Device.Brightness > 100 {
		return errors.New("device.brightness must be between 0 and 100")
	}
	if len(c.Models) == 0 {
		return errors.New("models must not be empty")
	}
	for i, m := range c.Models {
		if m == "" {
			return fmt.Errorf("models[%d] is empty", i)
		}
	}
	if c.Session.TerminalApp == "" {
		return errors.New("session.terminal_app must not be empty")
	}
	if c.Status.FilePath == "" {
		return errors.New("status.file_path must not be empty")
	}
	if c.Status.SocketPath == "" {
		return errors.New("status.socket_path must not be empty")
	}
	if c.Profiles.Path == "" {
		return errors.New("profiles.path must not be empty")
	}
	if c.Logging.Level == "" {
		return errors.New("logging.level must not be empty")
	}
	return nil
}

// ExpandPath expands a leading "~" in a path using the home directory.
func ExpandPath(p string) string {
	if p == "" {
		return p
	}
	if p[0] != '~' {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	if p == "~" {
		return home
	}
	if len(p) >= 2 && (p[1] == '/' || p[1] == '\\') {
		return filepath.Join(home, p[2:])
	}
	return p
}

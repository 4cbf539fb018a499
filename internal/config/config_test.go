package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadConfigFile_OverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
device:
  brightness: 40
models: [opus, sonnet]
logging:
  level: debug
`)

	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Device.Brightness != 40 {
		t.Fatalf("brightness = %d", cfg.Device.Brightness)
	}
	if len(cfg.Models) != 2 || cfg.Models[0] != "opus" {
		t.Fatalf("models = %v", cfg.Models)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("level = %q", cfg.Logging.Level)
	}
	// Untouched sections keep their defaults.
	if cfg.Status.SocketPath != "/tmp/termdeck.sock" {
		t.Fatalf("socket = %q", cfg.Status.SocketPath)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestLoadConfigFile_RejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, "device:\n  brightnes: 40\n")
	if _, err := LoadConfigFile(path); err == nil {
		t.Fatal("typo accepted")
	}
}

func TestLoadConfigFile_RejectsTrailingDocument(t *testing.T) {
	path := writeConfig(t, "models: [opus]\n---\nmodels: [sonnet]\n")
	if _, err := LoadConfigFile(path); err == nil {
		t.Fatal("trailing document accepted")
	}
}

func TestFlagOverrides(t *testing.T) {
	cfg := DefaultConfig()
	brightness := 10
	level := "debug"
	ws := "ws://127.0.0.1:9000/status"

	FlagOverrides{
		Brightness: &brightness,
		LogLevel:   &level,
		WsURL:      &ws,
	}.Apply(&cfg)

	if cfg.Device.Brightness != 10 || cfg.Logging.Level != "debug" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.Status.WsURL != ws {
		t.Fatalf("ws url = %q", cfg.Status.WsURL)
	}
	// Nil pointers leave values untouched.
	if cfg.Status.SocketPath != "/tmp/termdeck.sock" {
		t.Fatalf("socket = %q", cfg.Status.SocketPath)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"brightness range", func(c *Config) { c.Device.Brightness = 150 }},
		{"no models", func(c *Config) { c.Models = nil }},
		{"empty model", func(c *Config) { c.Models = []string{"opus", ""} }},
		{"no terminal app", func(c *Config) { c.Session.TerminalApp = "" }},
		{"no socket", func(c *Config) { c.Status.SocketPath = "" }},
		{"no profiles path", func(c *Config) { c.Profiles.Path = "" }},
		{"no log level", func(c *Config) { c.Logging.Level = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("invalid config accepted")
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}
	if got := ExpandPath("~/x.yaml"); got != filepath.Join(home, "x.yaml") {
		t.Fatalf("got %q", got)
	}
	if got := ExpandPath("/abs/x.yaml"); got != "/abs/x.yaml" {
		t.Fatalf("got %q", got)
	}
	if got := ExpandPath(""); got != "" {
		t.Fatalf("got %q", got)
	}
}

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_AppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
detection:
  language: ja
  gap_threshold: 120
storage:
  type: postgres
  host: db
trainers:
  satoshi:
    id: 1
    name: Satoshi
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Detection.GapThreshold != 120 {
		t.Errorf("GapThreshold = %d, want explicit 120", cfg.Detection.GapThreshold)
	}
	if cfg.Detection.MessageGapThreshold != DefaultMessageGapThreshold {
		t.Errorf("MessageGapThreshold = %d, want %d", cfg.Detection.MessageGapThreshold, DefaultMessageGapThreshold)
	}
	if cfg.Detection.Threshold != 0.6 || cfg.Detection.StrictThreshold != 0.8 {
		t.Errorf("thresholds = %v/%v", cfg.Detection.Threshold, cfg.Detection.StrictThreshold)
	}
	if cfg.Assets.NameColumn != "ja" {
		t.Errorf("NameColumn = %q, want the detection language", cfg.Assets.NameColumn)
	}
	if cfg.Storage.Port != 5432 || cfg.Storage.SQLitePath != "" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if cfg.Timezone != "Asia/Tokyo" {
		t.Errorf("Timezone = %q", cfg.Timezone)
	}
	if cfg.Trainers["satoshi"].ID != 1 {
		t.Errorf("Trainers = %+v", cfg.Trainers)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Load() of missing file expected error")
	}

	bad := filepath.Join(dir, "bad.yaml")
	os.WriteFile(bad, []byte("detection: [oops"), 0644)
	if _, err := Load(bad); err == nil {
		t.Error("Load() of malformed file expected error")
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := &Config{}
	cfg.ApplyDefaults()
	cfg.Google.UnknownFolderID = "folder"

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Google.UnknownFolderID != "folder" || loaded.Detection.Profile != "720p" {
		t.Errorf("round trip lost values: %+v", loaded)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"language", func(c *Config) { c.Detection.Language = "fr" }},
		{"profile", func(c *Config) { c.Detection.Profile = "720p" }},
		{"storage", func(c *Config) { c.Storage.Type = "mysql" }},
		{"timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.ApplyDefaults()
			tt.modify(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() expected error")
			}
		})
	}
}

func TestConfig_LogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for level, want := range tests {
		cfg := &Config{Log: LogConfig{Level: level}}
		if got := cfg.LogLevel(); got != want {
			t.Errorf("LogLevel(%q) = %v, want %v", level, got, want)
		}
	}
}

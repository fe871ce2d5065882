package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
	_ "time/tzdata"
)

// Default values filled in by ApplyDefaults
const (
	DefaultLanguage            = "en"
	DefaultProfile             = "720p"
	DefaultThreshold           = 0.6
	DefaultStrictThreshold     = 0.8
	DefaultGapThreshold        = 100
	DefaultMessageGapThreshold = 3
	DefaultRepresentativeDepth = 5
	DefaultOutcomeSamples      = 10
	DefaultClassifierConf      = 0.2
	DefaultEmbeddingDistance   = 50
	DefaultEmbeddingDim        = 512
	DefaultTimezone            = "Asia/Tokyo"
	DefaultServerAddr          = ":8080"
)

// ApplyDefaults fills every unset field with its default
func (c *Config) ApplyDefaults() {
	d := &c.Detection
	if d.Language == "" {
		d.Language = DefaultLanguage
	}
	if d.Profile == "" {
		d.Profile = DefaultProfile
	}
	if d.Threshold == 0 {
		d.Threshold = DefaultThreshold
	}
	if d.StrictThreshold == 0 {
		d.StrictThreshold = DefaultStrictThreshold
	}
	if d.GapThreshold == 0 {
		d.GapThreshold = DefaultGapThreshold
	}
	if d.MessageGapThreshold == 0 {
		d.MessageGapThreshold = DefaultMessageGapThreshold
	}
	if d.RepresentativeDepth == 0 {
		d.RepresentativeDepth = DefaultRepresentativeDepth
	}
	if d.OutcomeSamples == 0 {
		d.OutcomeSamples = DefaultOutcomeSamples
	}
	if len(d.NameLanguages) == 0 {
		d.NameLanguages = []string{"chi_sim", "chi_tra", "eng", "fra", "ita", "jpn", "kor", "spa", "deu_frak"}
	}
	if len(d.MessageLanguages) == 0 {
		d.MessageLanguages = []string{"eng", "jpn"}
	}

	if c.Assets.TemplateDirectory == "" {
		c.Assets.TemplateDirectory = "assets/templates"
	}
	if c.Assets.NameTable == "" {
		c.Assets.NameTable = "assets/pokemon_names.csv"
	}
	if c.Assets.NameColumn == "" {
		c.Assets.NameColumn = d.Language
	}

	if c.Models.ClassifierConfidence == 0 {
		c.Models.ClassifierConfidence = DefaultClassifierConf
	}
	if c.Models.EmbeddingDim == 0 {
		c.Models.EmbeddingDim = DefaultEmbeddingDim
	}
	if c.Models.EmbeddingMaxDistance == 0 {
		c.Models.EmbeddingMaxDistance = DefaultEmbeddingDistance
	}

	if c.Storage.Type == "" {
		c.Storage.Type = "sqlite"
	}
	if c.Storage.Type == "sqlite" && c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = "data/battles.db"
	}
	if c.Storage.Type == "postgres" && c.Storage.Port == 0 {
		c.Storage.Port = 5432
	}

	if c.Paths.DownloadDirectory == "" {
		c.Paths.DownloadDirectory = "data/videos"
	}
	if c.Paths.UnknownDirectory == "" {
		c.Paths.UnknownDirectory = "data/unknown"
	}
	if c.Paths.FramesDirectory == "" {
		c.Paths.FramesDirectory = "data/frames"
	}

	if c.Google.TokenFile == "" {
		c.Google.TokenFile = "token.json"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultServerAddr
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Tools.FFmpeg == "" {
		c.Tools.FFmpeg = "ffmpeg"
	}
	if c.Tools.YtDlp == "" {
		c.Tools.YtDlp = "yt-dlp"
	}
	if c.Timezone == "" {
		c.Timezone = DefaultTimezone
	}
}

// Location resolves the configured time zone
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// LogLevel maps the configured level name onto slog
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate reports settings no default can fix
func (c *Config) Validate() error {
	switch c.Detection.Language {
	case "en", "ja":
	default:
		return fmt.Errorf("unsupported detection language %q (want en or ja)", c.Detection.Language)
	}
	switch c.Detection.Profile {
	case "720p", "1080p", "2160p":
	default:
		return fmt.Errorf("unsupported profile %q (want 720p, 1080p or 2160p)", c.Detection.Profile)
	}
	switch c.Storage.Type {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported storage type %q (want sqlite or postgres)", c.Storage.Type)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

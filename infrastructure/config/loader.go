package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration
type Config struct {
	Paths             PathsConfig              `yaml:"paths"`
	Detection         DetectionConfig          `yaml:"detection"`
	Assets            AssetsConfig             `yaml:"assets"`
	Models            ModelsConfig             `yaml:"models"`
	Storage           StorageConfig            `yaml:"storage"`
	Google            GoogleConfig             `yaml:"google"`
	Email             EmailConfig              `yaml:"email"`
	Trainers          map[string]TrainerConfig `yaml:"trainers"`
	Server            ServerConfig             `yaml:"server"`
	Log               LogConfig                `yaml:"log"`
	Tools             ToolsConfig              `yaml:"tools"`
	Timezone          string                   `yaml:"timezone"`
	FormChangeSpecies []string                 `yaml:"form_change_species,omitempty"`
}

// PathsConfig contains directory paths used by a run
type PathsConfig struct {
	DownloadDirectory string `yaml:"download_directory"`
	UnknownDirectory  string `yaml:"unknown_directory"`
	ClipsDirectory    string `yaml:"clips_directory,omitempty"`
	FramesDirectory   string `yaml:"frames_directory"`
}

// DetectionConfig contains frame classification settings
type DetectionConfig struct {
	Language            string   `yaml:"language"` // "en" or "ja"
	Profile             string   `yaml:"profile"`  // "720p", "1080p" or "2160p"
	Threshold           float64  `yaml:"threshold"`
	StrictThreshold     float64  `yaml:"strict_threshold"` // win/lose and message templates
	GapThreshold        int      `yaml:"gap_threshold"`
	MessageGapThreshold int      `yaml:"message_gap_threshold"`
	RepresentativeDepth int      `yaml:"representative_depth"` // n of NthFromLast
	OutcomeSamples      int      `yaml:"outcome_samples"`
	NameLanguages       []string `yaml:"name_languages"`
	MessageLanguages    []string `yaml:"message_languages"`
}

// AssetsConfig points at the reference data shipped next to the binary
type AssetsConfig struct {
	TemplateDirectory string `yaml:"template_directory"`
	NameTable         string `yaml:"name_table"`
	NameColumn        string `yaml:"name_column"`
}

// ModelsConfig contains the neural network resolvers
type ModelsConfig struct {
	Classifier           string  `yaml:"classifier,omitempty"` // ONNX model
	ClassifierLabels     string  `yaml:"classifier_labels,omitempty"`
	ClassifierConfidence float64 `yaml:"classifier_confidence"`
	Embedding            string  `yaml:"embedding,omitempty"` // ONNX model
	EmbeddingDim         int     `yaml:"embedding_dim"`
	EmbeddingMaxDistance float64 `yaml:"embedding_max_distance"`
}

// StorageConfig selects the battle database
type StorageConfig struct {
	Type       string `yaml:"type"` // "sqlite" or "postgres"
	SQLitePath string `yaml:"sqlite_path,omitempty"`
	Host       string `yaml:"host,omitempty"`
	Port       int    `yaml:"port,omitempty"`
	User       string `yaml:"user,omitempty"`
	Password   string `yaml:"password,omitempty"`
	Name       string `yaml:"name,omitempty"`
}

// GoogleConfig contains Google API settings
type GoogleConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	TokenFile       string `yaml:"token_file"`
	UnknownFolderID string `yaml:"unknown_folder_id"`
}

// EmailConfig contains email notification settings
type EmailConfig struct {
	Enabled     bool              `yaml:"enabled"`
	FromName    string            `yaml:"from_name"`
	FromAddress string            `yaml:"from_address"`
	SenderName  string            `yaml:"sender_name"`
	DefaultCC   []RecipientConfig `yaml:"default_cc,omitempty"`
}

// RecipientConfig represents an email recipient
type RecipientConfig struct {
	Name    string `yaml:"name"`
	Address string `yaml:"address"`
}

// TrainerConfig identifies whose videos are processed
type TrainerConfig struct {
	ID    int64  `yaml:"id"`
	Name  string `yaml:"name"` // in-game name
	Email string `yaml:"email"`
}

// ServerConfig contains the status server settings
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig contains diagnostic logging settings
type LogConfig struct {
	Level string `yaml:"level"`
}

// ToolsConfig names external executables
type ToolsConfig struct {
	FFmpeg string `yaml:"ffmpeg"`
	YtDlp  string `yaml:"yt_dlp"`
}

// Load reads and parses the configuration from the specified YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// Save writes the configuration to the specified YAML file
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

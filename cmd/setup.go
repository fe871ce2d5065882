package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"poke-battle-logger/infrastructure/config"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
)

// Prompter interface for interactive prompts (allows mocking in tests)
type Prompter interface {
	Input(message string, defaultValue string) (string, error)
	Confirm(message string, defaultValue bool) (bool, error)
	Select(message string, options []string, defaultValue string) (string, error)
}

// SurveyPrompter implements Prompter using the survey library
type SurveyPrompter struct{}

func (p *SurveyPrompter) Input(message string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

func (p *SurveyPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	result := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}
	return result, nil
}

func (p *SurveyPrompter) Select(message string, options []string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Select{
		Message: message,
		Options: options,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

// DefaultPrompter is the prompter used in production
var DefaultPrompter Prompter = &SurveyPrompter{}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create configuration file interactively",
	Long: `Prompts for configuration values and creates config.yaml.

This command guides you through setting up your configuration file with the
data directories, detection language and resolution, battle database, Google
credentials, email settings and your first trainer.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	path := cfgFile
	if path == "" {
		path = "config/config.yaml"
	}
	return RunSetupWithPrompter(DefaultPrompter, path)
}

// RunSetupWithPrompter runs the setup with a given prompter (for testing)
func RunSetupWithPrompter(prompter Prompter, configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		overwrite, err := prompter.Confirm("config.yaml already exists. Overwrite?", false)
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if !overwrite {
			fmt.Println("Setup cancelled.")
			return nil
		}
	}

	fmt.Println("Welcome to poke-battle-logger setup!")
	fmt.Println()

	cfg := &config.Config{}

	if err := promptPaths(prompter, cfg); err != nil {
		return err
	}
	if err := promptDetection(prompter, cfg); err != nil {
		return err
	}
	if err := promptStorage(prompter, cfg); err != nil {
		return err
	}
	if err := promptGoogle(prompter, cfg); err != nil {
		return err
	}
	if err := promptEmail(prompter, cfg); err != nil {
		return err
	}
	if err := promptTrainer(prompter, cfg); err != nil {
		return err
	}

	cfg.ApplyDefaults()

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := config.Save(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Println()
	fmt.Printf("Configuration saved to %s\n", configPath)
	return nil
}

func promptPaths(prompter Prompter, cfg *config.Config) error {
	download, err := prompter.Input("Where should downloaded videos go?", "data/videos")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Paths.DownloadDirectory = download

	unknown, err := prompter.Input("Where should unrecognized pokemon crops go?", "data/unknown")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Paths.UnknownDirectory = unknown

	clips, err := prompter.Input("Where should per-battle clips go? (empty disables clips)", "")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Paths.ClipsDirectory = clips

	return nil
}

func promptDetection(prompter Prompter, cfg *config.Config) error {
	language, err := prompter.Select("Game language of the recordings?", []string{"en", "ja"}, config.DefaultLanguage)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Detection.Language = language

	profile, err := prompter.Select("Recording resolution?", []string{"720p", "1080p", "2160p"}, config.DefaultProfile)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Detection.Profile = profile

	timezone, err := prompter.Input("Time zone for battle timestamps?", config.DefaultTimezone)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Timezone = timezone
	if _, err := cfg.Location(); err != nil {
		return err
	}

	return nil
}

func promptStorage(prompter Prompter, cfg *config.Config) error {
	kind, err := prompter.Select("Battle database?", []string{"sqlite", "postgres"}, "sqlite")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Storage.Type = kind

	if kind == "sqlite" {
		path, err := prompter.Input("SQLite database file?", "data/battles.db")
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		cfg.Storage.SQLitePath = path
		return nil
	}

	host, err := prompter.Input("Postgres host?", "localhost")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Storage.Host = host

	port, err := prompter.Input("Postgres port?", "5432")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	n, err := strconv.Atoi(port)
	if err != nil || n <= 0 {
		return fmt.Errorf("invalid port %q", port)
	}
	cfg.Storage.Port = n

	user, err := prompter.Input("Postgres user?", "postgres")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Storage.User = user

	password, err := prompter.Input("Postgres password?", "")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Storage.Password = password

	name, err := prompter.Input("Postgres database name?", "battles")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if name == "" {
		return fmt.Errorf("database name is required")
	}
	cfg.Storage.Name = name

	return nil
}

func promptGoogle(prompter Prompter, cfg *config.Config) error {
	credentials, err := prompter.Input("Path to Google credentials file?", "credentials.json")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if credentials == "" {
		credentials = "credentials.json"
	}
	cfg.Google.CredentialsFile = credentials

	folder, err := prompter.Input("Google Drive folder ID for unknown pokemon crops? (empty disables sync)", "")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Google.UnknownFolderID = folder

	return nil
}

func promptEmail(prompter Prompter, cfg *config.Config) error {
	enabled, err := prompter.Confirm("Mail trainers when a video is processed?", true)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Email.Enabled = enabled
	if !enabled {
		return nil
	}

	fromName, err := prompter.Input("Display name for outgoing emails?", "")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if fromName == "" {
		return fmt.Errorf("from name is required")
	}
	cfg.Email.FromName = fromName
	cfg.Email.SenderName = fromName

	fromAddress, err := prompter.Input("Gmail address to send from?", "")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if fromAddress == "" {
		return fmt.Errorf("from address is required")
	}
	cfg.Email.FromAddress = fromAddress

	cfg.Email.DefaultCC = []config.RecipientConfig{}
	for {
		addCC, err := prompter.Confirm("Add a CC recipient?", false)
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if !addCC {
			break
		}

		recipient, err := promptRecipientWithPrompter(prompter)
		if err != nil {
			return err
		}
		cfg.Email.DefaultCC = append(cfg.Email.DefaultCC, recipient)
	}

	return nil
}

func promptTrainer(prompter Prompter, cfg *config.Config) error {
	add, err := prompter.Confirm("Add a trainer now?", true)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if !add {
		return nil
	}

	key, err := prompter.Input("  Trainer key:", "")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	idText, err := prompter.Input("  Trainer ID:", "1")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	id, err := strconv.ParseInt(idText, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid trainer id %q", idText)
	}
	name, err := prompter.Input("  In-game name:", "")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	email, err := prompter.Input("  Email:", "")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}

	if key == "" || name == "" || id <= 0 {
		return fmt.Errorf("trainer key, positive id and name are required")
	}
	cfg.Trainers = map[string]config.TrainerConfig{
		strings.ToLower(key): {ID: id, Name: name, Email: email},
	}
	return nil
}

func promptRecipientWithPrompter(prompter Prompter) (config.RecipientConfig, error) {
	name, err := prompter.Input("  Full name:", "")
	if err != nil {
		return config.RecipientConfig{}, fmt.Errorf("prompt cancelled")
	}
	if name == "" {
		return config.RecipientConfig{}, fmt.Errorf("name is required")
	}

	address, err := prompter.Input("  Email:", "")
	if err != nil {
		return config.RecipientConfig{}, fmt.Errorf("prompt cancelled")
	}
	if address == "" {
		return config.RecipientConfig{}, fmt.Errorf("email is required")
	}

	return config.RecipientConfig{
		Name:    name,
		Address: address,
	}, nil
}

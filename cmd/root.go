package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"poke-battle-logger/infrastructure/config"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "poke-battle-logger",
	Short: "Reconstruct ranked Pokemon battle logs from gameplay videos",
	Long: `poke-battle-logger turns a recorded ranked-battle session into a structured
battle log:

  - Classify every frame into UI states by template matching
  - Read ranks, lineups, selections, active pokemon and messages
  - Segment the session into battles and reconcile their outcomes
  - Store battles, turns, messages and fainted events in SQLite or Postgres

Example:
  poke-battle-logger process --video dQw4w9WgXcQ --trainer ash`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml)")
}

func initConfig() {
	if cfgFile == "" {
		cfgFile = "config/config.yaml"
	}

	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		// Config file is optional for some commands (like help)
		// Commands that need config will check and error appropriately
		cfg = nil
		return
	}

	slog.SetDefault(newLogger(cfg))
}

// GetConfig returns the loaded configuration
func GetConfig() *config.Config {
	return cfg
}

func requireConfig() (*config.Config, error) {
	c := GetConfig()
	if c == nil {
		return nil, fmt.Errorf("configuration not loaded; run 'poke-battle-logger setup' or pass --config")
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return c, nil
}

func newLogger(c *config.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: c.LogLevel()}))
}

package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"poke-battle-logger/infrastructure/config"

	"github.com/spf13/cobra"
)

// OutputWriter is where command output goes
type OutputWriter = io.Writer

// DefaultOutput is the default output writer for config commands
var DefaultOutput OutputWriter = os.Stdout

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration entries",
	Long: `Manage trainers and default CC recipients in the configuration file.

Examples:
  poke-battle-logger config list trainers
  poke-battle-logger config add trainer --key ash --id 1 --name "Ash" --email "ash@example.com"
  poke-battle-logger config add cc --name "Misty Waterflower" --email "misty@example.com"
  poke-battle-logger config remove cc misty`,
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.AddCommand(configAddCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configRemoveCmd)
	configCmd.AddCommand(configUpdateCmd)
}

// --- ADD command ---

var (
	addKey   string
	addID    int64
	addName  string
	addEmail string
)

var configAddCmd = &cobra.Command{
	Use:   "add [trainer|cc]",
	Short: "Add a new config entry",
	Long: `Add a new trainer or default CC recipient to the configuration.

Examples:
  poke-battle-logger config add trainer --key ash --id 1 --name "Ash" --email "ash@example.com"
  poke-battle-logger config add cc --name "Misty Waterflower" --email "misty@example.com"`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigAdd,
}

func init() {
	configAddCmd.Flags().StringVar(&addKey, "key", "", "Unique trainer key (required for trainer)")
	configAddCmd.Flags().Int64Var(&addID, "id", 0, "Trainer ID stored with each battle (required for trainer)")
	configAddCmd.Flags().StringVar(&addName, "name", "", "In-game or display name (required)")
	configAddCmd.Flags().StringVar(&addEmail, "email", "", "Email address (required for cc)")
	configAddCmd.MarkFlagRequired("name")
}

func runConfigAdd(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if cfg == nil {
		return fmt.Errorf("config file not found. Run 'poke-battle-logger setup' first")
	}

	return RunConfigAddWithDependencies(cfg, cfgFile, args[0], ConfigEntry{
		Key:   addKey,
		ID:    addID,
		Name:  addName,
		Email: addEmail,
	}, DefaultOutput)
}

// ConfigEntry carries the flag values of add and update
type ConfigEntry struct {
	Key   string
	ID    int64
	Name  string
	Email string
}

// RunConfigAddWithDependencies runs the add command with injected dependencies
func RunConfigAddWithDependencies(cfg *config.Config, configPath, entityType string, entry ConfigEntry, out OutputWriter) error {
	mgr := config.NewConfigManager(cfg, configPath)

	switch entityType {
	case "trainer":
		if entry.Key == "" {
			return fmt.Errorf("--key is required for trainers")
		}
		if err := mgr.AddTrainer(entry.Key, entry.ID, entry.Name, entry.Email); err != nil {
			return err
		}
		fmt.Fprintf(out, "Added trainer %q: %s (id %d)\n", entry.Key, entry.Name, entry.ID)

	case "cc":
		if entry.Email == "" {
			return fmt.Errorf("--email is required for cc")
		}
		if err := mgr.AddCC(entry.Name, entry.Email); err != nil {
			return err
		}
		fmt.Fprintf(out, "Added CC %s <%s>\n", entry.Name, entry.Email)

	default:
		return fmt.Errorf("unknown entity type %q. Use trainer or cc", entityType)
	}

	return nil
}

// --- LIST command ---

var configListCmd = &cobra.Command{
	Use:   "list [trainers|ccs]",
	Short: "List config entries",
	Long: `List all trainers or default CC recipients.

Examples:
  poke-battle-logger config list trainers
  poke-battle-logger config list ccs`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigList,
}

func runConfigList(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if cfg == nil {
		return fmt.Errorf("config file not found. Run 'poke-battle-logger setup' first")
	}

	return RunConfigListWithDependencies(cfg, cfgFile, args[0], DefaultOutput)
}

// RunConfigListWithDependencies runs the list command with injected dependencies
func RunConfigListWithDependencies(cfg *config.Config, configPath, entityType string, out OutputWriter) error {
	mgr := config.NewConfigManager(cfg, configPath)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	switch entityType {
	case "trainers":
		trainers := mgr.ListTrainers()
		if len(trainers) == 0 {
			fmt.Fprintln(out, "No trainers configured.")
			return nil
		}
		fmt.Fprintln(w, "KEY\tID\tNAME\tEMAIL")
		for _, t := range trainers {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.Key, strconv.FormatInt(t.ID, 10), t.Name, t.Email)
		}

	case "ccs":
		ccs := mgr.ListCCs()
		if len(ccs) == 0 {
			fmt.Fprintln(out, "No CCs configured.")
			return nil
		}
		fmt.Fprintln(w, "KEY\tNAME\tEMAIL")
		for _, c := range ccs {
			fmt.Fprintf(w, "%s\t%s\t%s\n", c.Key, c.Name, c.Address)
		}

	default:
		return fmt.Errorf("unknown entity type %q. Use trainers or ccs", entityType)
	}

	return w.Flush()
}

// --- REMOVE command ---

var configRemoveCmd = &cobra.Command{
	Use:   "remove [trainer|cc] <key>",
	Short: "Remove a config entry",
	Long: `Remove a trainer or default CC recipient from the configuration.
Battles already stored for a removed trainer are kept.

Examples:
  poke-battle-logger config remove trainer ash
  poke-battle-logger config remove cc misty`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigRemove,
}

func runConfigRemove(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if cfg == nil {
		return fmt.Errorf("config file not found. Run 'poke-battle-logger setup' first")
	}

	return RunConfigRemoveWithDependencies(cfg, cfgFile, args[0], args[1], DefaultOutput)
}

// RunConfigRemoveWithDependencies runs the remove command with injected dependencies
func RunConfigRemoveWithDependencies(cfg *config.Config, configPath, entityType, key string, out OutputWriter) error {
	mgr := config.NewConfigManager(cfg, configPath)

	switch entityType {
	case "trainer":
		if err := mgr.RemoveTrainer(key); err != nil {
			return err
		}
		fmt.Fprintf(out, "Removed trainer %q\n", key)

	case "cc":
		if err := mgr.RemoveCC(key); err != nil {
			return err
		}
		fmt.Fprintf(out, "Removed CC %q\n", key)

	default:
		return fmt.Errorf("unknown entity type %q. Use trainer or cc", entityType)
	}

	return nil
}

// --- UPDATE command ---

var (
	updateName  string
	updateEmail string
)

var configUpdateCmd = &cobra.Command{
	Use:   "update trainer <key>",
	Short: "Update a trainer",
	Long: `Update the name or email of an existing trainer. The trainer ID cannot
change because stored battles reference it.

Examples:
  poke-battle-logger config update trainer ash --name "Ash K."
  poke-battle-logger config update trainer ash --email "ash.new@example.com"`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigUpdate,
}

func init() {
	configUpdateCmd.Flags().StringVar(&updateName, "name", "", "New in-game name")
	configUpdateCmd.Flags().StringVar(&updateEmail, "email", "", "New email address")
}

func runConfigUpdate(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if cfg == nil {
		return fmt.Errorf("config file not found. Run 'poke-battle-logger setup' first")
	}

	if updateName == "" && updateEmail == "" {
		return fmt.Errorf("at least one of --name or --email is required")
	}

	return RunConfigUpdateWithDependencies(cfg, cfgFile, args[0], args[1], updateName, updateEmail, DefaultOutput)
}

// RunConfigUpdateWithDependencies runs the update command with injected dependencies
func RunConfigUpdateWithDependencies(cfg *config.Config, configPath, entityType, key, name, email string, out OutputWriter) error {
	if entityType != "trainer" {
		return fmt.Errorf("unknown entity type %q. Only trainers can be updated; remove and re-add a cc instead", entityType)
	}

	mgr := config.NewConfigManager(cfg, configPath)
	if err := mgr.UpdateTrainer(key, name, email); err != nil {
		return err
	}
	fmt.Fprintf(out, "Updated trainer %q\n", key)
	return nil
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	appextract "poke-battle-logger/application/extract"
	appprocess "poke-battle-logger/application/process"
	"poke-battle-logger/domain/battle"
	"poke-battle-logger/infrastructure/config"
	"poke-battle-logger/infrastructure/filesystem"
	infraprogress "poke-battle-logger/infrastructure/progress"
	"poke-battle-logger/infrastructure/storage"

	"github.com/spf13/cobra"
)

var (
	extractSourcePath  string
	extractVideoID     string
	extractTrainerKey  string
	extractPublishedAt string
	extractSave        bool
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Run the battle pipeline on a local video",
	Long: `Classify, segment and reconcile the battles of a local video and print them.
Nothing is stored unless --save is given.

Examples:
  poke-battle-logger extract --source session.mp4 --video dQw4w9WgXcQ --published-at 2024-01-02T12:00:00Z
  poke-battle-logger extract --source session.mp4 --video dQw4w9WgXcQ --trainer ash --save`,
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringVar(&extractSourcePath, "source", "", "Local video file (required)")
	extractCmd.Flags().StringVar(&extractVideoID, "video", "", "YouTube video ID the file was uploaded as (required)")
	extractCmd.Flags().StringVar(&extractTrainerKey, "trainer", "", "Trainer config key, ID or in-game name (required with --save)")
	extractCmd.Flags().StringVar(&extractPublishedAt, "published-at", "", "Recording start time (RFC 3339) instead of a YouTube lookup")
	extractCmd.Flags().BoolVar(&extractSave, "save", false, "Store the battles in the database")

	extractCmd.MarkFlagRequired("source")
	extractCmd.MarkFlagRequired("video")
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	output := os.Stdout

	var trainer config.Trainer
	if extractTrainerKey != "" {
		if trainer, err = config.NewConfigManager(cfg, cfgFile).FindTrainer(extractTrainerKey); err != nil {
			return err
		}
	} else if extractSave {
		return fmt.Errorf("--trainer is required with --save")
	}

	db, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	lookup, err := metadataLookup(ctx, cfg, extractPublishedAt, output)
	if err != nil {
		return err
	}
	engine, err := openEngine(ctx, cfg, db, filesystem.NewLocalSink(cfg.Paths.UnknownDirectory))
	if err != nil {
		return fmt.Errorf("failed to load detection engine: %w", err)
	}
	defer engine.Close()

	extractor, err := newExtractService(cfg, engine, lookup, infraprogress.NewWriterReporter(output), output)
	if err != nil {
		return err
	}

	src, err := openVideo(extractSourcePath)
	if err != nil {
		return err
	}
	defer src.Close()

	var store appprocess.BattleStore
	if extractSave {
		if err := storage.NewTrainerRepository(db).Upsert(ctx, trainer.ID, trainer.Name, trainer.Email); err != nil {
			return err
		}
		store = storage.NewBattleRepository(db)
	}

	return RunExtractWithDependencies(ctx, extractor, store, appextract.Input{
		VideoID:   extractVideoID,
		TrainerID: trainer.ID,
		Source:    src,
	}, output)
}

// RunExtractWithDependencies runs the extract command with injected dependencies (for testing).
// store may be nil to print without saving.
func RunExtractWithDependencies(
	ctx context.Context,
	extractor appprocess.Extractor,
	store appprocess.BattleStore,
	input appextract.Input,
	output io.Writer,
) error {
	result, err := extractor.Extract(ctx, input)
	if errors.Is(err, battle.ErrUnknownPokemon) && result != nil {
		fmt.Fprintf(output, "\n%d unknown pokemon crop(s) need a label:\n", len(result.Unknown))
		for _, u := range result.Unknown {
			fmt.Fprintf(output, "  %s\n", u.Source)
		}
		return err
	}
	if err != nil && !errors.Is(err, battle.ErrNoBattles) {
		return err
	}

	printBattles(output, result.Build)
	for _, s := range result.Skipped {
		fmt.Fprintf(output, "Skipped battle %d: %s\n", s.IntervalID, s.Reason)
	}
	if result.Build == nil || len(result.Build.Records) == 0 {
		return err
	}

	if store != nil {
		if err := store.SaveBuild(ctx, result.Build); err != nil {
			return fmt.Errorf("failed to save battles: %w", err)
		}
		fmt.Fprintf(output, "Saved %d battle(s)\n", len(result.Build.Records))
	}
	return nil
}

func printBattles(output io.Writer, build *battle.Build) {
	if build == nil || len(build.Records) == 0 {
		fmt.Fprintln(output, "No battles found.")
		return
	}

	w := tabwriter.NewWriter(output, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tSTART\tOUTCOME\tRANK\tSELECTION\tOPPONENT\tURL")
	for i, r := range build.Records {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\t%s\n",
			i+1,
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			r.Outcome,
			r.NextRank,
			strings.Join(r.YourSelection, ","),
			strings.Join(r.OpponentSelection, ","),
			r.VideoURL,
		)
	}
	w.Flush()

	total, wins, losses := build.Summary()
	fmt.Fprintf(output, "%d battle(s): %d wins, %d losses\n", total, wins, losses)
}

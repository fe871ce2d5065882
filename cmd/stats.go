package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"poke-battle-logger/infrastructure/config"
	"poke-battle-logger/infrastructure/storage"

	"github.com/spf13/cobra"
)

var (
	statsVideoID    string
	statsTrainerKey string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show win/loss totals from the battle database",
	Long: `Print the stored win/loss record of a video or a trainer. With --video the
individual battles are listed too.

Examples:
  poke-battle-logger stats --video dQw4w9WgXcQ
  poke-battle-logger stats --trainer ash`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().StringVar(&statsVideoID, "video", "", "YouTube video ID")
	statsCmd.Flags().StringVar(&statsTrainerKey, "trainer", "", "Trainer config key, ID or in-game name")
	statsCmd.MarkFlagsOneRequired("video", "trainer")
	statsCmd.MarkFlagsMutuallyExclusive("video", "trainer")
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}

	db, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	return RunStatsWithDependencies(cmd.Context(), cfg, storage.NewBattleRepository(db), statsVideoID, statsTrainerKey, os.Stdout)
}

// StatsStore reads win/loss tallies
type StatsStore interface {
	VideoSummary(ctx context.Context, videoID string) (storage.Summary, error)
	TrainerSummary(ctx context.Context, trainerID int64) (storage.Summary, error)
	BattleLister
}

// RunStatsWithDependencies runs the stats command with injected dependencies (for testing)
func RunStatsWithDependencies(ctx context.Context, cfg *config.Config, store StatsStore, videoID, trainerKey string, output io.Writer) error {
	if videoID != "" {
		sum, err := store.VideoSummary(ctx, videoID)
		if err != nil {
			return err
		}
		fmt.Fprintf(output, "Video %s\n", videoID)
		printSummary(output, sum)

		battles, err := store.VideoBattles(ctx, videoID)
		if err != nil {
			return err
		}
		if len(battles) == 0 {
			return nil
		}
		fmt.Fprintln(output)
		w := tabwriter.NewWriter(output, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "BATTLE\tSTART\tOUTCOME\tRANK\tURL")
		for _, b := range battles {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", b.BattleID, b.CreatedAt.Format("2006-01-02 15:04:05"), b.Outcome, b.NextRank, b.VideoURL)
		}
		return w.Flush()
	}

	trainer, err := config.NewConfigManager(cfg, "").FindTrainer(trainerKey)
	if err != nil {
		return err
	}
	sum, err := store.TrainerSummary(ctx, trainer.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(output, "Trainer %s (id %d)\n", trainer.Name, trainer.ID)
	printSummary(output, sum)
	return nil
}

func printSummary(output io.Writer, sum storage.Summary) {
	fmt.Fprintf(output, "  Battles: %d\n", sum.Battles)
	fmt.Fprintf(output, "  Wins:    %d\n", sum.Wins)
	fmt.Fprintf(output, "  Losses:  %d\n", sum.Losses)
	if sum.Battles > 0 {
		fmt.Fprintf(output, "  Win rate: %.1f%%\n", float64(sum.Wins)*100/float64(sum.Battles))
	}
}

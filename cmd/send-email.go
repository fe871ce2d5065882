package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"poke-battle-logger/domain/notification"
	"poke-battle-logger/infrastructure/config"
	"poke-battle-logger/infrastructure/gmail"
	"poke-battle-logger/infrastructure/storage"

	"github.com/spf13/cobra"
)

var (
	emailVideoID string
	emailTrainer string
)

var sendEmailCmd = &cobra.Command{
	Use:   "send-email",
	Short: "Mail a trainer the battle summary of a processed video",
	Long: `Send the completion mail for a video that was already processed, using the
battle counts stored in the database. Useful when the mail step of 'process'
failed or was skipped with --no-email.

Examples:
  poke-battle-logger send-email --video dQw4w9WgXcQ --trainer ash`,
	RunE: runSendEmail,
}

func init() {
	rootCmd.AddCommand(sendEmailCmd)
	sendEmailCmd.Flags().StringVar(&emailVideoID, "video", "", "YouTube video ID (required)")
	sendEmailCmd.Flags().StringVar(&emailTrainer, "trainer", "", "Trainer config key, ID or in-game name (required)")

	sendEmailCmd.MarkFlagRequired("video")
	sendEmailCmd.MarkFlagRequired("trainer")
}

func runSendEmail(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	db, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	httpClient, err := googleHTTPClient(ctx, cfg, os.Stdout)
	if err != nil {
		return err
	}
	gmailService, err := gmail.NewGoogleGmailService(ctx, httpClient)
	if err != nil {
		return fmt.Errorf("failed to create Gmail client: %w", err)
	}
	sender := gmail.NewClient(fromRecipient(cfg), gmail.WithGmailService(gmailService))

	return RunSendEmailWithDependencies(ctx, cfg, storage.NewBattleRepository(db), sender, emailVideoID, emailTrainer, os.Stdout)
}

// VideoSummarizer reports the stored battle counts of a video
type VideoSummarizer interface {
	VideoSummary(ctx context.Context, videoID string) (storage.Summary, error)
}

// RunSendEmailWithDependencies runs the send-email command with injected dependencies (for testing)
func RunSendEmailWithDependencies(
	ctx context.Context,
	cfg *config.Config,
	summaries VideoSummarizer,
	sender notification.EmailSender,
	videoID string,
	trainerKey string,
	output io.Writer,
) error {
	trainer, err := config.NewConfigManager(cfg, "").FindTrainer(trainerKey)
	if err != nil {
		return err
	}
	if trainer.Email == "" {
		return fmt.Errorf("trainer %q has no email address; run 'poke-battle-logger config update trainer %s --email ...'", trainer.Key, trainer.Key)
	}

	sum, err := summaries.VideoSummary(ctx, videoID)
	if err != nil {
		return err
	}
	if sum.Battles == 0 {
		return fmt.Errorf("no battles stored for video %s; run 'poke-battle-logger process' first", videoID)
	}

	notifier := newNotifier(cfg, sender)
	to := appnotifTrainer(trainer)
	if err := notifier.Completed(ctx, to, videoID, sum.Battles, sum.Wins, sum.Losses); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	fmt.Fprintf(output, "Email sent successfully!\n")
	fmt.Fprintf(output, "  To: %s <%s>\n", trainer.Name, trainer.Email)
	fmt.Fprintf(output, "  Battles: %d (%d wins, %d losses)\n", sum.Battles, sum.Wins, sum.Losses)
	return nil
}

package cmd

import (
	"context"
	"fmt"
	"image"
	_ "image/png"
	"io"
	"os"
	"strings"

	"poke-battle-logger/infrastructure/storage"

	"github.com/spf13/cobra"
)

var (
	learnLabel  string
	learnRemove bool
)

var learnCmd = &cobra.Command{
	Use:   "learn <crop.png>...",
	Short: "Teach the embedding index a labeled pokemon crop",
	Long: `Embed labeled crops with models.embedding and store them so the next run
recognizes the pokemon. Typically used on the crops a run saved under
paths.unknown_directory after labeling them.

Example:
  poke-battle-logger learn --label Garchomp data/unknown/pokemon/20240102120000_1.png
  poke-battle-logger learn --label Rotom-Wash --remove data/unknown/pokemon/*.png`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLearn,
}

func init() {
	rootCmd.AddCommand(learnCmd)
	learnCmd.Flags().StringVar(&learnLabel, "label", "", "Pokemon name the crops show (required)")
	learnCmd.Flags().BoolVar(&learnRemove, "remove", false, "Delete each crop once it is stored")
	learnCmd.MarkFlagRequired("label")
}

func runLearn(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}
	if cfg.Models.Embedding == "" {
		return fmt.Errorf("models.embedding is not configured")
	}
	ctx := cmd.Context()

	db, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	engine, err := openEngine(ctx, cfg, db, nil)
	if err != nil {
		return fmt.Errorf("failed to load detection engine: %w", err)
	}
	defer engine.Close()

	return RunLearnWithDependencies(ctx, engine, storage.NewEmbeddingRepository(db), learnLabel, args, learnRemove, os.Stdout)
}

// Embedder turns a crop into a vector
type Embedder interface {
	Embed(crop image.Image) ([]float32, error)
}

// EmbeddingStore keeps labeled vectors
type EmbeddingStore interface {
	Add(ctx context.Context, label string, vec []float32) error
}

// RunLearnWithDependencies runs the learn command with injected dependencies (for testing)
func RunLearnWithDependencies(
	ctx context.Context,
	embedder Embedder,
	store EmbeddingStore,
	label string,
	paths []string,
	remove bool,
	output io.Writer,
) error {
	label = strings.TrimSpace(label)
	if label == "" {
		return fmt.Errorf("label is required")
	}

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		crop, err := readImage(p)
		if err != nil {
			return err
		}
		vec, err := embedder.Embed(crop)
		if err != nil {
			return fmt.Errorf("failed to embed %s: %w", p, err)
		}
		if err := store.Add(ctx, label, vec); err != nil {
			return err
		}
		fmt.Fprintf(output, "Learned %s as %s\n", p, label)

		if remove {
			if err := os.Remove(p); err != nil {
				return fmt.Errorf("failed to remove %s: %w", p, err)
			}
		}
	}

	fmt.Fprintf(output, "Stored %d embedding(s) for %s\n", len(paths), label)
	return nil
}

func readImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return img, nil
}

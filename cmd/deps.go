package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	appextract "poke-battle-logger/application/extract"
	"poke-battle-logger/domain/battle"
	"poke-battle-logger/domain/progress"
	"poke-battle-logger/domain/recognition"
	"poke-battle-logger/domain/video"
	"poke-battle-logger/infrastructure/config"
	infradetection "poke-battle-logger/infrastructure/detection"
	"poke-battle-logger/infrastructure/drive"
	"poke-battle-logger/infrastructure/storage"
	"poke-battle-logger/infrastructure/vectorindex"
	"poke-battle-logger/infrastructure/youtube"
)

func openStorage(c *config.Config) (*storage.DB, error) {
	db, err := storage.NewDB(storage.Config{
		Type:       c.Storage.Type,
		Host:       c.Storage.Host,
		Port:       c.Storage.Port,
		User:       c.Storage.User,
		Password:   c.Storage.Password,
		Name:       c.Storage.Name,
		SQLitePath: c.Storage.SQLitePath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open battle database: %w", err)
	}
	return db, nil
}

// googleHTTPClient returns one OAuth client shared by Drive, Gmail and YouTube
func googleHTTPClient(ctx context.Context, c *config.Config, out io.Writer) (*http.Client, error) {
	if c.Google.CredentialsFile == "" {
		return nil, fmt.Errorf("google.credentials_file is not configured")
	}
	return drive.HTTPClient(ctx, drive.OAuthConfig{
		CredentialsFile: c.Google.CredentialsFile,
		TokenFile:       c.Google.TokenFile,
		Output:          out,
	})
}

// metadataLookup resolves video start times from YouTube, or from a fixed
// RFC 3339 time when publishedAt is set
func metadataLookup(ctx context.Context, c *config.Config, publishedAt string, out io.Writer) (video.MetadataLookup, error) {
	if publishedAt != "" {
		t, err := time.Parse(time.RFC3339, publishedAt)
		if err != nil {
			return nil, fmt.Errorf("invalid --published-at (use RFC 3339, e.g. 2024-01-02T15:04:05Z): %w", err)
		}
		return video.StaticLookup{PublishedAt: t}, nil
	}

	httpClient, err := googleHTTPClient(ctx, c, out)
	if err != nil {
		return nil, fmt.Errorf("metadata lookup needs Google credentials or --published-at: %w", err)
	}
	svc, err := youtube.NewGoogleVideoService(ctx, httpClient)
	if err != nil {
		return nil, err
	}
	return youtube.NewClient(svc), nil
}

// openEngine loads the detection engine with every configured resolver
func openEngine(ctx context.Context, c *config.Config, db *storage.DB, sink recognition.UnknownSink) (*infradetection.Engine, error) {
	profile, err := infradetection.ProfileFor(c.Detection.Profile)
	if err != nil {
		return nil, err
	}
	profile = profile.WithScores(c.Detection.Threshold, c.Detection.StrictThreshold)

	table, err := recognition.LoadNameTable(c.Assets.NameTable, c.Assets.NameColumn)
	if err != nil {
		return nil, err
	}

	opts := infradetection.Options{
		Profile:              profile,
		Assets:               infradetection.Assets{Dir: c.Assets.TemplateDirectory, Language: c.Detection.Language},
		NameTable:            table,
		NameLanguages:        c.Detection.NameLanguages,
		MessageLanguages:     c.Detection.MessageLanguages,
		ClassifierModel:      c.Models.Classifier,
		ClassifierLabels:     c.Models.ClassifierLabels,
		ClassifierConfidence: c.Models.ClassifierConfidence,
		EmbeddingModel:       c.Models.Embedding,
		EmbeddingMaxDistance: c.Models.EmbeddingMaxDistance,
		Sink:                 sink,
	}
	if c.Models.Embedding != "" {
		ix, err := vectorindex.Load(ctx, storage.NewEmbeddingRepository(db), c.Models.EmbeddingDim)
		if err != nil {
			return nil, err
		}
		opts.Index = ix
	}

	return infradetection.Open(opts)
}

// newExtractService wires the frame pipeline to an engine
func newExtractService(c *config.Config, engine *infradetection.Engine, lookup video.MetadataLookup, reporter progress.Reporter, out io.Writer) (*appextract.Service, error) {
	loc, err := c.Location()
	if err != nil {
		return nil, err
	}

	reconcilerOpts := []battle.ReconcilerOption{battle.WithLocation(loc)}
	if len(c.FormChangeSpecies) > 0 {
		reconcilerOpts = append(reconcilerOpts, battle.WithFormChangeSpecies(c.FormChangeSpecies))
	}

	return appextract.NewService(engine, engine, lookup, out,
		appextract.WithReporter(reporter),
		appextract.WithLogger(slog.Default()),
		appextract.WithSettings(appextract.Settings{
			GapThreshold:        c.Detection.GapThreshold,
			MessageGapThreshold: c.Detection.MessageGapThreshold,
			RepresentativeDepth: c.Detection.RepresentativeDepth,
			OutcomeSamples:      c.Detection.OutcomeSamples,
		}),
		appextract.WithReconcilerOptions(reconcilerOpts...),
	), nil
}

// openVideo adapts the gocv decoder to video.Source
func openVideo(path string) (video.Source, error) {
	src, err := infradetection.OpenVideo(path)
	if err != nil {
		return nil, err
	}
	return src, nil
}

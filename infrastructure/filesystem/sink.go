package filesystem

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"time"

	"poke-battle-logger/domain/recognition"
)

// LocalSink stores unidentified crops as PNG files under <root>/<kind>/
type LocalSink struct {
	root string
	now  func() time.Time

	mu    sync.Mutex
	count int
	saved []string
}

// SinkOption is a functional option for configuring LocalSink
type SinkOption func(*LocalSink)

// WithClock sets the clock used for file names (for testing)
func WithClock(now func() time.Time) SinkOption {
	return func(s *LocalSink) {
		s.now = now
	}
}

// NewLocalSink creates a sink rooted at a directory
func NewLocalSink(root string, opts ...SinkOption) *LocalSink {
	s := &LocalSink{root: root, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save implements recognition.UnknownSink. Files are named
// YYYYMMDDHHMMSS_<n>.png with n counting every crop of this sink.
func (s *LocalSink) Save(ctx context.Context, kind string, crop image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Join(s.root, kind)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}

	s.count++
	path := filepath.Join(dir, fmt.Sprintf("%s_%d.png", s.now().Format("20060102150405"), s.count))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := png.Encode(f, crop); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	s.saved = append(s.saved, path)
	return path, nil
}

// Saved returns the paths written so far
func (s *LocalSink) Saved() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.saved...)
}

// Ensure LocalSink implements recognition.UnknownSink
var _ recognition.UnknownSink = (*LocalSink)(nil)

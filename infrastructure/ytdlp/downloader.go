package ytdlp

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"poke-battle-logger/domain/video"
)

// CommandRunner defines the interface for running external commands
// This allows mocking exec.Command in tests
type CommandRunner interface {
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecCommandRunner is the production implementation using os/exec
type ExecCommandRunner struct{}

// Output executes a command and returns its output
func (r *ExecCommandRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// DefaultFormat picks an mp4 stream matching a profile height
func DefaultFormat(height int) string {
	return fmt.Sprintf("bv*[height=%d][ext=mp4]/bv*[height<=%d]", height, height)
}

// Downloader implements video.Downloader with yt-dlp. Only the video stream
// is fetched; the pipeline never reads audio.
type Downloader struct {
	path    string
	format  string
	runner  CommandRunner
	checker video.FileChecker
}

// Option is a functional option for configuring Downloader
type Option func(*Downloader)

// WithPath sets a custom yt-dlp executable path
func WithPath(path string) Option {
	return func(d *Downloader) {
		if path != "" {
			d.path = path
		}
	}
}

// WithFormat sets the yt-dlp format selector
func WithFormat(format string) Option {
	return func(d *Downloader) {
		d.format = format
	}
}

// WithCommandRunner sets a custom command runner (for testing)
func WithCommandRunner(runner CommandRunner) Option {
	return func(d *Downloader) {
		d.runner = runner
	}
}

// WithFileChecker skips downloads whose target already exists
func WithFileChecker(checker video.FileChecker) Option {
	return func(d *Downloader) {
		d.checker = checker
	}
}

// NewDownloader creates a yt-dlp downloader
func NewDownloader(opts ...Option) *Downloader {
	d := &Downloader{
		path:   "yt-dlp",
		format: DefaultFormat(720),
		runner: &ExecCommandRunner{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ExpectedPath is where a video lands when yt-dlp picks an mp4 stream
func ExpectedPath(dir, videoID string) string {
	return filepath.Join(dir, videoID+".mp4")
}

// Download implements video.Downloader
func (d *Downloader) Download(ctx context.Context, videoID, dir string) (string, error) {
	if videoID == "" {
		return "", fmt.Errorf("video id is required")
	}
	if d.checker != nil && d.checker.Exists(ExpectedPath(dir, videoID)) {
		return ExpectedPath(dir, videoID), nil
	}

	args := []string{
		"-f", d.format,
		"-o", filepath.Join(dir, "%(id)s.%(ext)s"),
		"--no-simulate",
		"--print", "after_move:filepath",
		"https://www.youtube.com/watch?v=" + videoID,
	}
	out, err := d.runner.Output(ctx, d.path, args...)
	if err != nil {
		return "", fmt.Errorf("yt-dlp download of %s failed: %w", videoID, err)
	}

	path := lastLine(string(out))
	if path == "" {
		return "", fmt.Errorf("yt-dlp reported no file for %s", videoID)
	}
	return path, nil
}

// VerifyInstalled checks that yt-dlp is available
func (d *Downloader) VerifyInstalled(ctx context.Context) error {
	if _, err := d.runner.Output(ctx, d.path, "--version"); err != nil {
		return fmt.Errorf("yt-dlp not found or not executable: %w", err)
	}
	return nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

// Ensure Downloader implements video.Downloader
var _ video.Downloader = (*Downloader)(nil)

package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"poke-battle-logger/domain/video"
)

// CommandRunner defines the interface for running external commands
// This allows mocking exec.Command in tests
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) error
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecCommandRunner is the production implementation using os/exec
type ExecCommandRunner struct{}

// Run executes a command and returns any error
func (r *ExecCommandRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Output executes a command and returns its output
func (r *ExecCommandRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.Output()
}

// Clipper implements video.Clipper using ffmpeg stream copy
type Clipper struct {
	ffmpegPath string
	runner     CommandRunner
}

// Option is a functional option shared by the ffmpeg adapters
type Option func(*settings)

type settings struct {
	ffmpegPath string
	runner     CommandRunner
}

// WithFFmpegPath sets a custom ffmpeg executable path
func WithFFmpegPath(path string) Option {
	return func(s *settings) {
		if path != "" {
			s.ffmpegPath = path
		}
	}
}

// WithCommandRunner sets a custom command runner (for testing)
func WithCommandRunner(runner CommandRunner) Option {
	return func(s *settings) {
		s.runner = runner
	}
}

func apply(opts []Option) settings {
	s := settings{
		ffmpegPath: "ffmpeg",
		runner:     &ExecCommandRunner{},
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// NewClipper creates a new FFmpeg-based clipper
func NewClipper(opts ...Option) *Clipper {
	s := apply(opts)
	return &Clipper{ffmpegPath: s.ffmpegPath, runner: s.runner}
}

// Clip implements video.Clipper
func (c *Clipper) Clip(ctx context.Context, req *video.ClipRequest, outputPath string) error {
	args := []string{
		"-i", req.SourcePath,
		"-ss", req.Start.String(),
		"-to", req.End.String(),
		"-c", "copy",
		"-y", // Overwrite output file if it exists
		outputPath,
	}

	if err := c.runner.Run(ctx, c.ffmpegPath, args...); err != nil {
		return fmt.Errorf("ffmpeg clip failed: %w", err)
	}

	return nil
}

// VerifyInstalled checks that ffmpeg is available
func (c *Clipper) VerifyInstalled(ctx context.Context) error {
	return verify(ctx, c.runner, c.ffmpegPath)
}

func verify(ctx context.Context, runner CommandRunner, path string) error {
	_, err := runner.Output(ctx, path, "-version")
	if err != nil {
		return fmt.Errorf("ffmpeg not found or not executable: %w", err)
	}
	return nil
}

// Ensure Clipper implements video.Clipper
var _ video.Clipper = (*Clipper)(nil)

package ffmpeg

import (
	"context"
	"fmt"

	"poke-battle-logger/domain/video"
)

// Grabber implements video.FrameGrabber using ffmpeg
type Grabber struct {
	ffmpegPath string
	runner     CommandRunner
}

// NewGrabber creates a new FFmpeg-based frame grabber
func NewGrabber(opts ...Option) *Grabber {
	s := apply(opts)
	return &Grabber{ffmpegPath: s.ffmpegPath, runner: s.runner}
}

// Grab implements video.FrameGrabber. The select filter addresses the frame
// by index instead of by seek time.
func (g *Grabber) Grab(ctx context.Context, sourcePath string, frame int, outputPath string) error {
	if frame < 0 {
		return fmt.Errorf("invalid frame index %d", frame)
	}
	args := []string{
		"-i", sourcePath,
		"-vf", fmt.Sprintf(`select=eq(n\,%d)`, frame),
		"-vsync", "0",
		"-frames:v", "1",
		"-y",
		outputPath,
	}

	if err := g.runner.Run(ctx, g.ffmpegPath, args...); err != nil {
		return fmt.Errorf("ffmpeg frame grab failed: %w", err)
	}

	return nil
}

// VerifyInstalled checks that ffmpeg is available
func (g *Grabber) VerifyInstalled(ctx context.Context) error {
	return verify(ctx, g.runner, g.ffmpegPath)
}

// Ensure Grabber implements video.FrameGrabber
var _ video.FrameGrabber = (*Grabber)(nil)

package video

import (
	"context"
	"fmt"
	"path/filepath"

	"poke-battle-logger/domain/video"
)

// FrameService dumps single frames of a video as PNG files for inspection
type FrameService struct {
	grabber     video.FrameGrabber
	fileChecker video.FileChecker
	outputDir   string
}

// NewFrameService creates a new FrameService
func NewFrameService(grabber video.FrameGrabber, fileChecker video.FileChecker, outputDir string) *FrameService {
	return &FrameService{
		grabber:     grabber,
		fileChecker: fileChecker,
		outputDir:   outputDir,
	}
}

// FramePath returns the dump path of a frame: frame_<index>.png
func (s *FrameService) FramePath(frame int) string {
	return filepath.Join(s.outputDir, fmt.Sprintf("frame_%d.png", frame))
}

// Dump writes every requested frame and returns the written paths in order
func (s *FrameService) Dump(ctx context.Context, sourcePath string, frames []int) ([]string, error) {
	if !s.fileChecker.Exists(sourcePath) {
		return nil, fmt.Errorf("source video does not exist: %s", sourcePath)
	}

	paths := make([]string, 0, len(frames))
	for _, f := range frames {
		out := s.FramePath(f)
		if err := s.grabber.Grab(ctx, sourcePath, f, out); err != nil {
			return paths, fmt.Errorf("frame %d: %w", f, err)
		}
		paths = append(paths, out)
	}
	return paths, nil
}

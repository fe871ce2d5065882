package detection

import (
	"context"
	"fmt"
	"io"

	"poke-battle-logger/domain/detection"
	"poke-battle-logger/domain/video"
)

// FrameDumper writes frames of a video to image files
type FrameDumper interface {
	Dump(ctx context.Context, sourcePath string, frames []int) ([]string, error)
}

// Service prints every detector's raw score for chosen frames, for tuning
// thresholds and windows against a real recording
type Service struct {
	analyzer detection.Analyzer
	dumper   FrameDumper
	output   io.Writer
}

// NewService creates a new probe service. dumper may be nil.
func NewService(analyzer detection.Analyzer, dumper FrameDumper, output io.Writer) *Service {
	return &Service{
		analyzer: analyzer,
		dumper:   dumper,
		output:   output,
	}
}

// ProbeInput contains input for a probe
type ProbeInput struct {
	SourcePath string
	Frames     []int
	Dump       bool
}

// ProbeResult contains the probe outcome
type ProbeResult struct {
	Analyses []detection.FrameAnalysis
	Dumped   []string
}

// Probe analyzes each requested frame of src
func (s *Service) Probe(ctx context.Context, src video.Source, input ProbeInput) (*ProbeResult, error) {
	total := src.FrameCount()
	result := &ProbeResult{}

	for _, idx := range input.Frames {
		if idx < 0 || (total > 0 && idx >= total) {
			return result, fmt.Errorf("frame %d outside video of %d frames", idx, total)
		}

		analysis, err := s.analyze(ctx, src, idx)
		if err != nil {
			return result, err
		}
		result.Analyses = append(result.Analyses, analysis)
		s.print(analysis)
	}

	if input.Dump && s.dumper != nil {
		paths, err := s.dumper.Dump(ctx, input.SourcePath, input.Frames)
		if err != nil {
			return result, fmt.Errorf("failed to dump frames: %w", err)
		}
		for _, p := range paths {
			fmt.Fprintf(s.output, "Wrote %s\n", p)
		}
		result.Dumped = paths
	}

	return result, nil
}

func (s *Service) analyze(ctx context.Context, src video.Source, idx int) (detection.FrameAnalysis, error) {
	frame, err := src.ReadAt(ctx, idx)
	if err != nil {
		return detection.FrameAnalysis{}, fmt.Errorf("failed to read frame %d: %w", idx, err)
	}
	defer frame.Close()

	analysis, err := s.analyzer.Analyze(frame)
	if err != nil {
		return detection.FrameAnalysis{}, fmt.Errorf("failed to analyze frame %d: %w", idx, err)
	}
	return analysis, nil
}

func (s *Service) print(a detection.FrameAnalysis) {
	fired := make(map[detection.Detector]bool, len(a.Fired))
	for _, d := range a.Fired {
		fired[d] = true
	}

	fmt.Fprintf(s.output, "Frame %d (%s):\n", a.Frame, video.FromFrame(a.Frame))
	for _, d := range detection.All {
		mark := ""
		if fired[d] {
			mark = "  fired"
		}
		fmt.Fprintf(s.output, "  %-14s %.3f%s\n", d, a.Scores[d], mark)
	}
	fmt.Fprintln(s.output)
}

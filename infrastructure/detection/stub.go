//go:build !detection

package detection

import (
	"context"
	"errors"
	"image"

	"poke-battle-logger/domain/battle"
	"poke-battle-logger/domain/detection"
	"poke-battle-logger/domain/recognition"
	"poke-battle-logger/domain/video"
)

// ErrUnavailable is returned by every operation of a build without OpenCV
var ErrUnavailable = errors.New("detection not available: build with '-tags=detection' and install OpenCV/GoCV and tesseract")

// Engine is a stub when GoCV/OpenCV is not available
type Engine struct{}

// Open returns an error indicating detection is not available
func Open(opts Options) (*Engine, error) {
	return nil, ErrUnavailable
}

// Close is a no-op in stub mode
func (e *Engine) Close() error { return nil }

// Analyze returns an error indicating detection is not available
func (e *Engine) Analyze(frame video.Frame) (detection.FrameAnalysis, error) {
	return detection.FrameAnalysis{}, ErrUnavailable
}

// Classify returns an error indicating detection is not available
func (e *Engine) Classify(frame video.Frame) ([]detection.Detector, error) {
	return nil, ErrUnavailable
}

// Rank returns an error indicating detection is not available
func (e *Engine) Rank(ctx context.Context, frame video.Frame, first bool) (int, error) {
	return 0, ErrUnavailable
}

// Outcome returns an error indicating detection is not available
func (e *Engine) Outcome(ctx context.Context, frame video.Frame) (battle.Outcome, error) {
	return battle.Unknown, ErrUnavailable
}

// Selection returns an error indicating detection is not available
func (e *Engine) Selection(ctx context.Context, frame video.Frame) ([]int, error) {
	return nil, ErrUnavailable
}

// Lineup returns an error indicating detection is not available
func (e *Engine) Lineup(ctx context.Context, frame video.Frame) (you, opponent []recognition.Identity, err error) {
	return nil, nil, ErrUnavailable
}

// ActivePokemon returns an error indicating detection is not available
func (e *Engine) ActivePokemon(ctx context.Context, frame video.Frame) (you, opponent recognition.Identity, err error) {
	return you, opponent, ErrUnavailable
}

// Message reports no banner in stub mode
func (e *Engine) Message(ctx context.Context, frame video.Frame) (string, bool) {
	return "", false
}

// Embed returns an error indicating detection is not available
func (e *Engine) Embed(crop image.Image) ([]float32, error) {
	return nil, ErrUnavailable
}

// VideoSource is a stub when GoCV/OpenCV is not available
type VideoSource struct{}

// OpenVideo returns an error indicating detection is not available
func OpenVideo(path string) (*VideoSource, error) {
	return nil, ErrUnavailable
}

// FrameCount is zero in stub mode
func (s *VideoSource) FrameCount() int { return 0 }

// Next returns an error indicating detection is not available
func (s *VideoSource) Next(ctx context.Context) (video.Frame, error) {
	return nil, ErrUnavailable
}

// ReadAt returns an error indicating detection is not available
func (s *VideoSource) ReadAt(ctx context.Context, index int) (video.Frame, error) {
	return nil, ErrUnavailable
}

// Close is a no-op in stub mode
func (s *VideoSource) Close() error { return nil }

// Ensure the stubs implement the same ports as the OpenCV build
var (
	_ detection.Classifier = (*Engine)(nil)
	_ detection.Analyzer   = (*Engine)(nil)
	_ video.Source         = (*VideoSource)(nil)
)

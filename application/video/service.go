package video

import (
	"context"
	"fmt"

	"poke-battle-logger/domain/battle"
	"poke-battle-logger/domain/video"
)

// ClipResult contains the result of a clip export
type ClipResult struct {
	Paths []string
	// Failed maps battle IDs to the reason their clip was not written
	Failed map[string]error
}

// ClipService cuts every battle of a video into its own file
type ClipService struct {
	clipper     video.Clipper
	fileChecker video.FileChecker
	outputDir   string
}

// NewClipService creates a new ClipService
func NewClipService(clipper video.Clipper, fileChecker video.FileChecker, outputDir string) *ClipService {
	return &ClipService{
		clipper:     clipper,
		fileChecker: fileChecker,
		outputDir:   outputDir,
	}
}

// ClipInput represents the input for a clip export
type ClipInput struct {
	SourcePath string
	Battles    []battle.Record
}

// Clip exports one clip per battle. A single failed clip does not stop the
// others; a cancelled context does.
func (s *ClipService) Clip(ctx context.Context, input ClipInput) (*ClipResult, error) {
	if !s.fileChecker.Exists(input.SourcePath) {
		return nil, fmt.Errorf("source file does not exist: %s", input.SourcePath)
	}

	result := &ClipResult{Failed: make(map[string]error)}
	for _, b := range input.Battles {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		req, err := video.NewClipRequest(input.SourcePath, b.StartFrame, b.EndFrame, b.BattleID)
		if err != nil {
			result.Failed[b.BattleID] = err
			continue
		}

		outputPath := req.OutputPath(s.outputDir)
		if err := s.clipper.Clip(ctx, req, outputPath); err != nil {
			result.Failed[b.BattleID] = err
			continue
		}
		result.Paths = append(result.Paths, outputPath)
	}

	return result, nil
}

package video

import (
	"context"
	"fmt"
	"path/filepath"
)

// Clipper cuts a section of a video into its own file
type Clipper interface {
	Clip(ctx context.Context, req *ClipRequest, outputPath string) error
}

// ClipRequest describes one battle section to export
type ClipRequest struct {
	SourcePath string
	Start      Timestamp
	End        Timestamp
	BattleID   string
}

// NewClipRequest builds a request from battle frame boundaries
func NewClipRequest(sourcePath string, startFrame, endFrame int, battleID string) (*ClipRequest, error) {
	req := &ClipRequest{
		SourcePath: sourcePath,
		Start:      FromFrame(startFrame),
		End:        FromFrame(endFrame),
		BattleID:   battleID,
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

// Validate checks that the clip request is usable
func (r *ClipRequest) Validate() error {
	if r.SourcePath == "" {
		return fmt.Errorf("source path is required")
	}
	if r.BattleID == "" {
		return fmt.Errorf("battle id is required")
	}
	if !r.Start.Before(r.End) {
		return fmt.Errorf("end time %s must be after start time %s", r.End, r.Start)
	}
	return nil
}

// OutputFilename returns <battle_id>.mp4
func (r *ClipRequest) OutputFilename() string {
	return r.BattleID + ".mp4"
}

// OutputPath returns the full output path given an output directory
func (r *ClipRequest) OutputPath(outputDir string) string {
	return filepath.Join(outputDir, r.OutputFilename())
}

// FrameGrabber writes a single frame of a video as an image file
type FrameGrabber interface {
	Grab(ctx context.Context, sourcePath string, frame int, outputPath string) error
}

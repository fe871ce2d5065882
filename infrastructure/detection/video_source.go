//go:build detection

package detection

import (
	"context"
	"fmt"
	"io"
	"sync"

	"poke-battle-logger/domain/video"

	"gocv.io/x/gocv"
)

// Frame is a decoded BGR frame
type Frame struct {
	index int
	Mat   gocv.Mat
}

// Index implements video.Frame
func (f *Frame) Index() int {
	return f.index
}

// Close releases the native image
func (f *Frame) Close() error {
	return f.Mat.Close()
}

// VideoSource reads frames through a gocv VideoCapture. A mutex serializes
// sequential reads and backward re-seeks on the one handle.
type VideoSource struct {
	mu      sync.Mutex
	capture *gocv.VideoCapture
	count   int
	next    int
}

// OpenVideo opens a video file for frame-indexed reading
func OpenVideo(path string) (*VideoSource, error) {
	capture, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open video %s: %w", path, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("failed to open video %s", path)
	}
	return &VideoSource{
		capture: capture,
		count:   int(capture.Get(gocv.VideoCaptureFrameCount)),
	}, nil
}

// FrameCount implements video.Source
func (s *VideoSource) FrameCount() int {
	return s.count
}

// Next implements video.Source
func (s *VideoSource) Next(ctx context.Context) (video.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(ctx)
}

// ReadAt implements video.Source. Sequential reading continues after index.
func (s *VideoSource) ReadAt(ctx context.Context, index int) (video.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || (s.count > 0 && index >= s.count) {
		return nil, fmt.Errorf("frame %d outside video of %d frames", index, s.count)
	}
	s.capture.Set(gocv.VideoCapturePosFrames, float64(index))
	s.next = index
	return s.read(ctx)
}

func (s *VideoSource) read(ctx context.Context) (video.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m := gocv.NewMat()
	if ok := s.capture.Read(&m); !ok || m.Empty() {
		m.Close()
		return nil, io.EOF
	}
	f := &Frame{index: s.next, Mat: m}
	s.next++
	return f, nil
}

// Close releases the capture handle
func (s *VideoSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.capture.Close()
}

// Ensure VideoSource implements video.Source
var _ video.Source = (*VideoSource)(nil)

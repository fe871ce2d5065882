package video

import "context"

// Frame is one decoded raster frame. The image lives in native memory owned by
// the implementation, so holders must Close it.
type Frame interface {
	Index() int
	Close() error
}

// Source is a frame-indexed video decoder. Next reads sequentially; ReadAt
// re-positions the handle, which the pipeline uses to re-read earlier frames.
// Next returns io.EOF after the last frame.
// A Source is a single logical reader and is not safe for concurrent passes.
type Source interface {
	FrameCount() int
	Next(ctx context.Context) (Frame, error)
	ReadAt(ctx context.Context, index int) (Frame, error)
	Close() error
}

// FileChecker checks for local file existence
type FileChecker interface {
	Exists(path string) bool
}

// Downloader fetches a published video into a local directory and returns its path
type Downloader interface {
	Download(ctx context.Context, videoID, dir string) (string, error)
}

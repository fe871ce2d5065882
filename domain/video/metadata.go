package video

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// Metadata describes a published video
type Metadata struct {
	ID          string
	Title       string
	PublishedAt time.Time
}

// MetadataLookup resolves a video identifier to its publish/start time
type MetadataLookup interface {
	Lookup(ctx context.Context, videoID string) (Metadata, error)
}

// StartTime returns the wall-clock time a frame was recorded
func (m Metadata) StartTime(frame int) time.Time {
	return m.PublishedAt.Add(time.Duration(FromFrame(frame).TotalSeconds()) * time.Second)
}

// DeepLink returns a watch URL that starts playback at the given frame
func DeepLink(videoID string, frame int) string {
	return fmt.Sprintf("https://www.youtube.com/watch?v=%s&t=%ds",
		url.QueryEscape(videoID), FromFrame(frame).TotalSeconds())
}

// StaticLookup answers every lookup with the same start time
type StaticLookup struct {
	PublishedAt time.Time
}

// Lookup implements MetadataLookup
func (s StaticLookup) Lookup(ctx context.Context, videoID string) (Metadata, error) {
	return Metadata{ID: videoID, PublishedAt: s.PublishedAt}, nil
}

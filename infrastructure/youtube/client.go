package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"poke-battle-logger/domain/video"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// ErrVideoNotFound is returned when the API knows no video with the id
var ErrVideoNotFound = errors.New("video not found")

// VideoService defines the interface for YouTube Data API operations
// This allows mocking the YouTube API in tests
type VideoService interface {
	GetVideo(ctx context.Context, id string) (*youtube.Video, error)
}

// GoogleVideoService is the production implementation using the YouTube Data API
type GoogleVideoService struct {
	service *youtube.Service
}

// NewGoogleVideoService creates the YouTube API service from an authorized HTTP client
func NewGoogleVideoService(ctx context.Context, client *http.Client) (*GoogleVideoService, error) {
	srv, err := youtube.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create youtube service: %w", err)
	}
	return &GoogleVideoService{service: srv}, nil
}

// GetVideo fetches the snippet and live streaming details of a video
func (s *GoogleVideoService) GetVideo(ctx context.Context, id string) (*youtube.Video, error) {
	resp, err := s.service.Videos.List([]string{"snippet", "liveStreamingDetails"}).Id(id).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrVideoNotFound, id)
	}
	return resp.Items[0], nil
}

// Client implements video.MetadataLookup using the YouTube Data API
type Client struct {
	service VideoService
}

// NewClient creates a metadata client
func NewClient(service VideoService) *Client {
	return &Client{service: service}
}

// Lookup implements video.MetadataLookup. A live stream starts at its actual
// start time; an upload at its publish time.
func (c *Client) Lookup(ctx context.Context, videoID string) (video.Metadata, error) {
	v, err := c.service.GetVideo(ctx, videoID)
	if err != nil {
		return video.Metadata{}, fmt.Errorf("failed to look up video %s: %w", videoID, err)
	}

	meta := video.Metadata{ID: videoID}
	var stamp string
	if v.Snippet != nil {
		meta.Title = v.Snippet.Title
		stamp = v.Snippet.PublishedAt
	}
	if v.LiveStreamingDetails != nil && v.LiveStreamingDetails.ActualStartTime != "" {
		stamp = v.LiveStreamingDetails.ActualStartTime
	}
	if stamp == "" {
		return video.Metadata{}, fmt.Errorf("video %s has no publish time", videoID)
	}

	meta.PublishedAt, err = time.Parse(time.RFC3339, stamp)
	if err != nil {
		return video.Metadata{}, fmt.Errorf("invalid publish time %q: %w", stamp, err)
	}
	return meta, nil
}

// Ensure Client implements video.MetadataLookup
var _ video.MetadataLookup = (*Client)(nil)

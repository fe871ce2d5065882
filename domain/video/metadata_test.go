package video

import (
	"context"
	"testing"
	"time"
)

func TestDeepLink(t *testing.T) {
	got := DeepLink("abc123", 3600)
	want := "https://www.youtube.com/watch?v=abc123&t=120s"
	if got != want {
		t.Errorf("DeepLink() = %s, want %s", got, want)
	}
}

func TestMetadata_StartTime(t *testing.T) {
	published := time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)
	m := Metadata{ID: "abc", PublishedAt: published}

	got := m.StartTime(1830)
	want := published.Add(61 * time.Second)
	if !got.Equal(want) {
		t.Errorf("StartTime() = %v, want %v", got, want)
	}
}

func TestStaticLookup(t *testing.T) {
	published := time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)
	m, err := StaticLookup{PublishedAt: published}.Lookup(context.Background(), "abc")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if m.ID != "abc" || !m.PublishedAt.Equal(published) {
		t.Errorf("Lookup() = %+v", m)
	}
}

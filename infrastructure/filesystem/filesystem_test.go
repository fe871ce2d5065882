package filesystem

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestChecker_Exists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "video.mp4")
	os.WriteFile(path, []byte("x"), 0644)

	c := NewChecker()
	if !c.Exists(path) {
		t.Error("Exists() = false for existing file")
	}
	if c.Exists(filepath.Join(dir, "missing.mp4")) {
		t.Error("Exists() = true for missing file")
	}
	if c.Exists(dir) {
		t.Error("Exists() = true for a directory")
	}

	empty := filepath.Join(dir, "partial.mp4")
	os.WriteFile(empty, nil, 0644)
	if c.Exists(empty) {
		t.Error("Exists() = true for an empty file")
	}
}

func TestLocalSink_Save(t *testing.T) {
	root := t.TempDir()
	clock := func() time.Time { return time.Date(2026, 5, 1, 20, 30, 45, 0, time.UTC) }
	sink := NewLocalSink(root, WithClock(clock))

	crop := image.NewGray(image.Rect(0, 0, 4, 3))
	crop.SetGray(1, 1, color.Gray{Y: 255})

	first, err := sink.Save(context.Background(), "pokemon", crop)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	second, err := sink.Save(context.Background(), "name_window", crop)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if want := filepath.Join(root, "pokemon", "20260501203045_1.png"); first != want {
		t.Errorf("first path = %s, want %s", first, want)
	}
	if want := filepath.Join(root, "name_window", "20260501203045_2.png"); second != want {
		t.Errorf("second path = %s, want %s", second, want)
	}

	f, err := os.Open(first)
	if err != nil {
		t.Fatalf("open saved crop: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode saved crop: %v", err)
	}
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 3 {
		t.Errorf("saved size = %v", img.Bounds())
	}

	if got := sink.Saved(); len(got) != 2 {
		t.Errorf("Saved() = %v", got)
	}
}

func TestLocalSink_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sink := NewLocalSink(t.TempDir())
	if _, err := sink.Save(ctx, "pokemon", image.NewGray(image.Rect(0, 0, 1, 1))); err == nil {
		t.Error("expected error for cancelled context")
	}
}

package ytdlp

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type mockRunner struct {
	out  string
	err  error
	args []string
	runs int
}

func (m *mockRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	m.args = args
	m.runs++
	return []byte(m.out), m.err
}

type mockChecker struct {
	existing map[string]bool
}

func (m *mockChecker) Exists(path string) bool {
	return m.existing[path]
}

func TestDownloader_Download(t *testing.T) {
	runner := &mockRunner{out: "[download] 100%\ndata/videos/abc123.mp4\n"}
	d := NewDownloader(WithCommandRunner(runner))

	path, err := d.Download(context.Background(), "abc123", "data/videos")
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if path != "data/videos/abc123.mp4" {
		t.Errorf("path = %s", path)
	}

	got := strings.Join(runner.args, " ")
	if !strings.Contains(got, "-o data/videos/%(id)s.%(ext)s") {
		t.Errorf("output template missing: %s", got)
	}
	if !strings.HasSuffix(got, "https://www.youtube.com/watch?v=abc123") {
		t.Errorf("url missing: %s", got)
	}
	if !strings.Contains(got, "-f "+DefaultFormat(720)) {
		t.Errorf("format missing: %s", got)
	}
}

func TestDownloader_SkipsExisting(t *testing.T) {
	runner := &mockRunner{}
	checker := &mockChecker{existing: map[string]bool{ExpectedPath("dir", "abc"): true}}
	d := NewDownloader(WithCommandRunner(runner), WithFileChecker(checker))

	path, err := d.Download(context.Background(), "abc", "dir")
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if path != ExpectedPath("dir", "abc") || runner.runs != 0 {
		t.Errorf("path = %s, runs = %d", path, runner.runs)
	}
}

func TestDownloader_Errors(t *testing.T) {
	tests := []struct {
		name    string
		videoID string
		runner  *mockRunner
	}{
		{"empty id", "", &mockRunner{}},
		{"command fails", "abc", &mockRunner{err: errors.New("exit status 1")}},
		{"no output", "abc", &mockRunner{out: "\n"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDownloader(WithCommandRunner(tt.runner))
			if _, err := d.Download(context.Background(), tt.videoID, "dir"); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestDefaultFormat(t *testing.T) {
	if got := DefaultFormat(1080); got != "bv*[height=1080][ext=mp4]/bv*[height<=1080]" {
		t.Errorf("DefaultFormat() = %s", got)
	}
}

package ffmpeg

import (
	"context"
	"errors"
	"strings"
	"testing"

	"poke-battle-logger/domain/video"
)

type mockRunner struct {
	name string
	args []string
	err  error
}

func (m *mockRunner) Run(ctx context.Context, name string, args ...string) error {
	m.name = name
	m.args = args
	return m.err
}

func (m *mockRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	m.name = name
	m.args = args
	return []byte("ffmpeg version 6.1"), m.err
}

func TestClipper_Clip(t *testing.T) {
	runner := &mockRunner{}
	c := NewClipper(WithFFmpegPath("/usr/bin/ffmpeg"), WithCommandRunner(runner))

	req, err := video.NewClipRequest("/videos/abc.mp4", 300, 9000, "battle-1")
	if err != nil {
		t.Fatalf("NewClipRequest() error = %v", err)
	}
	if err := c.Clip(context.Background(), req, "/clips/battle-1.mp4"); err != nil {
		t.Fatalf("Clip() error = %v", err)
	}

	if runner.name != "/usr/bin/ffmpeg" {
		t.Errorf("ran %q, want /usr/bin/ffmpeg", runner.name)
	}
	got := strings.Join(runner.args, " ")
	want := "-i /videos/abc.mp4 -ss 00:00:10 -to 00:05:00 -c copy -y /clips/battle-1.mp4"
	if got != want {
		t.Errorf("args = %q, want %q", got, want)
	}
}

func TestClipper_ClipError(t *testing.T) {
	runner := &mockRunner{err: errors.New("exit status 1")}
	c := NewClipper(WithCommandRunner(runner))

	req, _ := video.NewClipRequest("/videos/abc.mp4", 0, 300, "battle-1")
	err := c.Clip(context.Background(), req, "out.mp4")
	if err == nil || !strings.Contains(err.Error(), "ffmpeg clip failed") {
		t.Errorf("Clip() error = %v", err)
	}
	if runner.name != "ffmpeg" {
		t.Errorf("default path = %q, want ffmpeg", runner.name)
	}
}

func TestGrabber_Grab(t *testing.T) {
	runner := &mockRunner{}
	g := NewGrabber(WithCommandRunner(runner))

	if err := g.Grab(context.Background(), "in.mp4", 1234, "frame.png"); err != nil {
		t.Fatalf("Grab() error = %v", err)
	}
	got := strings.Join(runner.args, " ")
	want := `-i in.mp4 -vf select=eq(n\,1234) -vsync 0 -frames:v 1 -y frame.png`
	if got != want {
		t.Errorf("args = %q, want %q", got, want)
	}

	if err := g.Grab(context.Background(), "in.mp4", -1, "frame.png"); err == nil {
		t.Error("expected error for negative frame")
	}
}

func TestVerifyInstalled(t *testing.T) {
	ok := NewGrabber(WithCommandRunner(&mockRunner{}))
	if err := ok.VerifyInstalled(context.Background()); err != nil {
		t.Errorf("VerifyInstalled() error = %v", err)
	}

	missing := NewClipper(WithCommandRunner(&mockRunner{err: errors.New("not found")}))
	if err := missing.VerifyInstalled(context.Background()); err == nil {
		t.Error("expected error when ffmpeg is missing")
	}
}

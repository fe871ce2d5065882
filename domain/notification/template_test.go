package notification

import (
	"errors"
	"strings"
	"testing"
)

func TestCompletedTemplate_RenderSubject(t *testing.T) {
	data := TemplateData{
		TrainerName: "Satoshi",
		VideoID:     "abc123",
		Battles:     12,
	}

	subject, err := CompletedTemplate.RenderSubject(data)
	if err != nil {
		t.Fatalf("RenderSubject() error = %v", err)
	}

	expected := "Satoshi: 12 battles logged from abc123"
	if subject != expected {
		t.Errorf("RenderSubject() = %q, want %q", subject, expected)
	}
}

func TestCompletedTemplate_RenderPlainText(t *testing.T) {
	req := &EmailRequest{
		Kind:       KindCompleted,
		To:         []Recipient{{Name: "Ash Ketchum", Address: "ash@example.com"}},
		VideoID:    "abc123",
		Battles:    3,
		Wins:       2,
		Losses:     1,
		SenderName: "battle-logger",
	}

	body, err := CompletedTemplate.RenderPlainText(NewTemplateData(req, "https://www.youtube.com/watch?v=abc123"))
	if err != nil {
		t.Fatalf("RenderPlainText() error = %v", err)
	}

	checks := []string{
		"Dear Ash,",
		"https://www.youtube.com/watch?v=abc123",
		"Battles: 3",
		"Wins: 2",
		"Losses: 1",
		"Win rate: 66.7%",
		"~battle-logger",
	}

	for _, check := range checks {
		if !strings.Contains(body, check) {
			t.Errorf("RenderPlainText() missing %q in:\n%s", check, body)
		}
	}
}

func TestLabelingTemplate_RenderHTML(t *testing.T) {
	data := TemplateData{
		Greeting:     "Dear Ash,",
		VideoID:      "abc123",
		VideoURL:     "https://www.youtube.com/watch?v=abc123",
		UnknownCount: 4,
		FolderURL:    "https://drive.google.com/drive/folders/xyz",
	}

	body, err := LabelingTemplate.RenderHTML(data)
	if err != nil {
		t.Fatalf("RenderHTML() error = %v", err)
	}

	if !strings.Contains(body, `<a href="https://drive.google.com/drive/folders/xyz">this folder</a>`) {
		t.Errorf("RenderHTML() missing folder link in:\n%s", body)
	}
	if !strings.Contains(body, "4 pokemon could not be identified") {
		t.Errorf("RenderHTML() missing unknown count in:\n%s", body)
	}
}

func TestTemplateFor(t *testing.T) {
	if _, err := TemplateFor(KindCompleted); err != nil {
		t.Errorf("TemplateFor(completed) error = %v", err)
	}
	if _, err := TemplateFor(KindLabelingRequired); err != nil {
		t.Errorf("TemplateFor(labeling) error = %v", err)
	}
	if _, err := TemplateFor("weekly"); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("TemplateFor(weekly) error = %v, want %v", err, ErrUnknownKind)
	}
}

func TestFormatWinRate(t *testing.T) {
	tests := []struct {
		wins, battles int
		want          string
	}{
		{0, 0, "n/a"},
		{1, 1, "100.0%"},
		{1, 3, "33.3%"},
		{0, 5, "0.0%"},
	}

	for _, tt := range tests {
		if got := FormatWinRate(tt.wins, tt.battles); got != tt.want {
			t.Errorf("FormatWinRate(%d, %d) = %q, want %q", tt.wins, tt.battles, got, tt.want)
		}
	}
}

func TestFormatGreeting(t *testing.T) {
	tests := []struct {
		name       string
		recipients []Recipient
		want       string
	}{
		{
			name:       "no recipients",
			recipients: nil,
			want:       "Hello,",
		},
		{
			name:       "one recipient",
			recipients: []Recipient{{Name: "Ash Ketchum", Address: "ash@example.com"}},
			want:       "Dear Ash,",
		},
		{
			name:       "two recipients",
			recipients: []Recipient{{Name: "Ash Ketchum"}, {Name: "Misty Waterflower"}},
			want:       "Dear Ash & Misty,",
		},
		{
			name:       "three recipients",
			recipients: []Recipient{{Name: "Ash"}, {Name: "Misty"}, {Name: "Brock"}},
			want:       "Hey Everyone!",
		},
		{
			name:       "recipient with no name",
			recipients: []Recipient{{Address: "ash@example.com"}},
			want:       "Dear Friend,",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatGreeting(tt.recipients)
			if got != tt.want {
				t.Errorf("FormatGreeting() = %q, want %q", got, tt.want)
			}
		})
	}
}

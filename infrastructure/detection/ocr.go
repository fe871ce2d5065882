//go:build detection

package detection

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"
	"sync"

	"poke-battle-logger/domain/recognition"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract reads text through one reused tesseract client
type Tesseract struct {
	mu       sync.Mutex
	client   *gosseract.Client
	language string
}

// NewTesseract creates an OCR client reading crops as a single text block
func NewTesseract() (*Tesseract, error) {
	client := gosseract.NewClient()
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to configure tesseract: %w", err)
	}
	return &Tesseract{client: client}, nil
}

// Text implements recognition.OCR
func (t *Tesseract) Text(ctx context.Context, crop image.Image, language string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, crop); err != nil {
		return "", fmt.Errorf("failed to encode crop: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if language != t.language {
		if err := t.client.SetLanguage(language); err != nil {
			return "", fmt.Errorf("failed to set language %s: %w", language, err)
		}
		t.language = language
	}
	if err := t.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to load crop: %w", err)
	}
	text, err := t.client.Text()
	if err != nil {
		return "", fmt.Errorf("tesseract %s: %w", language, err)
	}
	return strings.TrimSpace(text), nil
}

// Close releases the client
func (t *Tesseract) Close() error {
	return t.client.Close()
}

// Ensure Tesseract implements recognition.OCR
var _ recognition.OCR = (*Tesseract)(nil)

package recognition

import (
	"context"
	"image"
)

// MaxMessageWhitePixels marks a crop as a misdetected non-message frame
const MaxMessageWhitePixels = 10000

// DefaultMessageLanguages lists the OCR models tried on a message banner
var DefaultMessageLanguages = []string{"eng", "jpn"}

// MessageReader reads in-battle banners. It never fails a run: anything it
// cannot read is reported as absent.
type MessageReader struct {
	ocr       OCR
	languages []string
	fallback  Resolver
}

// NewMessageReader creates a message reader. fallback may be nil.
func NewMessageReader(ocr OCR, languages []string, fallback Resolver) *MessageReader {
	if len(languages) == 0 {
		languages = DefaultMessageLanguages
	}
	return &MessageReader{ocr: ocr, languages: languages, fallback: fallback}
}

// Read returns the banner text, or false when there is none
func (r *MessageReader) Read(ctx context.Context, crop image.Image, whitePixels int) (string, bool) {
	if whitePixels > MaxMessageWhitePixels {
		return "", false
	}

	var texts []string
	for _, lang := range r.languages {
		text, err := r.ocr.Text(ctx, crop, lang)
		if err != nil {
			continue
		}
		if t := CollapseSpace(text); t != "" {
			texts = append(texts, t)
		}
	}
	if text, ok := Majority(texts); ok {
		return text, true
	}

	if r.fallback == nil {
		return "", false
	}
	res, err := r.fallback.Resolve(ctx, crop)
	if err != nil {
		return "", false
	}
	return res.Get()
}

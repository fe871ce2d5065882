package recognition

import (
	"context"
	"fmt"
	"image"
)

// OCR reads text from an already thresholded crop with one language model
type OCR interface {
	Text(ctx context.Context, crop image.Image, language string) (string, error)
}

// NameMaxDistance is the largest normalized distance accepted for a name match
const NameMaxDistance = 0.5

// NameReader identifies the active pokemon from its HUD name window: OCR in
// every configured language, table match per language, majority across
// languages, then the template chain as a fallback
type NameReader struct {
	ocr       OCR
	table     *NameTable
	languages []string
	fallback  *Chain
}

// NewNameReader creates a name-window reader
func NewNameReader(ocr OCR, table *NameTable, languages []string, fallback *Chain) *NameReader {
	if len(languages) == 0 {
		languages = DefaultNameLanguages
	}
	return &NameReader{ocr: ocr, table: table, languages: languages, fallback: fallback}
}

// Read identifies one name-window crop
func (r *NameReader) Read(ctx context.Context, crop image.Image) (Identity, error) {
	var candidates []string
	var failures []error
	for _, lang := range r.languages {
		column, ok := TesseractColumns[lang]
		if !ok {
			failures = append(failures, fmt.Errorf("%w: %q", ErrUnknownLanguage, lang))
			continue
		}
		text, err := r.ocr.Text(ctx, crop, lang)
		if err != nil {
			failures = append(failures, fmt.Errorf("ocr %s: %w", lang, err))
			continue
		}
		if Normalize(text) == "" {
			continue
		}
		name, dist, err := r.table.Match(text, column)
		if err != nil {
			failures = append(failures, err)
			continue
		}
		if dist < NameMaxDistance {
			candidates = append(candidates, name)
		}
	}

	if name, ok := Majority(candidates); ok {
		return Identity{Name: name, Source: "ocr", Failures: failures}, nil
	}
	if r.fallback == nil {
		return Identity{Name: "", Unknown: true, Failures: failures}, nil
	}
	id, err := r.fallback.Identify(ctx, crop)
	id.Failures = append(failures, id.Failures...)
	return id, err
}

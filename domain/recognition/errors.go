package recognition

import "errors"

var (
	// ErrNoRankDigits is returned when OCR text holds no digits
	ErrNoRankDigits = errors.New("no rank digits in text")

	// ErrSelectionIncomplete is returned when fewer than three ordinals were matched
	ErrSelectionIncomplete = errors.New("team selection order incomplete")

	// ErrUnknownLanguage is returned for a language without ordinal or table data
	ErrUnknownLanguage = errors.New("unsupported language")
)

package recognition

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var nonDigit = regexp.MustCompile(`\D`)

// ParseRank extracts the ladder rank from OCR text such as "No. 1,234"
func ParseRank(text string) (int, error) {
	if i := strings.Index(text, "No."); i >= 0 {
		text = text[i+len("No."):]
	}
	digits := nonDigit.ReplaceAllString(text, "")
	if digits == "" {
		return 0, fmt.Errorf("%w: %q", ErrNoRankDigits, text)
	}
	rank, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("invalid rank %q: %w", digits, err)
	}
	return rank, nil
}

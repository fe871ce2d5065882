package recognition

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/unicode/norm"
)

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// Normalize prepares OCR output for comparison: NFC, no whitespace
func Normalize(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), "")
}

// CollapseSpace applies NFC and squeezes whitespace runs into single spaces
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

// StripNonWord removes everything but letters and digits
func StripNonWord(s string) string {
	return nonWord.ReplaceAllString(norm.NFC.String(s), "")
}

// NormalizedDistance is the rune edit distance divided by the longer length.
// Two empty strings are treated as a complete mismatch.
func NormalizedDistance(a, b string) float64 {
	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}
	if longest == 0 {
		return 1
	}
	return float64(levenshtein.ComputeDistance(a, b)) / float64(longest)
}

package recognition

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// TesseractColumns maps OCR language models to name table columns
var TesseractColumns = map[string]string{
	"chi_sim":  "zh",
	"chi_tra":  "zh_HK",
	"eng":      "en",
	"fra":      "fr",
	"ita":      "it",
	"jpn":      "ja",
	"kor":      "ko",
	"spa":      "es",
	"deu_frak": "de",
}

// DefaultNameLanguages lists the OCR models tried on a name window
var DefaultNameLanguages = []string{"chi_sim", "chi_tra", "eng", "fra", "ita", "jpn", "kor", "spa", "deu_frak"}

// NameTable holds pokemon names across languages. Every row is one species;
// the canonical column is what the pipeline stores.
type NameTable struct {
	canonical string
	columns   map[string]int
	rows      [][]string

	// normalized holds the rows prepared for matching
	normalized [][]string
}

// LoadNameTable reads the CSV name table from disk
func LoadNameTable(path, canonical string) (*NameTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open name table: %w", err)
	}
	defer f.Close()
	return ParseNameTable(f, canonical)
}

// ParseNameTable reads a CSV whose header names the language columns
// (ja,en,fr,de,es,it,ko,zh_HK,zh)
func ParseNameTable(r io.Reader, canonical string) (*NameTable, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse name table: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("name table has no rows")
	}

	columns := make(map[string]int, len(records[0]))
	for i, h := range records[0] {
		columns[h] = i
	}
	if _, ok := columns[canonical]; !ok {
		return nil, fmt.Errorf("%w: name table has no %q column", ErrUnknownLanguage, canonical)
	}

	rows := records[1:]
	normalized := make([][]string, len(rows))
	for i, row := range rows {
		normalized[i] = make([]string, len(row))
		for j, cell := range row {
			normalized[i][j] = Normalize(cell)
		}
	}
	return &NameTable{canonical: canonical, columns: columns, rows: rows, normalized: normalized}, nil
}

// Len returns the number of species
func (t *NameTable) Len() int {
	return len(t.rows)
}

// Match finds the closest name in one language column and returns its
// canonical form with the normalized distance
func (t *NameTable) Match(text, column string) (string, float64, error) {
	col, ok := t.columns[column]
	if !ok {
		return "", 1, fmt.Errorf("%w: %q", ErrUnknownLanguage, column)
	}
	text = Normalize(text)

	best, bestDist := "", 1.0
	canon := t.columns[t.canonical]
	for i, row := range t.normalized {
		if col >= len(row) || canon >= len(row) || row[col] == "" {
			continue
		}
		d := NormalizedDistance(text, row[col])
		if d < bestDist || best == "" {
			best, bestDist = t.rows[i][canon], d
		}
		if d == 0 {
			break
		}
	}
	return best, bestDist, nil
}

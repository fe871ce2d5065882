package recognition

import "fmt"

// Ordinals are the three on-screen selection markers of a language
type Ordinals [3]string

// DefaultOrdinals per UI language
var DefaultOrdinals = map[string]Ordinals{
	"en": {"First", "Second", "Third"},
	"ja": {"1番目", "2番目", "3番目"},
}

// Selection acceptance thresholds
const (
	SelectionMaxDistance = 0.5
	SelectionMinScore    = 0.6
)

// SlotReading is what was read from one of the six lineup slots: the OCR text
// of its numeral window and the template score against each ordinal marker
type SlotReading struct {
	Text   string
	Scores [3]float64
}

// SelectionOrder decides which lineup slot holds each ordinal. A slot is a
// candidate for ordinal k when its text matches exactly, or when it is close
// (distance <= 0.5) and the marker template scored above 0.6. Among candidates
// the highest template score wins and a slot is never used twice.
func SelectionOrder(readings []SlotReading, ordinals Ordinals) ([]int, error) {
	taken := make(map[int]bool)
	order := make([]int, 0, len(ordinals))

	for k, ordinal := range ordinals {
		best, bestScore := -1, -1.0
		for slot, r := range readings {
			if taken[slot] {
				continue
			}
			dist := NormalizedDistance(StripNonWord(r.Text), ordinal)
			score := r.Scores[k]
			if dist != 0 && !(dist <= SelectionMaxDistance && score > SelectionMinScore) {
				continue
			}
			if score > bestScore {
				best, bestScore = slot, score
			}
		}
		if best < 0 {
			return nil, fmt.Errorf("%w: no slot for %q", ErrSelectionIncomplete, ordinal)
		}
		taken[best] = true
		order = append(order, best)
	}
	return order, nil
}

package recognition

import "poke-battle-logger/domain/battle"

// Majority returns the most frequent value. Ties go to the value seen first.
func Majority[T comparable](values []T) (T, bool) {
	var zero T
	if len(values) == 0 {
		return zero, false
	}

	counts := make(map[T]int, len(values))
	best, bestCount := zero, 0
	for _, v := range values {
		counts[v]++
	}
	for _, v := range values {
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return best, true
}

// ClassifyOutcome picks the result banner from template scores. Win is
// checked first.
func ClassifyOutcome(winScore, loseScore, threshold float64) battle.Outcome {
	switch {
	case winScore >= threshold:
		return battle.Win
	case loseScore >= threshold:
		return battle.Lose
	default:
		return battle.Unknown
	}
}

// VoteOutcome discards unknown samples and returns the majority of the rest
func VoteOutcome(samples []battle.Outcome) battle.Outcome {
	var known []battle.Outcome
	for _, s := range samples {
		if s != battle.Unknown {
			known = append(known, s)
		}
	}
	if winner, ok := Majority(known); ok {
		return winner
	}
	return battle.Unknown
}

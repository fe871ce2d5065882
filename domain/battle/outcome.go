package battle

import (
	"fmt"
	"sort"
)

// ReconcileOutcomes merges direct win/lose readings with rank-delta implied
// outcomes and returns one outcome per interval ID.
//
// Each implied outcome overwrites the direct reading nearest to it by frame
// distance (the earlier frame on a tie). When there are no direct readings at
// all, implied outcomes are recorded at their own frame. An interval takes the
// latest reconciled reading in (Start, End]. Any interval left without a
// definite outcome fails the whole reconciliation.
func ReconcileOutcomes(direct, implied []OutcomeObservation, intervals []Interval) (map[int]Outcome, error) {
	reconciled := make(map[int]Outcome, len(direct)+len(implied))
	var directFrames []int
	for _, obs := range direct {
		if _, seen := reconciled[obs.Frame]; !seen {
			directFrames = append(directFrames, obs.Frame)
		}
		reconciled[obs.Frame] = obs.Outcome
	}
	sort.Ints(directFrames)

	for _, obs := range implied {
		if len(directFrames) == 0 {
			reconciled[obs.Frame] = obs.Outcome
			continue
		}
		reconciled[nearest(directFrames, obs.Frame)] = obs.Outcome
	}

	frames := make([]int, 0, len(reconciled))
	for f := range reconciled {
		frames = append(frames, f)
	}
	sort.Ints(frames)

	result := make(map[int]Outcome, len(intervals))
	for _, iv := range intervals {
		outcome := Unknown
		for _, f := range frames {
			if f > iv.Start && f <= iv.End {
				outcome = reconciled[f]
			}
		}
		if outcome != Win && outcome != Lose {
			return nil, fmt.Errorf("%w: battle %d (frames %d-%d)", ErrUnknownOutcome, iv.ID, iv.Start, iv.End)
		}
		result[iv.ID] = outcome
	}
	return result, nil
}

// nearest returns the element of sorted closest to target, preferring the earlier one
func nearest(sorted []int, target int) int {
	i := sort.SearchInts(sorted, target)
	if i == 0 {
		return sorted[0]
	}
	if i == len(sorted) {
		return sorted[len(sorted)-1]
	}
	before, after := sorted[i-1], sorted[i]
	if after-target < target-before {
		return after
	}
	return before
}

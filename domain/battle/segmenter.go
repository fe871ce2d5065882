package battle

import "poke-battle-logger/domain/detection"

// Segment pairs each standing-by run with its ranking observation.
//
// When there are as many standing-by runs as rank observations the session
// began at team selection, so run i pairs with ranks[i]. Otherwise a rank was
// already on screen before the first battle and run i pairs with ranks[i+1].
// Inverted, unpaired or overlapping candidates are dropped.
func Segment(standingBy []detection.Run, ranks RankObservations) []Interval {
	offset := 1
	if len(standingBy) == len(ranks) {
		offset = 0
	}

	var intervals []Interval
	for i, run := range standingBy {
		j := i + offset
		if j >= len(ranks) {
			break
		}
		start := run.Last()
		end := ranks[j].Frame
		if start >= end {
			continue
		}
		if n := len(intervals); n > 0 && start < intervals[n-1].End {
			continue
		}
		intervals = append(intervals, Interval{ID: len(intervals) + 1, Start: start, End: end})
	}
	return intervals
}

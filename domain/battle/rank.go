package battle

// RankObservation is a ladder rank read at a frame. Lower is better.
type RankObservation struct {
	Frame int
	Rank  int
}

// RankObservations is ordered by frame
type RankObservations []RankObservation

// Dedup collapses consecutive equal ranks, keeping the first occurrence of
// each run of identical values
func (r RankObservations) Dedup() RankObservations {
	var out RankObservations
	for _, obs := range r {
		if len(out) > 0 && out[len(out)-1].Rank == obs.Rank {
			continue
		}
		out = append(out, obs)
	}
	return out
}

// Frames returns the observation frames in order
func (r RankObservations) Frames() []int {
	frames := make([]int, len(r))
	for i, obs := range r {
		frames[i] = obs.Frame
	}
	return frames
}

// After returns the first observation strictly after frame
func (r RankObservations) After(frame int) (RankObservation, bool) {
	for _, obs := range r {
		if obs.Frame > frame {
			return obs, true
		}
	}
	return RankObservation{}, false
}

// ImpliedOutcomes derives an outcome at every observation after the first:
// the rank number dropping means the battle was won
func (r RankObservations) ImpliedOutcomes() []OutcomeObservation {
	var out []OutcomeObservation
	for i := 1; i < len(r); i++ {
		outcome := Lose
		if r[i-1].Rank > r[i].Rank {
			outcome = Win
		}
		out = append(out, OutcomeObservation{Frame: r[i].Frame, Outcome: outcome})
	}
	return out
}

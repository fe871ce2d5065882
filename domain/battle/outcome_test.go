package battle

import (
	"errors"
	"testing"
)

func TestReconcileOutcomes(t *testing.T) {
	intervals := []Interval{{ID: 1, Start: 1000, End: 1500}, {ID: 2, Start: 3000, End: 3500}}

	tests := []struct {
		name    string
		direct  []OutcomeObservation
		implied []OutcomeObservation
		want    map[int]Outcome
		wantErr error
	}{
		{
			name:   "direct readings alone",
			direct: []OutcomeObservation{{Frame: 1400, Outcome: Win}, {Frame: 3400, Outcome: Lose}},
			want:   map[int]Outcome{1: Win, 2: Lose},
		},
		{
			name:    "rank delta overrides the nearest direct reading",
			direct:  []OutcomeObservation{{Frame: 1400, Outcome: Lose}, {Frame: 3400, Outcome: Unknown}},
			implied: []OutcomeObservation{{Frame: 1500, Outcome: Win}, {Frame: 3500, Outcome: Win}},
			want:    map[int]Outcome{1: Win, 2: Win},
		},
		{
			name:    "implied readings stand alone when nothing was detected",
			implied: []OutcomeObservation{{Frame: 1500, Outcome: Lose}, {Frame: 3500, Outcome: Win}},
			want:    map[int]Outcome{1: Lose, 2: Win},
		},
		{
			name:    "unresolved interval aborts",
			direct:  []OutcomeObservation{{Frame: 1400, Outcome: Win}, {Frame: 3400, Outcome: Unknown}},
			wantErr: ErrUnknownOutcome,
		},
		{
			name:    "interval without any reading aborts",
			direct:  []OutcomeObservation{{Frame: 1400, Outcome: Win}},
			wantErr: ErrUnknownOutcome,
		},
		{
			name:   "readings outside intervals are trimmed",
			direct: []OutcomeObservation{{Frame: 500, Outcome: Lose}, {Frame: 1400, Outcome: Win}, {Frame: 3400, Outcome: Win}},
			want:   map[int]Outcome{1: Win, 2: Win},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReconcileOutcomes(tt.direct, tt.implied, intervals)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for id, want := range tt.want {
				if got[id] != want {
					t.Errorf("interval %d outcome = %s, want %s", id, got[id], want)
				}
			}
		})
	}
}

func TestNearest(t *testing.T) {
	sorted := []int{100, 200, 400}
	tests := []struct {
		target, want int
	}{
		{0, 100},
		{150, 100},
		{151, 200},
		{300, 200},
		{1000, 400},
		{200, 200},
	}
	for _, tt := range tests {
		if got := nearest(sorted, tt.target); got != tt.want {
			t.Errorf("nearest(%d) = %d, want %d", tt.target, got, tt.want)
		}
	}
}

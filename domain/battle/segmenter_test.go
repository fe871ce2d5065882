package battle

import (
	"reflect"
	"testing"

	"poke-battle-logger/domain/detection"
)

func TestSegment(t *testing.T) {
	tests := []struct {
		name       string
		standingBy []detection.Run
		ranks      RankObservations
		want       []Interval
	}{
		{
			name:       "session starts at team selection",
			standingBy: []detection.Run{{990, 1000}, {2990, 3000}},
			ranks:      RankObservations{{Frame: 1500, Rank: 50}, {Frame: 3500, Rank: 48}},
			want: []Interval{
				{ID: 1, Start: 1000, End: 1500},
				{ID: 2, Start: 3000, End: 3500},
			},
		},
		{
			name:       "session starts with a rank on screen",
			standingBy: []detection.Run{{990, 1000}, {2990, 3000}},
			ranks:      RankObservations{{Frame: 100, Rank: 51}, {Frame: 1500, Rank: 50}, {Frame: 3500, Rank: 48}},
			want: []Interval{
				{ID: 1, Start: 1000, End: 1500},
				{ID: 2, Start: 3000, End: 3500},
			},
		},
		{
			name:       "inverted pair is dropped",
			standingBy: []detection.Run{{1000}, {4000}},
			ranks:      RankObservations{{Frame: 1500, Rank: 50}, {Frame: 3500, Rank: 48}},
			want:       []Interval{{ID: 1, Start: 1000, End: 1500}},
		},
		{
			name:       "standing-by without a following rank is dropped",
			standingBy: []detection.Run{{1000}, {3000}, {5000}},
			ranks:      RankObservations{{Frame: 100, Rank: 51}, {Frame: 1500, Rank: 50}},
			want:       []Interval{{ID: 1, Start: 1000, End: 1500}},
		},
		{
			name:       "no standing-by runs",
			standingBy: nil,
			ranks:      RankObservations{{Frame: 100, Rank: 51}},
			want:       nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Segment(tt.standingBy, tt.ranks)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Segment() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSegment_NeverInverted(t *testing.T) {
	standingBy := []detection.Run{{50}, {700}, {300}, {2000}, {1900}}
	ranks := RankObservations{{Frame: 10, Rank: 9}, {Frame: 400, Rank: 8}, {Frame: 600, Rank: 7}, {Frame: 1800, Rank: 6}, {Frame: 2100, Rank: 5}, {Frame: 2500, Rank: 4}}

	for _, iv := range Segment(standingBy, ranks) {
		if iv.Start >= iv.End {
			t.Errorf("interval %+v has start >= end", iv)
		}
	}
}

package detection

import (
	"math/rand"
	"reflect"
	"sort"
	"testing"
)

func TestCompress(t *testing.T) {
	tests := []struct {
		name        string
		frames      []int
		threshold   int
		ignoreShort bool
		want        []Run
	}{
		{
			name:      "empty input",
			frames:    nil,
			threshold: 100,
			want:      nil,
		},
		{
			name:      "single frame is flushed",
			frames:    []int{42},
			threshold: 100,
			want:      []Run{{42}},
		},
		{
			name:      "gap equal to threshold stays in run",
			frames:    []int{0, 100, 200},
			threshold: 100,
			want:      []Run{{0, 100, 200}},
		},
		{
			name:      "gap above threshold splits",
			frames:    []int{0, 1, 2, 103, 104, 400},
			threshold: 100,
			want:      []Run{{0, 1, 2}, {103, 104}, {400}},
		},
		{
			name:        "ignore short drops single frame runs",
			frames:      []int{0, 1, 2, 300, 600, 601},
			threshold:   100,
			ignoreShort: true,
			want:        []Run{{0, 1, 2}, {600, 601}},
		},
		{
			name:        "ignore short drops a trailing single frame",
			frames:      []int{0, 1, 500},
			threshold:   100,
			ignoreShort: true,
			want:        []Run{{0, 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compress(tt.frames, tt.threshold, tt.ignoreShort)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Compress() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompressMessages(t *testing.T) {
	frames := []int{10, 11, 12, 20, 30, 31, 40}
	got := CompressMessages(frames, DefaultMessageThreshold)
	want := []Run{{10, 11, 12}, {30, 31}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CompressMessages() = %v, want %v", got, want)
	}
}

func TestCompress_PartitionProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for iter := 0; iter < 200; iter++ {
		frames := randomFrames(rng)
		threshold := 1 + rng.Intn(50)

		runs := Compress(frames, threshold, false)

		var flat []int
		for k, r := range runs {
			if len(r) == 0 {
				t.Fatalf("iteration %d: empty run at %d", iter, k)
			}
			for i := 1; i < len(r); i++ {
				if r[i]-r[i-1] > threshold {
					t.Fatalf("iteration %d: gap %d inside run exceeds %d", iter, r[i]-r[i-1], threshold)
				}
			}
			if k > 0 && r[0]-runs[k-1].Last() <= threshold {
				t.Fatalf("iteration %d: runs %d and %d should have been merged", iter, k-1, k)
			}
			flat = append(flat, r...)
		}

		if len(frames) == 0 && len(flat) == 0 {
			continue
		}
		if !reflect.DeepEqual(flat, frames) {
			t.Fatalf("iteration %d: concatenated runs %v differ from input %v", iter, flat, frames)
		}
	}
}

func TestCompress_IgnoreShortOnlyDropsSingletons(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	for iter := 0; iter < 200; iter++ {
		frames := randomFrames(rng)
		all := Compress(frames, 20, false)
		kept := Compress(frames, 20, true)

		var want []Run
		for _, r := range all {
			if len(r) > 1 {
				want = append(want, r)
			}
		}
		if !reflect.DeepEqual(kept, want) {
			t.Fatalf("iteration %d: ignoreShort = %v, want %v", iter, kept, want)
		}
	}
}

func TestRunRepresentative(t *testing.T) {
	r := Run{10, 11, 12, 13, 14, 15}

	if r.Last() != 15 {
		t.Errorf("Last() = %d, want 15", r.Last())
	}
	if got := r.NthFromLast(5); got != 11 {
		t.Errorf("NthFromLast(5) = %d, want 11", got)
	}
	if got := r.NthFromLast(1); got != 15 {
		t.Errorf("NthFromLast(1) = %d, want 15", got)
	}
	if got := (Run{3, 4}).NthFromLast(5); got != 3 {
		t.Errorf("short run NthFromLast(5) = %d, want 3", got)
	}
}

func randomFrames(rng *rand.Rand) []int {
	n := rng.Intn(40)
	seen := make(map[int]bool)
	var frames []int
	for len(frames) < n {
		f := rng.Intn(1000)
		if !seen[f] {
			seen[f] = true
			frames = append(frames, f)
		}
	}
	sort.Ints(frames)
	return frames
}

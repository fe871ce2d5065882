package detection

// Default gap thresholds in frames
const (
	DefaultGapThreshold     = 100
	DefaultMessageThreshold = 3
)

// Run is a maximal group of ascending frame indices where neighbours differ
// by no more than the gap threshold
type Run []int

// Last returns the final frame of the run
func (r Run) Last() int {
	return r[len(r)-1]
}

// NthFromLast returns the n-th frame counting back from the end (1 is the last).
// Runs shorter than n yield their first frame.
func (r Run) NthFromLast(n int) int {
	if n < 1 {
		n = 1
	}
	if n > len(r) {
		return r[0]
	}
	return r[len(r)-n]
}

// Compress partitions ascending frame indices into runs. With ignoreShort set,
// single-frame runs are dropped.
func Compress(frames []int, threshold int, ignoreShort bool) []Run {
	if len(frames) == 0 {
		return nil
	}

	var runs []Run
	current := Run{frames[0]}
	flush := func() {
		if ignoreShort && len(current) == 1 {
			return
		}
		runs = append(runs, current)
	}

	for _, f := range frames[1:] {
		if f-current.Last() <= threshold {
			current = append(current, f)
			continue
		}
		flush()
		current = Run{f}
	}
	flush()

	return runs
}

// CompressMessages is the message-window variant: only runs longer than one
// frame survive, since isolated OCR hits are noise
func CompressMessages(frames []int, threshold int) []Run {
	var kept []Run
	for _, r := range Compress(frames, threshold, false) {
		if len(r) > 1 {
			kept = append(kept, r)
		}
	}
	return kept
}

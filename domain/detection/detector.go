package detection

import (
	"sort"

	"poke-battle-logger/domain/video"
)

// Detector names one of the UI states a frame can be classified into
type Detector string

const (
	// StandingBy is the pre-battle lineup reveal screen
	StandingBy Detector = "standing_by"

	// Level50 is the in-battle HUD showing both active pokemon
	Level50 Detector = "level_50"

	// FirstRanking is the rank display shown before the first battle of a session
	FirstRanking Detector = "first_ranking"

	// Ranking is the rank display shown after each battle
	Ranking Detector = "ranking"

	// WinOrLost is the result banner at the end of a battle
	WinOrLost Detector = "win_or_lost"

	// SelectDone confirms the player's three pokemon selection order
	SelectDone Detector = "select_done"

	// Message is an in-battle text banner
	Message Detector = "message"
)

// All lists every detector in evaluation order
var All = []Detector{StandingBy, Level50, FirstRanking, Ranking, WinOrLost, SelectDone, Message}

// Classifier decides which detectors fire on a single frame.
// Implementations must be pure functions of the frame.
type Classifier interface {
	Classify(frame video.Frame) ([]Detector, error)
}

// Analyzer exposes the raw confidence behind every detector for debugging
type Analyzer interface {
	Analyze(frame video.Frame) (FrameAnalysis, error)
}

// Hit records that a detector fired on a frame
type Hit struct {
	Frame    int
	Detector Detector
}

// FrameAnalysis contains the per-detector result of analyzing a single frame
type FrameAnalysis struct {
	// Frame is the analyzed frame index
	Frame int

	// Scores holds the template confidence per detector (0.0-1.0)
	Scores map[Detector]float64

	// Fired lists the detectors whose gates all passed
	Fired []Detector
}

// Group splits a tagged hit list into ascending frame lists per detector
func Group(hits []Hit) map[Detector][]int {
	grouped := make(map[Detector][]int)
	for _, h := range hits {
		grouped[h.Detector] = append(grouped[h.Detector], h.Frame)
	}
	for _, frames := range grouped {
		sort.Ints(frames)
	}
	return grouped
}

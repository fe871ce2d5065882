package battle

import (
	"regexp"
	"sort"
)

// FaintedEvent records which side lost a pokemon on a given turn
type FaintedEvent struct {
	BattleID string
	Turn     int
	You      string
	Opponent string
	// Side owns the pokemon that fainted
	Side Side
}

var (
	opponentFaintedPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^The opposing .+ fainted!$`),
		regexp.MustCompile(`^相手の.+は倒れた[!！]$`),
	}
	faintedPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^.+ fainted!$`),
		regexp.MustCompile(`^.+は倒れた[!！]$`),
	}
)

// faintedSide classifies a message; ok is false for unrelated messages
func faintedSide(text string) (Side, bool) {
	for _, re := range opponentFaintedPatterns {
		if re.MatchString(text) {
			return Opponent, true
		}
	}
	for _, re := range faintedPatterns {
		if re.MatchString(text) {
			return You, true
		}
	}
	return "", false
}

// DeriveFainted joins faint messages to the latest turn at or before them in
// the same battle. Messages before a battle's first turn are ignored and
// repeated (turn, side) pairs collapse into one event.
func DeriveFainted(turns []TurnLog, messages []MessageLog) []FaintedEvent {
	byBattle := make(map[string][]TurnLog)
	for _, t := range turns {
		byBattle[t.BattleID] = append(byBattle[t.BattleID], t)
	}
	for _, ts := range byBattle {
		sort.Slice(ts, func(i, j int) bool { return ts[i].Frame < ts[j].Frame })
	}

	type key struct {
		battleID string
		turn     int
		side     Side
	}
	seen := make(map[key]bool)

	var events []FaintedEvent
	for _, m := range messages {
		side, ok := faintedSide(m.Text)
		if !ok {
			continue
		}
		ts := byBattle[m.BattleID]
		i := sort.Search(len(ts), func(i int) bool { return ts[i].Frame > m.Frame }) - 1
		if i < 0 {
			continue
		}
		t := ts[i]
		k := key{battleID: m.BattleID, turn: t.Turn, side: side}
		if seen[k] {
			continue
		}
		seen[k] = true
		events = append(events, FaintedEvent{
			BattleID: m.BattleID,
			Turn:     t.Turn,
			You:      t.You,
			Opponent: t.Opponent,
			Side:     side,
		})
	}
	return events
}

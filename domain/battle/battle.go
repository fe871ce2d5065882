package battle

import "time"

// Outcome is the result of a single battle from the recording player's side
type Outcome string

const (
	Win     Outcome = "win"
	Lose    Outcome = "lose"
	Unknown Outcome = "unknown"
)

// Side distinguishes the two teams in a battle
type Side string

const (
	You      Side = "you"
	Opponent Side = "opponent"
)

// Unseen pads the opponent selection when fewer than three pokemon appeared
const Unseen = "Unseen"

// UnknownPokemon is the label assigned when every identification strategy fails
const UnknownPokemon = "unknown_pokemon"

// Interval is one battle's frame boundaries. Start < End always holds.
type Interval struct {
	ID    int
	Start int
	End   int
}

// Contains reports whether frame lies strictly inside the interval
func (iv Interval) Contains(frame int) bool {
	return iv.Start < frame && frame < iv.End
}

// Lineup is the pre-battle team reveal, keyed by its standing-by frame
type Lineup struct {
	Frame    int
	You      []string
	Opponent []string
}

// SelectionOrder is the player's confirmed pick order, keyed by its select-done frame.
// Slots are 0-based indices into Lineup.You.
type SelectionOrder struct {
	Frame int
	Slots []int
}

// Turn is one in-battle HUD observation
type Turn struct {
	Frame    int
	You      string
	Opponent string
}

// Message is one in-battle text banner
type Message struct {
	Frame int
	Text  string
}

// OutcomeObservation is a win/lose reading at a frame
type OutcomeObservation struct {
	Frame   int
	Outcome Outcome
}

// Record is the final summary row for one battle
type Record struct {
	BattleID          string
	TrainerID         int64
	VideoID           string
	CreatedAt         time.Time
	Outcome           Outcome
	NextRank          int
	YourTeam          []string
	OpponentTeam      []string
	YourSelection     []string
	OpponentSelection []string
	VideoURL          string
	StartFrame        int
	EndFrame          int
}

// TurnLog is a turn attached to its battle, numbered from 1
type TurnLog struct {
	BattleID string
	Turn     int
	Frame    int
	You      string
	Opponent string
}

// MessageLog is a message attached to its battle
type MessageLog struct {
	BattleID string
	Frame    int
	Text     string
}

// TeamMember is one pre-battle lineup slot attached to its battle
type TeamMember struct {
	BattleID string
	Side     Side
	Name     string
}

// Build is everything reconstructed from one video, staged in memory until it
// can be persisted as a whole
type Build struct {
	Records  []Record
	Teams    []TeamMember
	Turns    []TurnLog
	Messages []MessageLog
	Fainted  []FaintedEvent
}

// Summary counts battles and outcomes in a build
func (b *Build) Summary() (total, wins, losses int) {
	for _, r := range b.Records {
		total++
		switch r.Outcome {
		case Win:
			wins++
		case Lose:
			losses++
		}
	}
	return total, wins, losses
}

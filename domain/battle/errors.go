package battle

import "errors"

var (
	// ErrUnknownPokemon aborts a run when any pokemon could not be identified
	ErrUnknownPokemon = errors.New("unknown pokemon detected; manual labeling required")

	// ErrUnknownOutcome aborts a run when a battle outcome stays unresolved
	ErrUnknownOutcome = errors.New("battle outcome could not be determined")

	// ErrNoBattles is returned when a video yields no complete battle
	ErrNoBattles = errors.New("no battles found in video")
)

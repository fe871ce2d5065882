package battle

import (
	"context"
	"fmt"
	"sort"
	"time"

	"poke-battle-logger/domain/video"

	"github.com/google/uuid"
)

// BattleNamespace seeds the name-based battle IDs
var BattleNamespace = uuid.MustParse("3d0c6f4e-8f4b-4a57-9b1e-5b7f2a9c1e60")

// Signals are the extracted readings of one video, each keyed by the frame it
// was read from
type Signals struct {
	Intervals  []Interval
	Ranks      RankObservations
	Lineups    []Lineup
	Selections []SelectionOrder
	Turns      []Turn
	Messages   []Message
	Outcomes   []OutcomeObservation
}

// Skipped explains why an interval produced no record
type Skipped struct {
	IntervalID int
	Reason     string
}

// Reconciler turns the signals of exactly one video into battle records.
// It is discarded after a single Build.
type Reconciler struct {
	videoID   string
	trainerID int64
	lookup    video.MetadataLookup
	location  *time.Location
	species   []string

	meta    *video.Metadata
	metaErr error
}

// ReconcilerOption is a functional option for configuring Reconciler
type ReconcilerOption func(*Reconciler)

// WithLocation sets the time zone created_at is expressed in
func WithLocation(loc *time.Location) ReconcilerOption {
	return func(r *Reconciler) {
		r.location = loc
	}
}

// WithFormChangeSpecies replaces the form-change species list
func WithFormChangeSpecies(species []string) ReconcilerOption {
	return func(r *Reconciler) {
		r.species = species
	}
}

// NewReconciler creates a reconciler for one video
func NewReconciler(videoID string, trainerID int64, lookup video.MetadataLookup, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		videoID:   videoID,
		trainerID: trainerID,
		lookup:    lookup,
		location:  time.UTC,
		species:   DefaultFormChangeSpecies,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Build assembles every battle record. It fails without a partial result when
// a pokemon is unknown or an outcome cannot be resolved; battles missing their
// lineup, selection order or start time are skipped and reported.
func (r *Reconciler) Build(ctx context.Context, s Signals) (*Build, []Skipped, error) {
	if err := checkKnown(s); err != nil {
		return nil, nil, err
	}

	outcomes, err := ReconcileOutcomes(s.Outcomes, s.Ranks.ImpliedOutcomes(), s.Intervals)
	if err != nil {
		return nil, nil, err
	}

	lineups := make(map[int]Lineup, len(s.Lineups))
	for _, l := range s.Lineups {
		lineups[l.Frame] = l
	}

	build := &Build{}
	var skipped []Skipped
	prevEnd := -1

	for _, iv := range s.Intervals {
		windowStart := prevEnd
		prevEnd = iv.End

		lineup, ok := lineups[iv.Start]
		if !ok {
			skipped = append(skipped, Skipped{iv.ID, "no lineup at standing-by frame"})
			continue
		}
		selection, ok := selectionFor(s.Selections, windowStart, iv.End)
		if !ok {
			skipped = append(skipped, Skipped{iv.ID, "no selection order before battle end"})
			continue
		}
		yourSelection, err := selectedNames(lineup.You, selection.Slots)
		if err != nil {
			skipped = append(skipped, Skipped{iv.ID, err.Error()})
			continue
		}
		next, ok := s.Ranks.After(iv.Start)
		if !ok {
			skipped = append(skipped, Skipped{iv.ID, "no rank observation after battle start"})
			continue
		}
		meta, err := r.metadata(ctx)
		if err != nil {
			skipped = append(skipped, Skipped{iv.ID, fmt.Sprintf("start time unavailable: %v", err)})
			continue
		}

		createdAt := meta.StartTime(iv.Start).In(r.location)
		battleID := BattleID(createdAt)

		yourTeam := labelNames(lineup.You)
		opponentTeam := labelNames(lineup.Opponent)
		yourForms := NewFormResolver(r.species, yourTeam)
		opponentForms := NewFormResolver(r.species, opponentTeam)

		var turns []TurnLog
		var opponentSeen []string
		for _, t := range turnsWithin(s.Turns, iv) {
			you := yourForms.Resolve(LabelName(t.You))
			opp := opponentForms.Resolve(LabelName(t.Opponent))
			turns = append(turns, TurnLog{
				BattleID: battleID,
				Turn:     len(turns) + 1,
				Frame:    t.Frame,
				You:      you,
				Opponent: opp,
			})
			if len(opponentSeen) < 3 && !contains(opponentSeen, opp) {
				opponentSeen = append(opponentSeen, opp)
			}
		}
		for len(opponentSeen) < 3 {
			opponentSeen = append(opponentSeen, Unseen)
		}

		var messages []MessageLog
		for _, m := range s.Messages {
			if iv.Contains(m.Frame) {
				messages = append(messages, MessageLog{BattleID: battleID, Frame: m.Frame, Text: m.Text})
			}
		}

		build.Records = append(build.Records, Record{
			BattleID:          battleID,
			TrainerID:         r.trainerID,
			VideoID:           r.videoID,
			CreatedAt:         createdAt,
			Outcome:           outcomes[iv.ID],
			NextRank:          next.Rank,
			YourTeam:          yourTeam,
			OpponentTeam:      opponentTeam,
			YourSelection:     yourSelection,
			OpponentSelection: opponentSeen,
			VideoURL:          video.DeepLink(r.videoID, iv.Start),
			StartFrame:        iv.Start,
			EndFrame:          iv.End,
		})
		for _, name := range yourTeam {
			build.Teams = append(build.Teams, TeamMember{BattleID: battleID, Side: You, Name: name})
		}
		for _, name := range opponentTeam {
			build.Teams = append(build.Teams, TeamMember{BattleID: battleID, Side: Opponent, Name: name})
		}
		build.Turns = append(build.Turns, turns...)
		build.Messages = append(build.Messages, messages...)
	}

	build.Fainted = DeriveFainted(build.Turns, build.Messages)
	return build, skipped, nil
}

// BattleID derives the deterministic identifier of a battle from its start time
func BattleID(start time.Time) string {
	return uuid.NewSHA1(BattleNamespace, []byte(start.UTC().Format("2006-01-02 15:04:05"))).String()
}

func (r *Reconciler) metadata(ctx context.Context) (video.Metadata, error) {
	if r.meta == nil && r.metaErr == nil {
		if r.lookup == nil {
			r.metaErr = fmt.Errorf("no metadata lookup configured")
		} else {
			m, err := r.lookup.Lookup(ctx, r.videoID)
			if err != nil {
				r.metaErr = err
			} else {
				r.meta = &m
			}
		}
	}
	if r.metaErr != nil {
		return video.Metadata{}, r.metaErr
	}
	return *r.meta, nil
}

func checkKnown(s Signals) error {
	for _, l := range s.Lineups {
		for _, name := range append(append([]string{}, l.You...), l.Opponent...) {
			if name == UnknownPokemon {
				return fmt.Errorf("%w: lineup at frame %d", ErrUnknownPokemon, l.Frame)
			}
		}
	}
	for _, t := range s.Turns {
		if t.You == UnknownPokemon || t.Opponent == UnknownPokemon {
			return fmt.Errorf("%w: turn at frame %d", ErrUnknownPokemon, t.Frame)
		}
	}
	return nil
}

// selectionFor returns the latest selection order read in (after, before)
func selectionFor(selections []SelectionOrder, after, before int) (SelectionOrder, bool) {
	var found SelectionOrder
	ok := false
	for _, sel := range selections {
		if sel.Frame > after && sel.Frame < before && (!ok || sel.Frame > found.Frame) {
			found = sel
			ok = true
		}
	}
	return found, ok
}

func selectedNames(lineup []string, slots []int) ([]string, error) {
	names := make([]string, 0, len(slots))
	for _, slot := range slots {
		if slot < 0 || slot >= len(lineup) {
			return nil, fmt.Errorf("selection slot %d outside lineup of %d", slot, len(lineup))
		}
		names = append(names, LabelName(lineup[slot]))
	}
	return names, nil
}

func turnsWithin(turns []Turn, iv Interval) []Turn {
	var within []Turn
	for _, t := range turns {
		if iv.Contains(t.Frame) {
			within = append(within, t)
		}
	}
	sort.SliceStable(within, func(i, j int) bool { return within[i].Frame < within[j].Frame })
	return within
}

func labelNames(labels []string) []string {
	names := make([]string, len(labels))
	for i, l := range labels {
		names[i] = LabelName(l)
	}
	return names
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

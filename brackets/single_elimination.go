package brackets

import (
	"context"
	"errors"
	"fmt"
	"math/bits"

	"github.com/punchlemon/ft-transcendence-sub001/models"
)

// ErrBracketInvariant indicates a construction bug, not bad input. It should
// never surface from a valid participant list.
var ErrBracketInvariant = errors.New("bracket construction invariant violated")

// ErrNotEnoughParticipants is returned for fewer than two participants;
// callers skip round generation entirely in that case.
var ErrNotEnoughParticipants = errors.New("at least 2 participants are required to build a bracket")

// SlotKind says how a planned match slot is resolved when the plan is
// applied to the store.
type SlotKind int

const (
	// SlotSeed references the caller's ordered participant list by index.
	SlotSeed SlotKind = iota
	// SlotAI requires a fresh AI participant row; one per bye.
	SlotAI
	// SlotTBD points at the tournament's placeholder participant.
	SlotTBD
)

type Slot struct {
	Kind SlotKind
	// Seed is the 0-based participant index, valid only for SlotSeed.
	Seed int
}

// PlannedMatch is a create-match command. FeedsInto indexes Plan.Matches and
// is -1 for the final; FeedsIntoSlot is models.SlotPlayerA or SlotPlayerB.
type PlannedMatch struct {
	Round int
	// Index is the 0-based position of the match within its round.
	Index int

	A Slot
	B Slot

	FeedsInto     int
	FeedsIntoSlot int
}

// Plan lists every row the store must create, ordered by round then index.
type Plan struct {
	BracketSize int
	Rounds      int
	AISeats     int
	Matches     []PlannedMatch
}

type SingleElimination struct{}

func NewSingleElimination() Generator {
	return SingleElimination{}
}

func (SingleElimination) Kind() models.BracketKind {
	return models.BracketSingleElimination
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

// seedOrder lays seeds 0..size-1 out in conventional bracket order: seed 0
// meets seed size-1 in round 1 and the two halves mirror, so the top seeds
// cannot meet before the final. Padded seeds >= the real participant count
// land next to the top seeds, which is where the byes go.
func seedOrder(size int) []int {
	order := []int{0}
	for len(order) < size {
		doubled := len(order) * 2
		next := make([]int, 0, doubled)
		for _, s := range order {
			next = append(next, s, doubled-1-s)
		}
		order = next
	}
	return order
}

func (g SingleElimination) Plan(_ context.Context, params PlanParams) (*Plan, error) {
	count := params.ParticipantCount
	if count < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrNotEnoughParticipants, count)
	}

	size := nextPowerOfTwo(count)
	rounds := bits.TrailingZeros(uint(size))
	order := seedOrder(size)

	plan := &Plan{
		BracketSize: size,
		Rounds:      rounds,
		Matches:     make([]PlannedMatch, 0, size-1),
	}

	// Round 1: padded seeds beyond count are byes. A bye is never an
	// auto-advance; it becomes a fresh AI opponent so every slot is a
	// playable game.
	firstRound := size / 2
	for i := 0; i < firstRound; i++ {
		a, b := order[2*i], order[2*i+1]
		pm := PlannedMatch{Round: 1, Index: i}
		switch {
		case a < count && b < count:
			pm.A = Slot{Kind: SlotSeed, Seed: a}
			pm.B = Slot{Kind: SlotSeed, Seed: b}
		case a < count:
			pm.A = Slot{Kind: SlotSeed, Seed: a}
			pm.B = Slot{Kind: SlotAI}
			plan.AISeats++
		case b < count:
			pm.A = Slot{Kind: SlotAI}
			pm.B = Slot{Kind: SlotSeed, Seed: b}
			plan.AISeats++
		default:
			// Cannot happen while size is the next power of two above
			// count, since at most half the slots can be padding.
			return nil, fmt.Errorf("%w: round 1 match %d paired two byes (count=%d, size=%d)",
				ErrBracketInvariant, i, count, size)
		}
		plan.Matches = append(plan.Matches, pm)
	}

	// Later rounds halve the match count. The condition is inRound >= 1,
	// not > 1: the iteration where the count has reached one emits the
	// final itself.
	for inRound, round := firstRound/2, 2; inRound >= 1; inRound, round = inRound/2, round+1 {
		for i := 0; i < inRound; i++ {
			plan.Matches = append(plan.Matches, PlannedMatch{
				Round: round,
				Index: i,
				A:     Slot{Kind: SlotTBD},
				B:     Slot{Kind: SlotTBD},
			})
		}
	}

	linkFeeds(plan)
	return plan, nil
}

// linkFeeds records, for every non-final match, which downstream match and
// slot its winner advances into. Match i of a round feeds slot A of match
// i/2 in the next round when i is even, slot B when odd.
func linkFeeds(plan *Plan) {
	roundStart := make(map[int]int, plan.Rounds)
	for i, m := range plan.Matches {
		if m.Index == 0 {
			roundStart[m.Round] = i
		}
	}
	for i := range plan.Matches {
		m := &plan.Matches[i]
		if m.Round == plan.Rounds {
			m.FeedsInto = -1
			m.FeedsIntoSlot = 0
			continue
		}
		m.FeedsInto = roundStart[m.Round+1] + m.Index/2
		if m.Index%2 == 0 {
			m.FeedsIntoSlot = models.SlotPlayerA
		} else {
			m.FeedsIntoSlot = models.SlotPlayerB
		}
	}
}

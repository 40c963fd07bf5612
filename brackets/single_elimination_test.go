package brackets

import (
	"context"
	"fmt"
	"math/bits"
	"testing"

	"github.com/punchlemon/ft-transcendence-sub001/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func planFor(t *testing.T, count int) *Plan {
	t.Helper()
	plan, err := NewSingleElimination().Plan(context.Background(), PlanParams{ParticipantCount: count})
	require.NoError(t, err)
	return plan
}

func TestSeedOrder(t *testing.T) {
	tests := []struct {
		size int
		want []int
	}{
		{size: 1, want: []int{0}},
		{size: 2, want: []int{0, 1}},
		{size: 4, want: []int{0, 3, 1, 2}},
		{size: 8, want: []int{0, 7, 3, 4, 1, 6, 2, 5}},
		{size: 16, want: []int{0, 15, 7, 8, 3, 12, 4, 11, 1, 14, 6, 9, 2, 13, 5, 10}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("size_%d", tt.size), func(t *testing.T) {
			assert.Equal(t, tt.want, seedOrder(tt.size))
		})
	}
}

func TestSeedOrderTopSeedsSpread(t *testing.T) {
	// Seeds 0 and 1 must land in opposite halves so they can only meet in
	// the final.
	for _, size := range []int{4, 8, 16, 32, 64} {
		order := seedOrder(size)
		var pos0, pos1 int
		for i, s := range order {
			switch s {
			case 0:
				pos0 = i
			case 1:
				pos1 = i
			}
		}
		assert.Less(t, pos0, size/2, "size %d: seed 0 should sit in the first half", size)
		assert.GreaterOrEqual(t, pos1, size/2, "size %d: seed 1 should sit in the second half", size)
	}
}

func TestPlanRejectsTooFewParticipants(t *testing.T) {
	gen := NewSingleElimination()
	for _, count := range []int{-1, 0, 1} {
		_, err := gen.Plan(context.Background(), PlanParams{ParticipantCount: count})
		assert.ErrorIs(t, err, ErrNotEnoughParticipants, "count %d", count)
	}
}

func TestPlanTwoParticipants(t *testing.T) {
	plan := planFor(t, 2)

	assert.Equal(t, 2, plan.BracketSize)
	assert.Equal(t, 1, plan.Rounds)
	assert.Equal(t, 0, plan.AISeats)
	require.Len(t, plan.Matches, 1)

	final := plan.Matches[0]
	assert.Equal(t, 1, final.Round)
	assert.Equal(t, Slot{Kind: SlotSeed, Seed: 0}, final.A)
	assert.Equal(t, Slot{Kind: SlotSeed, Seed: 1}, final.B)
	assert.Equal(t, -1, final.FeedsInto)
}

func TestPlanFiveParticipants(t *testing.T) {
	plan := planFor(t, 5)

	assert.Equal(t, 8, plan.BracketSize)
	assert.Equal(t, 3, plan.Rounds)
	assert.Equal(t, 3, plan.AISeats)
	require.Len(t, plan.Matches, 7)

	// Top seeds take the byes, so seeds 0, 1 and 2 face AI opponents while
	// seeds 3 and 4 play each other.
	round1 := plan.Matches[:4]
	assert.Equal(t, Slot{Kind: SlotSeed, Seed: 0}, round1[0].A)
	assert.Equal(t, Slot{Kind: SlotAI}, round1[0].B)
	assert.Equal(t, Slot{Kind: SlotSeed, Seed: 3}, round1[1].A)
	assert.Equal(t, Slot{Kind: SlotSeed, Seed: 4}, round1[1].B)
	assert.Equal(t, Slot{Kind: SlotSeed, Seed: 1}, round1[2].A)
	assert.Equal(t, Slot{Kind: SlotAI}, round1[2].B)
	assert.Equal(t, Slot{Kind: SlotSeed, Seed: 2}, round1[3].A)
	assert.Equal(t, Slot{Kind: SlotAI}, round1[3].B)

	// Later rounds hold only placeholder slots.
	for _, m := range plan.Matches[4:] {
		assert.Equal(t, Slot{Kind: SlotTBD}, m.A)
		assert.Equal(t, Slot{Kind: SlotTBD}, m.B)
	}

	// Round-1 winners converge pairwise on the semifinals, semifinal
	// winners on the final.
	assert.Equal(t, 4, round1[0].FeedsInto)
	assert.Equal(t, models.SlotPlayerA, round1[0].FeedsIntoSlot)
	assert.Equal(t, 4, round1[1].FeedsInto)
	assert.Equal(t, models.SlotPlayerB, round1[1].FeedsIntoSlot)
	assert.Equal(t, 5, round1[2].FeedsInto)
	assert.Equal(t, models.SlotPlayerA, round1[2].FeedsIntoSlot)
	assert.Equal(t, 5, round1[3].FeedsInto)
	assert.Equal(t, models.SlotPlayerB, round1[3].FeedsIntoSlot)

	assert.Equal(t, 6, plan.Matches[4].FeedsInto)
	assert.Equal(t, models.SlotPlayerA, plan.Matches[4].FeedsIntoSlot)
	assert.Equal(t, 6, plan.Matches[5].FeedsInto)
	assert.Equal(t, models.SlotPlayerB, plan.Matches[5].FeedsIntoSlot)
	assert.Equal(t, -1, plan.Matches[6].FeedsInto)
}

func TestPlanShapeForAllCounts(t *testing.T) {
	for count := 2; count <= 64; count++ {
		plan := planFor(t, count)

		size := plan.BracketSize
		assert.GreaterOrEqual(t, size, count)
		assert.Less(t, size/2, count, "count %d: bracket should be the next power of two", count)
		assert.Equal(t, bits.TrailingZeros(uint(size)), plan.Rounds, "count %d", count)
		assert.Len(t, plan.Matches, size-1, "count %d", count)
		assert.Equal(t, size-count, plan.AISeats, "count %d: one AI seat per bye", count)

		// Each round halves the match count down to exactly one final.
		perRound := make(map[int]int)
		for _, m := range plan.Matches {
			perRound[m.Round]++
		}
		require.Equal(t, size/2, perRound[1], "count %d", count)
		for round := 2; round <= plan.Rounds; round++ {
			assert.Equal(t, perRound[round-1]/2, perRound[round], "count %d round %d", count, round)
		}
		assert.Equal(t, 1, perRound[plan.Rounds], "count %d: exactly one final", count)

		// Every real participant appears exactly once in round 1, and
		// round-1 matches never pair two synthetic slots.
		seedSeen := make(map[int]int)
		for _, m := range plan.Matches[:size/2] {
			require.False(t, m.A.Kind == SlotAI && m.B.Kind == SlotAI,
				"count %d: round-1 match paired two AI slots", count)
			for _, slot := range []Slot{m.A, m.B} {
				require.NotEqual(t, SlotTBD, slot.Kind, "count %d: placeholder in round 1", count)
				if slot.Kind == SlotSeed {
					seedSeen[slot.Seed]++
				}
			}
		}
		require.Len(t, seedSeen, count, "count %d", count)
		for seed, n := range seedSeen {
			require.Equal(t, 1, n, "count %d: seed %d appears %d times", count, seed, n)
		}

		// Feeds-into links always point at the next round, and each
		// downstream match receives exactly one feeder per slot.
		slotFed := make(map[[2]int]int)
		for i, m := range plan.Matches {
			if m.Round == plan.Rounds {
				require.Equal(t, -1, m.FeedsInto, "count %d: final must not feed anywhere", count)
				continue
			}
			require.GreaterOrEqual(t, m.FeedsInto, 0, "count %d match %d", count, i)
			require.Less(t, m.FeedsInto, len(plan.Matches), "count %d match %d", count, i)
			target := plan.Matches[m.FeedsInto]
			require.Equal(t, m.Round+1, target.Round, "count %d match %d", count, i)
			require.Contains(t, []int{models.SlotPlayerA, models.SlotPlayerB}, m.FeedsIntoSlot)
			slotFed[[2]int{m.FeedsInto, m.FeedsIntoSlot}]++
		}
		for key, n := range slotFed {
			require.Equal(t, 1, n, "count %d: slot %v fed %d times", count, key, n)
		}
	}
}

func TestPlanDeterministic(t *testing.T) {
	gen := NewSingleElimination()
	for _, count := range []int{2, 3, 5, 8, 13, 64} {
		first, err := gen.Plan(context.Background(), PlanParams{ParticipantCount: count})
		require.NoError(t, err)
		second, err := gen.Plan(context.Background(), PlanParams{ParticipantCount: count})
		require.NoError(t, err)
		assert.Equal(t, first, second, "count %d", count)
	}
}

package services

import (
	"testing"

	"github.com/punchlemon/ft-transcendence-sub001/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func participant(id int, alias string, state models.ParticipantState) *models.Participant {
	return &models.Participant{ID: id, TournamentID: 1, Alias: alias, State: state}
}

func finishedMatch(round, playerA, playerB, winner, scoreA, scoreB int) *models.Match {
	return &models.Match{
		TournamentID: 1,
		Round:        round,
		PlayerAID:    intPtr(playerA),
		PlayerBID:    intPtr(playerB),
		Status:       models.MatchStatusFinished,
		WinnerID:     intPtr(winner),
		ScoreA:       intPtr(scoreA),
		ScoreB:       intPtr(scoreB),
	}
}

func TestComputeStandingsCompletedBracket(t *testing.T) {
	// Four participants: A beats B 11-5, C beats D 11-9, then A beats C
	// 11-7 in the final. maxRoundReached outranks totalScore, and between
	// the two round-1 losers the higher total score wins the tie-break.
	a := participant(1, "A", models.ParticipantLocal)
	b := participant(2, "B", models.ParticipantLocal)
	c := participant(3, "C", models.ParticipantLocal)
	d := participant(4, "D", models.ParticipantLocal)
	tbd := participant(5, "TBD", models.ParticipantPlaceholder)

	matches := []*models.Match{
		finishedMatch(1, 1, 2, 1, 11, 5),
		finishedMatch(1, 3, 4, 3, 11, 9),
		finishedMatch(2, 1, 3, 1, 11, 7),
	}

	standings := computeStandings([]*models.Participant{a, b, c, d, tbd}, matches)
	require.Len(t, standings, 4)

	assert.Equal(t, "A", standings[0].Alias)
	assert.True(t, standings[0].Winner)
	assert.Equal(t, 1, standings[0].Rank)
	assert.Equal(t, 2, standings[0].MaxRound)
	assert.Equal(t, 22, standings[0].TotalScore)

	assert.Equal(t, "C", standings[1].Alias)
	assert.False(t, standings[1].Winner)
	assert.Equal(t, 2, standings[1].Rank)
	assert.Equal(t, 2, standings[1].MaxRound)
	assert.Equal(t, 18, standings[1].TotalScore)

	// D outscored B, so D ranks above B even though both lost in round 1.
	assert.Equal(t, "D", standings[2].Alias)
	assert.Equal(t, 3, standings[2].Rank)
	assert.Equal(t, 1, standings[2].MaxRound)
	assert.Equal(t, 9, standings[2].TotalScore)

	assert.Equal(t, "B", standings[3].Alias)
	assert.Equal(t, 4, standings[3].Rank)
	assert.Equal(t, 1, standings[3].MaxRound)
	assert.Equal(t, 5, standings[3].TotalScore)
}

func TestComputeStandingsTiedRanksShared(t *testing.T) {
	a := participant(1, "A", models.ParticipantLocal)
	b := participant(2, "B", models.ParticipantLocal)
	c := participant(3, "C", models.ParticipantLocal)
	d := participant(4, "D", models.ParticipantLocal)

	// Both round-1 losers finish on the same score and share a rank.
	matches := []*models.Match{
		finishedMatch(1, 1, 2, 1, 11, 7),
		finishedMatch(1, 3, 4, 3, 11, 7),
		finishedMatch(2, 1, 3, 1, 11, 4),
	}

	standings := computeStandings([]*models.Participant{a, b, c, d}, matches)
	require.Len(t, standings, 4)

	assert.Equal(t, 1, standings[0].Rank)
	assert.Equal(t, 2, standings[1].Rank)
	assert.Equal(t, 3, standings[2].Rank)
	assert.Equal(t, 3, standings[3].Rank)

	// Ties are ordered by participant id for determinism.
	assert.Equal(t, "B", standings[2].Alias)
	assert.Equal(t, "D", standings[3].Alias)
}

func TestComputeStandingsPartialBracket(t *testing.T) {
	a := participant(1, "A", models.ParticipantLocal)
	b := participant(2, "B", models.ParticipantLocal)
	c := participant(3, "C", models.ParticipantLocal)
	d := participant(4, "D", models.ParticipantLocal)
	tbd := participant(5, "TBD", models.ParticipantPlaceholder)

	pendingFinal := &models.Match{
		TournamentID: 1,
		Round:        2,
		PlayerAID:    intPtr(1),
		PlayerBID:    intPtr(5),
		Status:       models.MatchStatusPending,
	}
	matches := []*models.Match{
		finishedMatch(1, 1, 2, 1, 11, 5),
		{TournamentID: 1, Round: 1, PlayerAID: intPtr(3), PlayerBID: intPtr(4), Status: models.MatchStatusPending},
		pendingFinal,
	}

	standings := computeStandings([]*models.Participant{a, b, c, d, tbd}, matches)
	require.Len(t, standings, 4)

	// No one holds the winner flag while the final is pending.
	for _, s := range standings {
		assert.False(t, s.Winner, "participant %s", s.Alias)
	}

	// A already occupies a final slot, so A leads on maxRoundReached; the
	// placeholder never surfaces.
	assert.Equal(t, "A", standings[0].Alias)
	assert.Equal(t, 2, standings[0].MaxRound)
	assert.Equal(t, 11, standings[0].TotalScore)
	for _, s := range standings {
		assert.NotEqual(t, models.ParticipantPlaceholder, s.State)
	}
}

func TestComputeStandingsIncludesAIParticipants(t *testing.T) {
	a := participant(1, "A", models.ParticipantLocal)
	ai := participant(2, "AI opponent 1", models.ParticipantAI)

	matches := []*models.Match{
		finishedMatch(1, 1, 2, 1, 11, 3),
	}

	standings := computeStandings([]*models.Participant{a, ai}, matches)
	require.Len(t, standings, 2)
	assert.Equal(t, "A", standings[0].Alias)
	assert.True(t, standings[0].Winner)
	assert.Equal(t, "AI opponent 1", standings[1].Alias)
	assert.Equal(t, models.ParticipantAI, standings[1].State)
	assert.Equal(t, 3, standings[1].TotalScore)
}

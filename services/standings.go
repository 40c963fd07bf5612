package services

import (
	"sort"

	"github.com/punchlemon/ft-transcendence-sub001/models"
)

// computeStandings derives the final ranking from a tournament's participant
// and match sets. The champion comes first, then maxRoundReached descending,
// then totalScore descending; participants equal on every criterion share a
// rank, and the next distinct group continues from position, not rank.
//
// The placeholder sentinel never appears in standings. AI participants do:
// they played real games.
func computeStandings(participants []*models.Participant, matches []*models.Match) []models.Standing {
	type tally struct {
		maxRound   int
		totalScore int
	}

	byID := make(map[int]*models.Participant, len(participants))
	for _, p := range participants {
		byID[p.ID] = p
	}

	tallies := make(map[int]*tally, len(participants))
	occupy := func(id *int, round int) {
		if id == nil {
			return
		}
		p, ok := byID[*id]
		if !ok || p.State == models.ParticipantPlaceholder {
			return
		}
		t := tallies[*id]
		if t == nil {
			t = &tally{}
			tallies[*id] = t
		}
		if round > t.maxRound {
			t.maxRound = round
		}
	}
	score := func(id *int, points *int) {
		if id == nil || points == nil {
			return
		}
		if t, ok := tallies[*id]; ok {
			t.totalScore += *points
		}
	}

	var final *models.Match
	for _, m := range matches {
		occupy(m.PlayerAID, m.Round)
		occupy(m.PlayerBID, m.Round)
		if m.Status == models.MatchStatusFinished {
			score(m.PlayerAID, m.ScoreA)
			score(m.PlayerBID, m.ScoreB)
		}
		if final == nil || m.Round > final.Round {
			final = m
		}
	}

	winnerID := 0
	if final != nil && final.WinnerID != nil {
		winnerID = *final.WinnerID
	}

	standings := make([]models.Standing, 0, len(tallies))
	for _, p := range participants {
		t, ok := tallies[p.ID]
		if !ok {
			continue
		}
		standings = append(standings, models.Standing{
			ParticipantID: p.ID,
			Alias:         p.Alias,
			State:         p.State,
			Winner:        p.ID == winnerID && winnerID != 0,
			MaxRound:      t.maxRound,
			TotalScore:    t.totalScore,
		})
	}

	sort.SliceStable(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.Winner != b.Winner {
			return a.Winner
		}
		if a.MaxRound != b.MaxRound {
			return a.MaxRound > b.MaxRound
		}
		if a.TotalScore != b.TotalScore {
			return a.TotalScore > b.TotalScore
		}
		return a.ParticipantID < b.ParticipantID
	})

	for i := range standings {
		if i > 0 && sameRank(standings[i], standings[i-1]) {
			standings[i].Rank = standings[i-1].Rank
			continue
		}
		standings[i].Rank = i + 1
	}
	return standings
}

func sameRank(a, b models.Standing) bool {
	return a.Winner == b.Winner && a.MaxRound == b.MaxRound && a.TotalScore == b.TotalScore
}

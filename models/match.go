package models

import "time"

type MatchStatus string

const (
	MatchStatusPending  MatchStatus = "pending"
	MatchStatusFinished MatchStatus = "finished"
)

// Slot numbers used by Match.FeedsIntoSlot.
const (
	SlotPlayerA = 1
	SlotPlayerB = 2
)

// Match is one node of a bracket. Player slots reference participants and
// are null only transiently during construction; unresolved slots of later
// rounds hold the tournament's placeholder participant instead.
//
// FeedsIntoMatchID/FeedsIntoSlot are written at construction time so winner
// propagation is a targeted update, never an inference from list position.
type Match struct {
	ID           int         `json:"id" db:"id"`
	TournamentID int         `json:"tournament_id" db:"tournament_id"`
	Round        int         `json:"round" db:"round"`
	PlayerAID    *int        `json:"player_a_id,omitempty" db:"player_a_id"`
	PlayerBID    *int        `json:"player_b_id,omitempty" db:"player_b_id"`
	Status       MatchStatus `json:"status" db:"status"`
	ScheduledAt  *time.Time  `json:"scheduled_at,omitempty" db:"scheduled_at"`
	WinnerID     *int        `json:"winner_id,omitempty" db:"winner_id"`
	ScoreA       *int        `json:"score_a,omitempty" db:"score_a"`
	ScoreB       *int        `json:"score_b,omitempty" db:"score_b"`

	FeedsIntoMatchID *int `json:"feeds_into_match_id,omitempty" db:"feeds_into_match_id"`
	FeedsIntoSlot    *int `json:"feeds_into_slot,omitempty" db:"feeds_into_slot"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// HasPlayer reports whether participantID occupies one of the match's slots.
func (m *Match) HasPlayer(participantID int) bool {
	if m.PlayerAID != nil && *m.PlayerAID == participantID {
		return true
	}
	if m.PlayerBID != nil && *m.PlayerBID == participantID {
		return true
	}
	return false
}

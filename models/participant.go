package models

import "time"

// ParticipantState matches the ENUM in the database.
//
// placeholder is the single per-tournament sentinel occupying every
// not-yet-decided slot of rounds after the first. ai participants are
// created per bye so that every round-1 slot is a playable game.
type ParticipantState string

const (
	ParticipantLocal       ParticipantState = "local"
	ParticipantInvited     ParticipantState = "invited"
	ParticipantAccepted    ParticipantState = "accepted"
	ParticipantPlaceholder ParticipantState = "placeholder"
	ParticipantAI          ParticipantState = "ai"
)

type Participant struct {
	ID           int              `json:"id" db:"id"`
	TournamentID int              `json:"tournament_id" db:"tournament_id"`
	Alias        string           `json:"alias" db:"alias"`
	UserID       *int             `json:"user_id,omitempty" db:"user_id"`
	State        ParticipantState `json:"state" db:"state"`
	Seed         *int             `json:"seed,omitempty" db:"seed"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`

	User *User `json:"user,omitempty" db:"-"`
}

// IsSynthetic reports whether the participant is one of the engine's own
// rows rather than a registered player.
func (p *Participant) IsSynthetic() bool {
	return p.State == ParticipantPlaceholder || p.State == ParticipantAI
}

package models

import "time"

// TournamentStatus matches the ENUM in the database.
type TournamentStatus string

const (
	TournamentStatusDraft     TournamentStatus = "draft"
	TournamentStatusReady     TournamentStatus = "ready"
	TournamentStatusRunning   TournamentStatus = "running"
	TournamentStatusCompleted TournamentStatus = "completed"
)

type BracketKind string

const (
	BracketSingleElimination BracketKind = "single_elimination"
)

type Tournament struct {
	ID          int              `json:"id" db:"id"`
	Name        string           `json:"name" db:"name"`
	OwnerID     int              `json:"owner_id" db:"owner_id"`
	BracketKind BracketKind      `json:"bracket_kind" db:"bracket_kind"`
	Status      TournamentStatus `json:"status" db:"status"`
	StartAt     *time.Time       `json:"start_at,omitempty" db:"start_at"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`

	// Related entities, populated by the service layer.
	Owner        *User         `json:"owner,omitempty" db:"-"`
	Participants []Participant `json:"participants,omitempty" db:"-"`
	Matches      []Match       `json:"matches,omitempty" db:"-"`
}

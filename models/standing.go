package models

// Standing is one row of a tournament's final ranking. Participants that tie
// on every criterion share a rank equal to the tie group's first position.
type Standing struct {
	Rank          int              `json:"rank"`
	ParticipantID int              `json:"participant_id"`
	Alias         string           `json:"alias"`
	State         ParticipantState `json:"state"`
	Winner        bool             `json:"winner"`
	MaxRound      int              `json:"max_round"`
	TotalScore    int              `json:"total_score"`
}

package brackets

import (
	"context"

	"github.com/punchlemon/ft-transcendence-sub001/models"
)

type PlanParams struct {
	Tournament *models.Tournament

	// ParticipantCount is the number of real (seeded) participants. The
	// plan refers to them by seed index only; the caller owns the rows.
	ParticipantCount int
}

// Generator turns a participant count into a construction plan. It performs
// no I/O: the tournament service applies the plan against the store in a
// single transaction.
type Generator interface {
	Plan(ctx context.Context, params PlanParams) (*Plan, error)

	Kind() models.BracketKind
}

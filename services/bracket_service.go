package services

import (
	"context"
	"fmt"

	"github.com/punchlemon/ft-transcendence-sub001/brackets"
	"github.com/punchlemon/ft-transcendence-sub001/models"
	"github.com/punchlemon/ft-transcendence-sub001/repositories"
)

// BracketService applies a generator's construction plan against the entity
// store. Every row is written through the caller's transaction so a
// tournament and its full bracket appear atomically.
type BracketService interface {
	BuildBracket(
		ctx context.Context,
		exec repositories.SQLExecutor,
		tournament *models.Tournament,
		seeded []*models.Participant,
		placeholder *models.Participant,
	) ([]*models.Match, error)
}

type bracketService struct {
	participantRepo repositories.ParticipantRepository
	matchRepo       repositories.MatchRepository
	generators      map[models.BracketKind]brackets.Generator
}

func NewBracketService(
	participantRepo repositories.ParticipantRepository,
	matchRepo repositories.MatchRepository,
	generators ...brackets.Generator,
) BracketService {
	byKind := make(map[models.BracketKind]brackets.Generator, len(generators))
	for _, g := range generators {
		byKind[g.Kind()] = g
	}
	return &bracketService{
		participantRepo: participantRepo,
		matchRepo:       matchRepo,
		generators:      byKind,
	}
}

// BuildBracket plans and persists the full bracket: round-1 matches over the
// seeded participants (byes replaced by fresh AI opponents) and placeholder
// matches for every later round, then the feeds-into links in a second pass
// once every match has an id.
func (s *bracketService) BuildBracket(
	ctx context.Context,
	exec repositories.SQLExecutor,
	tournament *models.Tournament,
	seeded []*models.Participant,
	placeholder *models.Participant,
) ([]*models.Match, error) {
	generator, ok := s.generators[tournament.BracketKind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBracketKindUnsupported, tournament.BracketKind)
	}

	plan, err := generator.Plan(ctx, brackets.PlanParams{
		Tournament:       tournament,
		ParticipantCount: len(seeded),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to plan bracket for tournament %d: %w", tournament.ID, err)
	}

	aiCount := 0
	resolveSlot := func(slot brackets.Slot) (*int, error) {
		switch slot.Kind {
		case brackets.SlotSeed:
			if slot.Seed < 0 || slot.Seed >= len(seeded) {
				return nil, fmt.Errorf("%w: seed index %d out of range", brackets.ErrBracketInvariant, slot.Seed)
			}
			id := seeded[slot.Seed].ID
			return &id, nil
		case brackets.SlotAI:
			aiCount++
			ai := &models.Participant{
				TournamentID: tournament.ID,
				Alias:        fmt.Sprintf("AI opponent %d", aiCount),
				State:        models.ParticipantAI,
			}
			if err := s.participantRepo.Create(ctx, exec, ai); err != nil {
				return nil, fmt.Errorf("failed to create AI participant: %w", err)
			}
			id := ai.ID
			return &id, nil
		case brackets.SlotTBD:
			id := placeholder.ID
			return &id, nil
		default:
			return nil, fmt.Errorf("%w: unknown slot kind %d", brackets.ErrBracketInvariant, slot.Kind)
		}
	}

	created := make([]*models.Match, 0, len(plan.Matches))
	for _, pm := range plan.Matches {
		playerA, err := resolveSlot(pm.A)
		if err != nil {
			return nil, err
		}
		playerB, err := resolveSlot(pm.B)
		if err != nil {
			return nil, err
		}

		m := &models.Match{
			TournamentID: tournament.ID,
			Round:        pm.Round,
			PlayerAID:    playerA,
			PlayerBID:    playerB,
			Status:       models.MatchStatusPending,
			ScheduledAt:  tournament.StartAt,
		}
		if err := s.matchRepo.Create(ctx, exec, m); err != nil {
			return nil, fmt.Errorf("failed to create match (round %d): %w", pm.Round, err)
		}
		created = append(created, m)
	}

	// Second pass: the plan indexes line up with creation order, so each
	// non-final match gets its downstream link by id.
	for i, pm := range plan.Matches {
		if pm.FeedsInto < 0 {
			continue
		}
		target := created[pm.FeedsInto]
		if err := s.matchRepo.SetFeedsInto(ctx, exec, created[i].ID, target.ID, pm.FeedsIntoSlot); err != nil {
			return nil, fmt.Errorf("failed to link match %d to match %d: %w", created[i].ID, target.ID, err)
		}
		targetID := target.ID
		slot := pm.FeedsIntoSlot
		created[i].FeedsIntoMatchID = &targetID
		created[i].FeedsIntoSlot = &slot
	}

	return created, nil
}

package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/punchlemon/ft-transcendence-sub001/brackets"
	"github.com/punchlemon/ft-transcendence-sub001/models"
	"github.com/punchlemon/ft-transcendence-sub001/repositories"
)

type SubmitResultInput struct {
	WinnerID int  `json:"winner_id"`
	ScoreA   *int `json:"score_a"`
	ScoreB   *int `json:"score_b"`
}

type MatchService interface {
	// SubmitResult finishes a pending match and propagates the winner into
	// the downstream slot, or completes the tournament when the final ends.
	SubmitResult(ctx context.Context, matchID int, input SubmitResultInput) (*models.Match, error)
	GetMatchByID(ctx context.Context, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int, round *int, status *models.MatchStatus) ([]*models.Match, error)
}

type matchService struct {
	db              *sql.DB
	matchRepo       repositories.MatchRepository
	participantRepo repositories.ParticipantRepository
	tournamentRepo  repositories.TournamentRepository
	hub             Broadcaster
	logger          *slog.Logger
}

func NewMatchService(
	db *sql.DB,
	matchRepo repositories.MatchRepository,
	participantRepo repositories.ParticipantRepository,
	tournamentRepo repositories.TournamentRepository,
	hub Broadcaster,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		db:              db,
		matchRepo:       matchRepo,
		participantRepo: participantRepo,
		tournamentRepo:  tournamentRepo,
		hub:             hub,
		logger:          logger,
	}
}

// ensurePlayable rejects results for matches whose slots are not two real
// opponents yet. Round-2+ slots hold the placeholder sentinel until their
// feeding matches finish; accepting a result there would let the sentinel be
// recorded as a winner and propagate downstream.
func (s *matchService) ensurePlayable(ctx context.Context, m *models.Match) error {
	for _, slotID := range []*int{m.PlayerAID, m.PlayerBID} {
		if slotID == nil {
			return ErrMatchNotReady
		}
		p, err := s.participantRepo.FindByID(ctx, *slotID)
		if err != nil {
			if errors.Is(err, repositories.ErrParticipantNotFound) {
				return ErrMatchNotReady
			}
			return err
		}
		if p.State == models.ParticipantPlaceholder {
			return ErrMatchNotReady
		}
	}
	return nil
}

func validateResultInput(m *models.Match, input SubmitResultInput) error {
	if m.Status == models.MatchStatusFinished {
		return ErrMatchAlreadyFinished
	}
	if !m.HasPlayer(input.WinnerID) {
		return fmt.Errorf("%w: participant %d", ErrInvalidWinner, input.WinnerID)
	}
	if input.ScoreA == nil || input.ScoreB == nil {
		return ErrScoresRequired
	}
	if *input.ScoreA < 0 || *input.ScoreB < 0 {
		return ErrScoreInvalid
	}
	return nil
}

func (s *matchService) SubmitResult(ctx context.Context, matchID int, input SubmitResultInput) (*models.Match, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	match, err := s.matchRepo.GetByIDForUpdate(ctx, tx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}

	if err := s.ensurePlayable(ctx, match); err != nil {
		return nil, err
	}
	if err := validateResultInput(match, input); err != nil {
		return nil, err
	}

	if err := s.matchRepo.Finish(ctx, tx, match.ID, input.WinnerID, *input.ScoreA, *input.ScoreB); err != nil {
		// A concurrent submission finished the match between the lock
		// release of its transaction and ours; treat it the same as
		// finding a finished row.
		if errors.Is(err, repositories.ErrMatchAlreadyDecided) {
			return nil, ErrMatchAlreadyFinished
		}
		return nil, err
	}

	match.Status = models.MatchStatusFinished
	winnerID := input.WinnerID
	match.WinnerID = &winnerID
	match.ScoreA = input.ScoreA
	match.ScoreB = input.ScoreB

	if match.FeedsIntoMatchID != nil && match.FeedsIntoSlot != nil {
		if err := s.matchRepo.AssignSlot(ctx, tx, *match.FeedsIntoMatchID, *match.FeedsIntoSlot, winnerID); err != nil {
			return nil, fmt.Errorf("failed to propagate winner to match %d: %w", *match.FeedsIntoMatchID, err)
		}
		if err := s.tournamentRepo.MarkRunning(ctx, tx, match.TournamentID); err != nil {
			return nil, err
		}
	} else {
		// No downstream match: this was the final.
		if err := s.tournamentRepo.UpdateStatus(ctx, tx, match.TournamentID, models.TournamentStatusCompleted); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit match result: %w", err)
	}

	s.logger.Info("match finished",
		slog.Int("match_id", match.ID),
		slog.Int("tournament_id", match.TournamentID),
		slog.Int("winner_id", winnerID),
	)

	if s.hub != nil {
		s.hub.BroadcastToRoom(brackets.TournamentRoom(match.TournamentID), map[string]interface{}{
			"type":          brackets.EventMatchFinished,
			"match_id":      match.ID,
			"tournament_id": match.TournamentID,
			"winner_id":     winnerID,
			"score_a":       *input.ScoreA,
			"score_b":       *input.ScoreB,
		})
	}

	return match, nil
}

func (s *matchService) GetMatchByID(ctx context.Context, id int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}

func (s *matchService) ListByTournament(ctx context.Context, tournamentID int, round *int, status *models.MatchStatus) ([]*models.Match, error) {
	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID, round, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for tournament %d: %w", tournamentID, err)
	}
	return matches, nil
}

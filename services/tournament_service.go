package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/punchlemon/ft-transcendence-sub001/models"
	"github.com/punchlemon/ft-transcendence-sub001/repositories"
	"golang.org/x/sync/errgroup"
)

// MaxParticipants is the upper bound the request layer enforces on a
// tournament's seeded participant list.
const MaxParticipants = 64

const placeholderAlias = "TBD"

type ParticipantInput struct {
	Alias  string `json:"alias"`
	UserID *int   `json:"user_id,omitempty"`
}

type CreateTournamentInput struct {
	Name         string             `json:"name"`
	BracketKind  models.BracketKind `json:"bracket_kind"`
	StartAt      *time.Time         `json:"start_at,omitempty"`
	Participants []ParticipantInput `json:"participants"`
}

// SlotView resolves a match slot for clients.
type SlotView struct {
	ParticipantID int                     `json:"participant_id"`
	Alias         string                  `json:"alias"`
	State         models.ParticipantState `json:"state"`
}

type MatchView struct {
	ID               int                `json:"id"`
	Round            int                `json:"round"`
	PlayerA          *SlotView          `json:"player_a,omitempty"`
	PlayerB          *SlotView          `json:"player_b,omitempty"`
	Status           models.MatchStatus `json:"status"`
	ScheduledAt      *time.Time         `json:"scheduled_at,omitempty"`
	WinnerID         *int               `json:"winner_id,omitempty"`
	ScoreA           *int               `json:"score_a,omitempty"`
	ScoreB           *int               `json:"score_b,omitempty"`
	FeedsIntoMatchID *int               `json:"feeds_into_match_id,omitempty"`
	FeedsIntoSlot    *int               `json:"feeds_into_slot,omitempty"`
}

type TournamentView struct {
	Tournament   models.Tournament    `json:"tournament"`
	Participants []models.Participant `json:"participants"`
	Matches      []MatchView          `json:"matches"`
}

type TournamentService interface {
	CreateTournament(ctx context.Context, ownerID int, input CreateTournamentInput) (*TournamentView, error)
	GetTournamentByID(ctx context.Context, id int) (*TournamentView, error)
	ListTournaments(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error)
	Standings(ctx context.Context, tournamentID int) ([]models.Standing, error)
	// AutoStartDueTournaments flips ready tournaments whose start time has
	// passed to running; invoked periodically from main.
	AutoStartDueTournaments(ctx context.Context) error
}

type tournamentService struct {
	db              *sql.DB
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	matchRepo       repositories.MatchRepository
	bracketService  BracketService
	hub             Broadcaster
	logger          *slog.Logger
}

func NewTournamentService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	matchRepo repositories.MatchRepository,
	bracketService BracketService,
	hub Broadcaster,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		db:              db,
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		matchRepo:       matchRepo,
		bracketService:  bracketService,
		hub:             hub,
		logger:          logger,
	}
}

func validateCreateInput(input CreateTournamentInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return ErrTournamentNameRequired
	}
	if input.BracketKind != models.BracketSingleElimination {
		return fmt.Errorf("%w: %q", ErrBracketKindUnsupported, input.BracketKind)
	}
	if len(input.Participants) == 0 {
		return ErrParticipantsRequired
	}
	if len(input.Participants) > MaxParticipants {
		return fmt.Errorf("%w: got %d", ErrTooManyParticipants, len(input.Participants))
	}
	seen := make(map[string]struct{}, len(input.Participants))
	for _, p := range input.Participants {
		// Aliases are compared exactly as stored, case included.
		if p.Alias == "" {
			return ErrParticipantAliasRequired
		}
		if p.Alias == placeholderAlias {
			return fmt.Errorf("%w: %q is reserved", ErrParticipantAliasConflict, placeholderAlias)
		}
		if _, dup := seen[p.Alias]; dup {
			return fmt.Errorf("%w: %q", ErrParticipantAliasConflict, p.Alias)
		}
		seen[p.Alias] = struct{}{}
	}
	return nil
}

// CreateTournament persists the tournament, its placeholder sentinel, the
// seeded participants (input order is the seed order) and, when at least two
// participants registered, the full bracket — all in one transaction. With a
// single participant the row set is stored without rounds and the tournament
// stays a draft.
func (s *tournamentService) CreateTournament(ctx context.Context, ownerID int, input CreateTournamentInput) (*TournamentView, error) {
	if input.BracketKind == "" {
		input.BracketKind = models.BracketSingleElimination
	}
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	status := models.TournamentStatusReady
	if len(input.Participants) < 2 {
		status = models.TournamentStatusDraft
	}

	tournament := &models.Tournament{
		Name:        strings.TrimSpace(input.Name),
		OwnerID:     ownerID,
		BracketKind: input.BracketKind,
		Status:      status,
		StartAt:     input.StartAt,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.tournamentRepo.Create(ctx, tx, tournament); err != nil {
		return nil, mapTournamentRepoError(err)
	}

	placeholder := &models.Participant{
		TournamentID: tournament.ID,
		Alias:        placeholderAlias,
		State:        models.ParticipantPlaceholder,
	}
	if err := s.participantRepo.Create(ctx, tx, placeholder); err != nil {
		return nil, fmt.Errorf("failed to create placeholder participant: %w", err)
	}

	seeded := make([]*models.Participant, 0, len(input.Participants))
	for i, in := range input.Participants {
		seed := i + 1
		state := models.ParticipantLocal
		if in.UserID != nil {
			state = models.ParticipantInvited
		}
		p := &models.Participant{
			TournamentID: tournament.ID,
			Alias:        in.Alias,
			UserID:       in.UserID,
			State:        state,
			Seed:         &seed,
		}
		if err := s.participantRepo.Create(ctx, tx, p); err != nil {
			if errors.Is(err, repositories.ErrParticipantAliasConflict) {
				return nil, fmt.Errorf("%w: %q", ErrParticipantAliasConflict, in.Alias)
			}
			return nil, fmt.Errorf("failed to create participant %q: %w", in.Alias, err)
		}
		seeded = append(seeded, p)
	}

	if len(seeded) >= 2 {
		if _, err := s.bracketService.BuildBracket(ctx, tx, tournament, seeded, placeholder); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit tournament creation: %w", err)
	}

	s.logger.Info("tournament created",
		slog.Int("tournament_id", tournament.ID),
		slog.Int("owner_id", ownerID),
		slog.Int("participants", len(seeded)),
		slog.String("status", string(tournament.Status)),
	)

	return s.GetTournamentByID(ctx, tournament.ID)
}

// GetTournamentByID assembles the client-facing bracket view: participants
// ordered by seed then id, matches ordered by round then id, with slots
// resolved to alias and state. The placeholder sentinel only surfaces inside
// unresolved slots, never in the participant list.
func (s *tournamentService) GetTournamentByID(ctx context.Context, id int) (*TournamentView, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapTournamentRepoError(err)
	}

	var (
		participants []*models.Participant
		matches      []*models.Match
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		participants, err = s.participantRepo.ListByTournament(gCtx, id)
		return err
	})
	g.Go(func() error {
		var err error
		matches, err = s.matchRepo.ListByTournament(gCtx, id, nil, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load tournament %d data: %w", id, err)
	}

	byID := make(map[int]*models.Participant, len(participants))
	listed := make([]models.Participant, 0, len(participants))
	for _, p := range participants {
		byID[p.ID] = p
		if p.State != models.ParticipantPlaceholder {
			listed = append(listed, *p)
		}
	}

	slotView := func(id *int) *SlotView {
		if id == nil {
			return nil
		}
		p, ok := byID[*id]
		if !ok {
			return &SlotView{ParticipantID: *id}
		}
		return &SlotView{ParticipantID: p.ID, Alias: p.Alias, State: p.State}
	}

	matchViews := make([]MatchView, 0, len(matches))
	for _, m := range matches {
		matchViews = append(matchViews, MatchView{
			ID:               m.ID,
			Round:            m.Round,
			PlayerA:          slotView(m.PlayerAID),
			PlayerB:          slotView(m.PlayerBID),
			Status:           m.Status,
			ScheduledAt:      m.ScheduledAt,
			WinnerID:         m.WinnerID,
			ScoreA:           m.ScoreA,
			ScoreB:           m.ScoreB,
			FeedsIntoMatchID: m.FeedsIntoMatchID,
			FeedsIntoSlot:    m.FeedsIntoSlot,
		})
	}

	return &TournamentView{
		Tournament:   *tournament,
		Participants: listed,
		Matches:      matchViews,
	}, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	tournaments, err := s.tournamentRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	return tournaments, nil
}

func (s *tournamentService) Standings(ctx context.Context, tournamentID int) ([]models.Standing, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		return nil, mapTournamentRepoError(err)
	}

	var (
		participants []*models.Participant
		matches      []*models.Match
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		participants, err = s.participantRepo.ListByTournament(gCtx, tournamentID)
		return err
	})
	g.Go(func() error {
		var err error
		matches, err = s.matchRepo.ListByTournament(gCtx, tournamentID, nil, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load standings data for tournament %d: %w", tournamentID, err)
	}

	return computeStandings(participants, matches), nil
}

func (s *tournamentService) AutoStartDueTournaments(ctx context.Context) error {
	due, err := s.tournamentRepo.ListDueToStart(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("failed to list due tournaments: %w", err)
	}
	for _, t := range due {
		if err := s.tournamentRepo.UpdateStatus(ctx, nil, t.ID, models.TournamentStatusRunning); err != nil {
			s.logger.Error("failed to auto-start tournament",
				slog.Int("tournament_id", t.ID), slog.Any("error", err))
			continue
		}
		s.logger.Info("tournament auto-started", slog.Int("tournament_id", t.ID))
	}
	return nil
}

func mapTournamentRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrTournamentNameConflict):
		return ErrTournamentNameConflict
	default:
		return err
	}
}

package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/punchlemon/ft-transcendence-sub001/models"
)

var (
	ErrMatchNotFound           = errors.New("match not found")
	ErrMatchAlreadyDecided     = errors.New("match is no longer pending")
	ErrMatchParticipantInvalid = errors.New("match participant reference invalid")
	ErrMatchTournamentInvalid  = errors.New("match tournament reference invalid")
)

const matchColumns = `id, tournament_id, round, player_a_id, player_b_id, status,
	scheduled_at, winner_id, score_a, score_b, feeds_into_match_id, feeds_into_slot, created_at`

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, m *models.Match) error
	SetFeedsInto(ctx context.Context, exec SQLExecutor, matchID, feedsIntoMatchID, slot int) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	// GetByIDForUpdate locks the row for the duration of the caller's
	// transaction, serializing concurrent result submissions per match.
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int, round *int, status *models.MatchStatus) ([]*models.Match, error)
	// Finish records the result only while the match is still pending, so
	// at most one submission can ever succeed.
	Finish(ctx context.Context, exec SQLExecutor, id, winnerID, scoreA, scoreB int) error
	// AssignSlot writes a single player column, leaving the sibling slot
	// untouched; the two feeding matches of a downstream match therefore
	// never contend on the same write.
	AssignSlot(ctx context.Context, exec SQLExecutor, matchID, slot, participantID int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) executor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	query := `
		INSERT INTO matches
			(tournament_id, round, player_a_id, player_b_id, status, scheduled_at,
			 feeds_into_match_id, feeds_into_slot)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	err := r.executor(exec).QueryRowContext(ctx, query,
		m.TournamentID, m.Round, m.PlayerAID, m.PlayerBID, m.Status, m.ScheduledAt,
		m.FeedsIntoMatchID, m.FeedsIntoSlot,
	).Scan(&m.ID, &m.CreatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) SetFeedsInto(ctx context.Context, exec SQLExecutor, matchID, feedsIntoMatchID, slot int) error {
	query := `UPDATE matches SET feeds_into_match_id = $1, feeds_into_slot = $2 WHERE id = $3`
	result, err := r.executor(exec).ExecContext(ctx, query, feedsIntoMatchID, slot, matchID)
	if err != nil {
		return fmt.Errorf("failed to set feeds-into link for match %d: %w", matchID, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) scanMatch(rowScanner interface{ Scan(...interface{}) error }) (*models.Match, error) {
	m := &models.Match{}
	err := rowScanner.Scan(
		&m.ID, &m.TournamentID, &m.Round, &m.PlayerAID, &m.PlayerBID, &m.Status,
		&m.ScheduledAt, &m.WinnerID, &m.ScoreA, &m.ScoreB,
		&m.FeedsIntoMatchID, &m.FeedsIntoSlot, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match: %w", err)
	}
	return m, nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	return r.scanMatch(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresMatchRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1 FOR UPDATE`
	return r.scanMatch(r.executor(exec).QueryRowContext(ctx, query, id))
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID int, round *int, status *models.MatchStatus) ([]*models.Match, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + matchColumns + ` FROM matches WHERE tournament_id = $1`)

	args := []interface{}{tournamentID}
	placeholder := 2

	if round != nil {
		queryBuilder.WriteString(" AND round = $" + strconv.Itoa(placeholder))
		args = append(args, *round)
		placeholder++
	}
	if status != nil {
		queryBuilder.WriteString(" AND status = $" + strconv.Itoa(placeholder))
		args = append(args, *status)
	}

	queryBuilder.WriteString(" ORDER BY round ASC, id ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, err := r.scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating match rows: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) Finish(ctx context.Context, exec SQLExecutor, id, winnerID, scoreA, scoreB int) error {
	query := `
		UPDATE matches
		SET status = $1, winner_id = $2, score_a = $3, score_b = $4
		WHERE id = $5 AND status = $6`

	result, err := r.executor(exec).ExecContext(ctx, query,
		models.MatchStatusFinished, winnerID, scoreA, scoreB, id, models.MatchStatusPending,
	)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchAlreadyDecided)
}

func (r *postgresMatchRepository) AssignSlot(ctx context.Context, exec SQLExecutor, matchID, slot, participantID int) error {
	var column string
	switch slot {
	case models.SlotPlayerA:
		column = "player_a_id"
	case models.SlotPlayerB:
		column = "player_b_id"
	default:
		return fmt.Errorf("invalid slot %d for match %d", slot, matchID)
	}

	query := `UPDATE matches SET ` + column + ` = $1 WHERE id = $2`
	result, err := r.executor(exec).ExecContext(ctx, query, participantID, matchID)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
		switch pqErr.Constraint {
		case "matches_tournament_id_fkey":
			return ErrMatchTournamentInvalid
		case "matches_player_a_id_fkey", "matches_player_b_id_fkey", "matches_winner_id_fkey":
			return ErrMatchParticipantInvalid
		}
	}
	return err
}

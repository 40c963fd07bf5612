package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/punchlemon/ft-transcendence-sub001/models"
)

var (
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentNameConflict = errors.New("tournament name conflict for this owner")
	ErrTournamentInvalidOwner = errors.New("invalid tournament owner reference")
)

type ListTournamentsFilter struct {
	OwnerID *int
	Status  *models.TournamentStatus
	Limit   int
	Offset  int
}

type TournamentRepository interface {
	Create(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error
	// MarkRunning flips ready -> running; it is a no-op for any other
	// current status, so concurrent result submissions never conflict.
	MarkRunning(ctx context.Context, exec SQLExecutor, id int) error
	ListDueToStart(ctx context.Context, now time.Time) ([]*models.Tournament, error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) executor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTournamentRepository) Create(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	query := `
		INSERT INTO tournaments (name, owner_id, bracket_kind, status, start_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.executor(exec).QueryRowContext(ctx, query,
		t.Name, t.OwnerID, t.BracketKind, t.Status, t.StartAt,
	).Scan(&t.ID, &t.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				if pqErr.Constraint == "tournaments_owner_id_name_key" {
					return ErrTournamentNameConflict
				}
			case "23503":
				if pqErr.Constraint == "tournaments_owner_id_fkey" {
					return ErrTournamentInvalidOwner
				}
			}
		}
		return fmt.Errorf("failed to create tournament: %w", err)
	}
	return nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := `
		SELECT id, name, owner_id, bracket_kind, status, start_at, created_at
		FROM tournaments
		WHERE id = $1`

	t := &models.Tournament{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Name, &t.OwnerID, &t.BracketKind, &t.Status, &t.StartAt, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to scan tournament %d: %w", id, err)
	}
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
		SELECT id, name, owner_id, bracket_kind, status, start_at, created_at
		FROM tournaments
		WHERE 1=1`)

	args := make([]interface{}, 0, 4)
	placeholder := 1

	if filter.OwnerID != nil {
		queryBuilder.WriteString(" AND owner_id = $" + strconv.Itoa(placeholder))
		args = append(args, *filter.OwnerID)
		placeholder++
	}
	if filter.Status != nil {
		queryBuilder.WriteString(" AND status = $" + strconv.Itoa(placeholder))
		args = append(args, *filter.Status)
		placeholder++
	}

	queryBuilder.WriteString(" ORDER BY created_at DESC, id DESC")

	if filter.Limit > 0 {
		queryBuilder.WriteString(" LIMIT $" + strconv.Itoa(placeholder))
		args = append(args, filter.Limit)
		placeholder++
	}
	if filter.Offset > 0 {
		queryBuilder.WriteString(" OFFSET $" + strconv.Itoa(placeholder))
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		var t models.Tournament
		if err := rows.Scan(&t.ID, &t.Name, &t.OwnerID, &t.BracketKind, &t.Status, &t.StartAt, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", err)
		}
		tournaments = append(tournaments, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tournament rows: %w", err)
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error {
	query := `UPDATE tournaments SET status = $1 WHERE id = $2`
	result, err := r.executor(exec).ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update tournament %d status: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) MarkRunning(ctx context.Context, exec SQLExecutor, id int) error {
	query := `UPDATE tournaments SET status = $1 WHERE id = $2 AND status = $3`
	_, err := r.executor(exec).ExecContext(ctx, query, models.TournamentStatusRunning, id, models.TournamentStatusReady)
	if err != nil {
		return fmt.Errorf("failed to mark tournament %d running: %w", id, err)
	}
	return nil
}

func (r *postgresTournamentRepository) ListDueToStart(ctx context.Context, now time.Time) ([]*models.Tournament, error) {
	query := `
		SELECT id, name, owner_id, bracket_kind, status, start_at, created_at
		FROM tournaments
		WHERE status = $1 AND start_at IS NOT NULL AND start_at <= $2
		ORDER BY start_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, models.TournamentStatusReady, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments due to start: %w", err)
	}
	defer rows.Close()

	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		t := &models.Tournament{}
		if err := rows.Scan(&t.ID, &t.Name, &t.OwnerID, &t.BracketKind, &t.Status, &t.StartAt, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", err)
		}
		tournaments = append(tournaments, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tournament rows: %w", err)
	}
	return tournaments, nil
}

package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/punchlemon/ft-transcendence-sub001/models"
)

var (
	ErrFriendshipNotFound    = errors.New("friendship not found")
	ErrFriendshipConflict    = errors.New("friendship already exists between these users")
	ErrFriendshipUserInvalid = errors.New("friendship user reference invalid")
)

type FriendshipRepository interface {
	Create(ctx context.Context, f *models.Friendship) error
	FindByID(ctx context.Context, id int) (*models.Friendship, error)
	// FindBetween looks the pair up in either direction.
	FindBetween(ctx context.Context, userA, userB int) (*models.Friendship, error)
	UpdateStatus(ctx context.Context, id int, status models.FriendshipStatus) error
	// ListByUser returns friendships where the user is either side,
	// optionally filtered by status, with both users' display data joined.
	ListByUser(ctx context.Context, userID int, status *models.FriendshipStatus) ([]*models.Friendship, error)
}

type postgresFriendshipRepository struct {
	db *sql.DB
}

func NewPostgresFriendshipRepository(db *sql.DB) FriendshipRepository {
	return &postgresFriendshipRepository{db: db}
}

func (r *postgresFriendshipRepository) Create(ctx context.Context, f *models.Friendship) error {
	query := `
		INSERT INTO friendships (requester_id, addressee_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, f.RequesterID, f.AddresseeID, f.Status).
		Scan(&f.ID, &f.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				return ErrFriendshipConflict
			case "23503":
				return ErrFriendshipUserInvalid
			}
		}
		return fmt.Errorf("failed to create friendship: %w", err)
	}
	return nil
}

func (r *postgresFriendshipRepository) FindByID(ctx context.Context, id int) (*models.Friendship, error) {
	query := `
		SELECT id, requester_id, addressee_id, status, created_at
		FROM friendships
		WHERE id = $1`
	return r.findOne(ctx, query, id)
}

func (r *postgresFriendshipRepository) FindBetween(ctx context.Context, userA, userB int) (*models.Friendship, error) {
	query := `
		SELECT id, requester_id, addressee_id, status, created_at
		FROM friendships
		WHERE (requester_id = $1 AND addressee_id = $2)
		   OR (requester_id = $2 AND addressee_id = $1)`
	return r.findOne(ctx, query, userA, userB)
}

func (r *postgresFriendshipRepository) findOne(ctx context.Context, query string, args ...interface{}) (*models.Friendship, error) {
	f := &models.Friendship{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&f.ID, &f.RequesterID, &f.AddresseeID, &f.Status, &f.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFriendshipNotFound
		}
		return nil, fmt.Errorf("failed to scan friendship: %w", err)
	}
	return f, nil
}

func (r *postgresFriendshipRepository) UpdateStatus(ctx context.Context, id int, status models.FriendshipStatus) error {
	query := `UPDATE friendships SET status = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update friendship %d status: %w", id, err)
	}
	return checkAffectedRows(result, ErrFriendshipNotFound)
}

func (r *postgresFriendshipRepository) ListByUser(ctx context.Context, userID int, status *models.FriendshipStatus) ([]*models.Friendship, error) {
	query := `
		SELECT f.id, f.requester_id, f.addressee_id, f.status, f.created_at,
		       req.id, req.display_name, req.avatar_key,
		       adr.id, adr.display_name, adr.avatar_key
		FROM friendships f
		JOIN users req ON f.requester_id = req.id
		JOIN users adr ON f.addressee_id = adr.id
		WHERE (f.requester_id = $1 OR f.addressee_id = $1)`

	args := []interface{}{userID}
	if status != nil {
		query += " AND f.status = $2"
		args = append(args, *status)
	}
	query += " ORDER BY f.created_at DESC, f.id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list friendships for user %d: %w", userID, err)
	}
	defer rows.Close()

	friendships := make([]*models.Friendship, 0)
	for rows.Next() {
		f := &models.Friendship{}
		var req, adr models.User
		if err := rows.Scan(
			&f.ID, &f.RequesterID, &f.AddresseeID, &f.Status, &f.CreatedAt,
			&req.ID, &req.DisplayName, &req.AvatarKey,
			&adr.ID, &adr.DisplayName, &adr.AvatarKey,
		); err != nil {
			return nil, fmt.Errorf("failed to scan friendship row: %w", err)
		}
		f.Requester = &req
		f.Addressee = &adr
		friendships = append(friendships, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating friendship rows: %w", err)
	}
	return friendships, nil
}

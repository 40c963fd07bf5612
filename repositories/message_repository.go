package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/punchlemon/ft-transcendence-sub001/models"
)

var ErrMessageUserInvalid = errors.New("message user reference invalid")

type MessageRepository interface {
	Create(ctx context.Context, m *models.Message) error
	// ListConversation returns the newest messages between the two users,
	// oldest first within the window.
	ListConversation(ctx context.Context, userA, userB, limit int) ([]*models.Message, error)
}

type postgresMessageRepository struct {
	db *sql.DB
}

func NewPostgresMessageRepository(db *sql.DB) MessageRepository {
	return &postgresMessageRepository{db: db}
}

func (r *postgresMessageRepository) Create(ctx context.Context, m *models.Message) error {
	query := `
		INSERT INTO messages (sender_id, recipient_id, body)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, m.SenderID, m.RecipientID, m.Body).
		Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrMessageUserInvalid
		}
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

func (r *postgresMessageRepository) ListConversation(ctx context.Context, userA, userB, limit int) ([]*models.Message, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, sender_id, recipient_id, body, created_at
		FROM (
			SELECT id, sender_id, recipient_id, body, created_at
			FROM messages
			WHERE (sender_id = $1 AND recipient_id = $2)
			   OR (sender_id = $2 AND recipient_id = $1)
			ORDER BY id DESC
			LIMIT $3
		) latest
		ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, userA, userB, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversation: %w", err)
	}
	defer rows.Close()

	messages := make([]*models.Message, 0)
	for rows.Next() {
		m := &models.Message{}
		if err := rows.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.Body, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating message rows: %w", err)
	}
	return messages, nil
}

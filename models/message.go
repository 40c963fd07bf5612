package models

import "time"

// Message is a persisted direct chat message between two users.
type Message struct {
	ID          int       `json:"id" db:"id"`
	SenderID    int       `json:"sender_id" db:"sender_id"`
	RecipientID int       `json:"recipient_id" db:"recipient_id"`
	Body        string    `json:"body" db:"body"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

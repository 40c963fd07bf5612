package models

import "time"

type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
	FriendshipDeclined FriendshipStatus = "declined"
)

type Friendship struct {
	ID          int              `json:"id" db:"id"`
	RequesterID int              `json:"requester_id" db:"requester_id"`
	AddresseeID int              `json:"addressee_id" db:"addressee_id"`
	Status      FriendshipStatus `json:"status" db:"status"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`

	Requester *User `json:"requester,omitempty" db:"-"`
	Addressee *User `json:"addressee,omitempty" db:"-"`
}

// Other returns the counterpart of userID in the friendship.
func (f *Friendship) Other(userID int) int {
	if f.RequesterID == userID {
		return f.AddresseeID
	}
	return f.RequesterID
}

package services

import "errors"

// Sentinel errors shared across services and the HTTP error mapping.
var (
	// Generic
	ErrNotFound           = errors.New("requested resource not found")
	ErrValidationFailed   = errors.New("validation failed")
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")

	// Accounts
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAuthEmailTaken         = errors.New("email is already taken")
	ErrDisplayNameTaken       = errors.New("display name is already taken")
	ErrPasswordTooShort       = errors.New("password is too short")
	ErrUserNotFound           = errors.New("user not found")

	// Tournaments
	ErrTournamentNotFound       = errors.New("tournament not found")
	ErrTournamentNameRequired   = errors.New("tournament name is required")
	ErrTournamentNameConflict   = errors.New("tournament name already exists for this owner")
	ErrBracketKindUnsupported   = errors.New("unsupported bracket kind")
	ErrParticipantsRequired     = errors.New("at least one participant is required")
	ErrTooManyParticipants      = errors.New("a tournament cannot hold more than 64 participants")
	ErrParticipantAliasRequired = errors.New("participant alias must not be empty")
	ErrParticipantAliasConflict = errors.New("participant aliases must be unique within a tournament")
	ErrParticipantNotFound      = errors.New("participant not found")

	// Match results
	ErrMatchNotFound        = errors.New("match not found")
	ErrMatchNotReady        = errors.New("match slots are not yet resolved")
	ErrInvalidWinner        = errors.New("winner is not a player of this match")
	ErrScoresRequired       = errors.New("both scores are required to finish a match")
	ErrScoreInvalid         = errors.New("scores must be non-negative")
	ErrMatchAlreadyFinished = errors.New("match result has already been recorded")

	// Friends
	ErrFriendRequestSelf       = errors.New("cannot send a friend request to yourself")
	ErrFriendshipExists        = errors.New("a friendship already exists between these users")
	ErrFriendshipNotFound      = errors.New("friendship not found")
	ErrFriendRequestNotPending = errors.New("friend request is not pending")

	// Chat
	ErrMessageEmpty   = errors.New("message body must not be empty")
	ErrMessageTooLong = errors.New("message body is too long")
)

// Broadcaster is the subset of the WebSocket hub the services need; it keeps
// the hub replaceable in tests.
type Broadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
}

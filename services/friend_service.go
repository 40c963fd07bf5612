package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/punchlemon/ft-transcendence-sub001/models"
	"github.com/punchlemon/ft-transcendence-sub001/repositories"
)

type FriendService interface {
	SendRequest(ctx context.Context, requesterID, addresseeID int) (*models.Friendship, error)
	// Respond accepts or declines a pending request; only the addressee may
	// respond.
	Respond(ctx context.Context, userID, friendshipID int, accept bool) (*models.Friendship, error)
	ListFriendships(ctx context.Context, userID int, status *models.FriendshipStatus) ([]*models.Friendship, error)
}

type friendService struct {
	friendshipRepo repositories.FriendshipRepository
	userRepo       repositories.UserRepository
	logger         *slog.Logger
}

func NewFriendService(friendshipRepo repositories.FriendshipRepository, userRepo repositories.UserRepository, logger *slog.Logger) FriendService {
	return &friendService{friendshipRepo: friendshipRepo, userRepo: userRepo, logger: logger}
}

func (s *friendService) SendRequest(ctx context.Context, requesterID, addresseeID int) (*models.Friendship, error) {
	if requesterID == addresseeID {
		return nil, ErrFriendRequestSelf
	}

	if _, err := s.userRepo.GetByID(ctx, addresseeID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	f := &models.Friendship{
		RequesterID: requesterID,
		AddresseeID: addresseeID,
		Status:      models.FriendshipPending,
	}
	if err := s.friendshipRepo.Create(ctx, f); err != nil {
		switch {
		case errors.Is(err, repositories.ErrFriendshipConflict):
			return nil, ErrFriendshipExists
		case errors.Is(err, repositories.ErrFriendshipUserInvalid):
			return nil, ErrUserNotFound
		default:
			return nil, err
		}
	}

	s.logger.Info("friend request sent",
		slog.Int("requester_id", requesterID), slog.Int("addressee_id", addresseeID))
	return f, nil
}

func (s *friendService) Respond(ctx context.Context, userID, friendshipID int, accept bool) (*models.Friendship, error) {
	f, err := s.friendshipRepo.FindByID(ctx, friendshipID)
	if err != nil {
		if errors.Is(err, repositories.ErrFriendshipNotFound) {
			return nil, ErrFriendshipNotFound
		}
		return nil, err
	}

	if f.AddresseeID != userID {
		return nil, ErrForbiddenOperation
	}
	if f.Status != models.FriendshipPending {
		return nil, ErrFriendRequestNotPending
	}

	status := models.FriendshipDeclined
	if accept {
		status = models.FriendshipAccepted
	}
	if err := s.friendshipRepo.UpdateStatus(ctx, friendshipID, status); err != nil {
		return nil, fmt.Errorf("failed to update friendship %d: %w", friendshipID, err)
	}

	f.Status = status
	return f, nil
}

func (s *friendService) ListFriendships(ctx context.Context, userID int, status *models.FriendshipStatus) ([]*models.Friendship, error) {
	friendships, err := s.friendshipRepo.ListByUser(ctx, userID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list friendships: %w", err)
	}
	return friendships, nil
}

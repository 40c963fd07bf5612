package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/punchlemon/ft-transcendence-sub001/brackets"
	"github.com/punchlemon/ft-transcendence-sub001/models"
	"github.com/punchlemon/ft-transcendence-sub001/repositories"
)

const maxMessageLength = 2000

type ChatService interface {
	// SendDirectMessage persists the message and pushes it to both users'
	// live rooms.
	SendDirectMessage(ctx context.Context, senderID, recipientID int, body string) (*models.Message, error)
	Conversation(ctx context.Context, userID, otherID, limit int) ([]*models.Message, error)
}

type chatService struct {
	messageRepo repositories.MessageRepository
	hub         Broadcaster
	logger      *slog.Logger
}

func NewChatService(messageRepo repositories.MessageRepository, hub Broadcaster, logger *slog.Logger) ChatService {
	return &chatService{messageRepo: messageRepo, hub: hub, logger: logger}
}

func (s *chatService) SendDirectMessage(ctx context.Context, senderID, recipientID int, body string) (*models.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrMessageEmpty
	}
	if len(body) > maxMessageLength {
		return nil, fmt.Errorf("%w: limit is %d characters", ErrMessageTooLong, maxMessageLength)
	}

	m := &models.Message{
		SenderID:    senderID,
		RecipientID: recipientID,
		Body:        body,
	}
	if err := s.messageRepo.Create(ctx, m); err != nil {
		if errors.Is(err, repositories.ErrMessageUserInvalid) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if s.hub != nil {
		payload := map[string]interface{}{
			"type":    brackets.EventChatMessage,
			"message": m,
		}
		s.hub.BroadcastToRoom(brackets.UserRoom(recipientID), payload)
		s.hub.BroadcastToRoom(brackets.UserRoom(senderID), payload)
	}

	s.logger.Debug("direct message sent",
		slog.Int("message_id", m.ID),
		slog.Int("sender_id", senderID),
		slog.Int("recipient_id", recipientID),
	)

	return m, nil
}

func (s *chatService) Conversation(ctx context.Context, userID, otherID, limit int) ([]*models.Message, error) {
	messages, err := s.messageRepo.ListConversation(ctx, userID, otherID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	return messages, nil
}

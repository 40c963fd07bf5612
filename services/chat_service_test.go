package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/punchlemon/ft-transcendence-sub001/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMessageRepo struct {
	messages []*models.Message
	nextID   int
}

func (r *fakeMessageRepo) Create(_ context.Context, m *models.Message) error {
	r.nextID++
	m.ID = r.nextID
	m.CreatedAt = time.Now()
	copied := *m
	r.messages = append(r.messages, &copied)
	return nil
}

func (r *fakeMessageRepo) ListConversation(_ context.Context, userA, userB, limit int) ([]*models.Message, error) {
	out := make([]*models.Message, 0)
	for _, m := range r.messages {
		if (m.SenderID == userA && m.RecipientID == userB) ||
			(m.SenderID == userB && m.RecipientID == userA) {
			copied := *m
			out = append(out, &copied)
		}
	}
	return out, nil
}

func TestSendDirectMessage(t *testing.T) {
	repo := &fakeMessageRepo{}
	hub := &fakeBroadcaster{}
	svc := NewChatService(repo, hub, testLogger())

	msg, err := svc.SendDirectMessage(context.Background(), 1, 2, "  hello  ")
	require.NoError(t, err)

	assert.Equal(t, "hello", msg.Body)
	require.Len(t, repo.messages, 1)

	// Both sides of the conversation get the live event.
	assert.ElementsMatch(t, []string{"user_1", "user_2"}, hub.rooms)
}

func TestSendDirectMessageValidation(t *testing.T) {
	svc := NewChatService(&fakeMessageRepo{}, &fakeBroadcaster{}, testLogger())

	_, err := svc.SendDirectMessage(context.Background(), 1, 2, "   ")
	assert.ErrorIs(t, err, ErrMessageEmpty)

	_, err = svc.SendDirectMessage(context.Background(), 1, 2, strings.Repeat("x", 2001))
	assert.ErrorIs(t, err, ErrMessageTooLong)
}

func TestConversation(t *testing.T) {
	repo := &fakeMessageRepo{}
	svc := NewChatService(repo, &fakeBroadcaster{}, testLogger())

	_, err := svc.SendDirectMessage(context.Background(), 1, 2, "hi")
	require.NoError(t, err)
	_, err = svc.SendDirectMessage(context.Background(), 2, 1, "hey")
	require.NoError(t, err)
	_, err = svc.SendDirectMessage(context.Background(), 1, 3, "other thread")
	require.NoError(t, err)

	messages, err := svc.Conversation(context.Background(), 1, 2, 50)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "hi", messages[0].Body)
	assert.Equal(t, "hey", messages[1].Body)
}

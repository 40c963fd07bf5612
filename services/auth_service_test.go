package services

import (
	"context"
	"testing"
	"time"

	"github.com/punchlemon/ft-transcendence-sub001/models"
	"github.com/punchlemon/ft-transcendence-sub001/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeUserRepo struct {
	users  map[int]*models.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int]*models.User), nextID: 1}
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return repositories.ErrUserEmailConflict
		}
		if existing.DisplayName == user.DisplayName {
			return repositories.ErrUserDisplayNameConflict
		}
	}
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	r.nextID++
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) SearchByDisplayName(_ context.Context, _ string, _ int) ([]*models.User, error) {
	return nil, nil
}

func (r *fakeUserRepo) UpdateAvatarKey(_ context.Context, id int, avatarKey *string) error {
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.AvatarKey = avatarKey
	return nil
}

func TestRegisterHashesPassword(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, testLogger())

	user, err := svc.Register(context.Background(), RegisterInput{
		DisplayName: "alice",
		Email:       "Alice@Example.com",
		Password:    "correct horse",
	})
	require.NoError(t, err)

	// Email is normalized and the password never stored in the clear.
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEqual(t, "correct horse", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("correct horse")))
}

func TestRegisterValidation(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, testLogger())

	_, err := svc.Register(context.Background(), RegisterInput{
		DisplayName: "alice", Email: "a@b.c", Password: "short",
	})
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	_, err = svc.Register(context.Background(), RegisterInput{
		Email: "a@b.c", Password: "long enough",
	})
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestRegisterConflicts(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, testLogger())

	_, err := svc.Register(context.Background(), RegisterInput{
		DisplayName: "alice", Email: "alice@example.com", Password: "long enough",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterInput{
		DisplayName: "alice2", Email: "alice@example.com", Password: "long enough",
	})
	assert.ErrorIs(t, err, ErrAuthEmailTaken)

	_, err = svc.Register(context.Background(), RegisterInput{
		DisplayName: "alice", Email: "other@example.com", Password: "long enough",
	})
	assert.ErrorIs(t, err, ErrDisplayNameTaken)
}

func TestLogin(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, testLogger())

	_, err := svc.Register(context.Background(), RegisterInput{
		DisplayName: "alice", Email: "alice@example.com", Password: "long enough",
	})
	require.NoError(t, err)

	user, err := svc.Login(context.Background(), models.Credentials{
		Email: "ALICE@example.com", Password: "long enough",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.DisplayName)

	_, err = svc.Login(context.Background(), models.Credentials{
		Email: "alice@example.com", Password: "wrong",
	})
	assert.ErrorIs(t, err, ErrAuthInvalidCredentials)

	// Unknown emails fail exactly like bad passwords.
	_, err = svc.Login(context.Background(), models.Credentials{
		Email: "nobody@example.com", Password: "long enough",
	})
	assert.ErrorIs(t, err, ErrAuthInvalidCredentials)
}

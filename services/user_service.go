package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/punchlemon/ft-transcendence-sub001/models"
	"github.com/punchlemon/ft-transcendence-sub001/repositories"
	"github.com/punchlemon/ft-transcendence-sub001/storage"
)

var allowedAvatarTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

var ErrAvatarTypeUnsupported = errors.New("avatar content type is not supported")

type UserService interface {
	GetUserByID(ctx context.Context, id int) (*models.User, error)
	SearchUsers(ctx context.Context, query string, limit int) ([]*models.User, error)
	UpdateAvatar(ctx context.Context, userID int, contentType string, body io.Reader) (*models.User, error)
}

type userService struct {
	userRepo repositories.UserRepository
	uploader storage.FileUploader
	logger   *slog.Logger
}

func NewUserService(userRepo repositories.UserRepository, uploader storage.FileUploader, logger *slog.Logger) UserService {
	return &userService{userRepo: userRepo, uploader: uploader, logger: logger}
}

func (s *userService) withAvatarURL(u *models.User) *models.User {
	if u.AvatarKey != nil && s.uploader != nil {
		url := s.uploader.GetPublicURL(*u.AvatarKey)
		if url != "" {
			u.AvatarURL = &url
		}
	}
	return u
}

func (s *userService) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.withAvatarURL(user), nil
}

func (s *userService) SearchUsers(ctx context.Context, query string, limit int) ([]*models.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: search query is required", ErrValidationFailed)
	}
	users, err := s.userRepo.SearchByDisplayName(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	for _, u := range users {
		s.withAvatarURL(u)
	}
	return users, nil
}

// UpdateAvatar uploads the new image first and deletes the old object only
// after the database points at the new key, so a failed upload never leaves
// the user without an avatar.
func (s *userService) UpdateAvatar(ctx context.Context, userID int, contentType string, body io.Reader) (*models.User, error) {
	if s.uploader == nil {
		return nil, errors.New("avatar storage is not configured")
	}
	ext, ok := allowedAvatarTypes[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrAvatarTypeUnsupported, contentType)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	key := path.Join("avatars", fmt.Sprintf("%d-%d%s", userID, time.Now().UnixNano(), ext))
	result, err := s.uploader.Upload(ctx, key, contentType, body)
	if err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}

	if err := s.userRepo.UpdateAvatarKey(ctx, userID, &result.Key); err != nil {
		if delErr := s.uploader.Delete(ctx, result.Key); delErr != nil {
			s.logger.Error("failed to clean up orphaned avatar object",
				slog.String("key", result.Key), slog.Any("error", delErr))
		}
		return nil, err
	}

	if user.AvatarKey != nil && *user.AvatarKey != result.Key {
		if err := s.uploader.Delete(ctx, *user.AvatarKey); err != nil {
			s.logger.Warn("failed to delete previous avatar object",
				slog.String("key", *user.AvatarKey), slog.Any("error", err))
		}
	}

	user.AvatarKey = &result.Key
	return s.withAvatarURL(user), nil
}

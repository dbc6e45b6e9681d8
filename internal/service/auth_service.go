package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/noah-isme/oppia-go-api/internal/middleware"
	"github.com/noah-isme/oppia-go-api/internal/models"
	"github.com/noah-isme/oppia-go-api/internal/repository"
)

// ErrUserNotFound indicates the referenced account does not exist.
var ErrUserNotFound = errors.New("user not found")

// AuthService resolves accounts for the api-key and session middlewares.
type AuthService interface {
	AuthenticateAPIKey(ctx context.Context, username, key string) (models.User, error)
	GetUser(ctx context.Context, id uint) (models.User, error)
}

type authService struct {
	users repository.UserRepository
}

// NewAuthService constructs the auth service.
func NewAuthService(users repository.UserRepository) AuthService {
	return &authService{users: users}
}

func (s *authService) AuthenticateAPIKey(ctx context.Context, username, key string) (models.User, error) {
	username = strings.TrimSpace(username)
	key = strings.TrimSpace(key)
	if username == "" || key == "" {
		return models.User{}, middleware.ErrInvalidCredentials
	}

	user, err := s.users.GetByAPIKey(ctx, username, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, middleware.ErrInvalidCredentials
		}
		return models.User{}, err
	}
	return user, nil
}

func (s *authService) GetUser(ctx context.Context, id uint) (models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

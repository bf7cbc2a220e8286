// File: internal/services/user_services/user_service.go
package user_services

import (
	"context"
	"errors"

	"github.com/companionhq/companion/internal/auth"
	"github.com/companionhq/companion/internal/domain"
	"github.com/companionhq/companion/internal/repository/user"
)

var (
	ErrUserExists         = errors.New("username or email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UserService handles registration and credential checks. Tokens are issued
// here; nothing else in the API enforces them.
type UserService struct {
	userRepo  user.UserRepository
	jwtSecret []byte
}

func NewUserService(userRepo user.UserRepository, jwtSecret string) *UserService {
	return &UserService{userRepo: userRepo, jwtSecret: []byte(jwtSecret)}
}

// RegisterUser validates and creates a new account with a hashed credential.
func (s *UserService) RegisterUser(ctx context.Context, newUser *domain.User, password string) (*domain.User, error) {
	if err := newUser.IsValid(); err != nil {
		return nil, err
	}
	if err := newUser.HashPassword(password); err != nil {
		return nil, err
	}

	taken, err := s.userRepo.ExistsByUsernameOrEmail(ctx, newUser.Username, newUser.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrUserExists
	}

	return s.userRepo.Create(ctx, newUser)
}

// Login checks the credentials and returns a signed token plus the user row.
func (s *UserService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	found, err := s.userRepo.FindByUsername(ctx, username)
	if errors.Is(err, user.ErrUserNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}

	if err := found.ValidatePassword(password); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := auth.GenerateJWT(found.ID, s.jwtSecret)
	if err != nil {
		return "", nil, err
	}
	return token, found, nil
}

// ValidateJWTToken resolves a token back to a user id.
func (s *UserService) ValidateJWTToken(token string) (string, error) {
	return auth.ValidateToken(token, s.jwtSecret)
}

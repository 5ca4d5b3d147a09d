// Package bootstrap creates the first administrative user. The operation is
// unauthenticated but single-use: once any user holds the admin role it is
// permanently disabled.
package bootstrap

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gatewarden/gatewarden/internal/shared"
	"github.com/gatewarden/gatewarden/internal/users"
)

// Service wraps bootstrap business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateAdmin validates the input, hashes the password and creates the one
// allowed admin user with superuser and staff flags forced on.
func (s *Service) CreateAdmin(ctx context.Context, username, email, password string) (users.User, error) {
	username = strings.TrimSpace(username)
	if len(username) < 4 || len(username) > 20 {
		return users.User{}, fmt.Errorf("%w: username must be 4-20 characters", shared.ErrValidation)
	}
	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return users.User{}, fmt.Errorf("%w: invalid email address", shared.ErrValidation)
	}
	if len(password) < 8 {
		return users.User{}, fmt.Errorf("%w: password must be at least 8 characters", shared.ErrValidation)
	}

	hash, err := users.HashPassword(password)
	if err != nil {
		return users.User{}, err
	}

	return s.repo.CreateAdmin(ctx, users.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
		IsStaff:      true,
		IsSuperuser:  true,
		DateJoined:   time.Now().UTC(),
	})
}

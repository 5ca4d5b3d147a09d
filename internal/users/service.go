package users

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/gatewarden/gatewarden/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, id uuid.UUID) (User, error)
	CreateUser(ctx context.Context, u User) (User, error)
	UpdateUser(ctx context.Context, u User) (User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
	RoleIDByName(ctx context.Context, name string) (int64, error)
}

// Service handles user business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// CreateParams carries the fields accepted at registration.
type CreateParams struct {
	Username    string
	FirstName   string
	LastName    string
	Email       string
	Password    string
	RoleName    string
	IsActive    bool
	IsStaff     bool
	IsSuperuser bool
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

// GetUser fetches a user by ID.
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (User, error) {
	return s.repo.GetUser(ctx, id)
}

// CreateUser registers a new user. The plaintext password is hashed before
// anything is persisted.
func (s *Service) CreateUser(ctx context.Context, p CreateParams) (User, error) {
	username := strings.TrimSpace(p.Username)
	if len(username) < 4 || len(username) > 20 {
		return User{}, fmt.Errorf("%w: username must be 4-20 characters", shared.ErrValidation)
	}
	email := strings.TrimSpace(p.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return User{}, fmt.Errorf("%w: invalid email address", shared.ErrValidation)
	}
	if p.Password == "" {
		return User{}, fmt.Errorf("%w: password required", shared.ErrValidation)
	}

	var roleID *int64
	roleName := strings.TrimSpace(p.RoleName)
	if roleName == "" {
		return User{}, fmt.Errorf("%w: role required", shared.ErrValidation)
	}
	id, err := s.repo.RoleIDByName(ctx, roleName)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return User{}, fmt.Errorf("%w: role %q does not exist", shared.ErrValidation, roleName)
		}
		return User{}, err
	}
	roleID = &id

	hash, err := HashPassword(p.Password)
	if err != nil {
		return User{}, err
	}

	return s.repo.CreateUser(ctx, User{
		ID:           uuid.New(),
		Username:     username,
		FirstName:    strings.TrimSpace(p.FirstName),
		LastName:     strings.TrimSpace(p.LastName),
		Email:        email,
		PasswordHash: hash,
		RoleID:       roleID,
		IsActive:     p.IsActive,
		IsStaff:      p.IsStaff,
		IsSuperuser:  p.IsSuperuser,
		DateJoined:   time.Now().UTC(),
	})
}

// UpdateParams carries the mutable fields of a user.
type UpdateParams struct {
	Username    string
	FirstName   string
	LastName    string
	Email       string
	RoleName    string
	IsActive    bool
	IsStaff     bool
	IsSuperuser bool
}

// UpdateUser replaces the mutable fields of an existing user.
func (s *Service) UpdateUser(ctx context.Context, id uuid.UUID, p UpdateParams) (User, error) {
	current, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return User{}, err
	}

	username := strings.TrimSpace(p.Username)
	if len(username) < 4 || len(username) > 20 {
		return User{}, fmt.Errorf("%w: username must be 4-20 characters", shared.ErrValidation)
	}
	email := strings.TrimSpace(p.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return User{}, fmt.Errorf("%w: invalid email address", shared.ErrValidation)
	}

	var roleID *int64
	if roleName := strings.TrimSpace(p.RoleName); roleName != "" {
		rid, err := s.repo.RoleIDByName(ctx, roleName)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return User{}, fmt.Errorf("%w: role %q does not exist", shared.ErrValidation, roleName)
			}
			return User{}, err
		}
		roleID = &rid
	}

	current.Username = username
	current.FirstName = strings.TrimSpace(p.FirstName)
	current.LastName = strings.TrimSpace(p.LastName)
	current.Email = email
	current.RoleID = roleID
	current.IsActive = p.IsActive
	current.IsStaff = p.IsStaff
	current.IsSuperuser = p.IsSuperuser

	return s.repo.UpdateUser(ctx, current)
}

// DeleteUser removes a user by ID.
func (s *Service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteUser(ctx, id)
}

// HashPassword derives a bcrypt hash from the plaintext password.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("users: hash password: %w", err)
	}
	return string(hash), nil
}

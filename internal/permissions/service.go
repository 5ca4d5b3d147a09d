package permissions

import (
	"context"
	"fmt"
	"strings"

	"github.com/gatewarden/gatewarden/internal/shared"
)

// RepositoryPort defines data access methods for permissions.
type RepositoryPort interface {
	ListPermissions(ctx context.Context) ([]Permission, error)
	GetPermission(ctx context.Context, id int64) (Permission, error)
	CreatePermission(ctx context.Context, name, description string, endpointIDs []int64) (Permission, error)
	UpdatePermission(ctx context.Context, id int64, name, description string, endpointIDs []int64) (Permission, error)
	DeletePermission(ctx context.Context, id int64) error
}

// Service handles permission business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListPermissions returns all permissions.
func (s *Service) ListPermissions(ctx context.Context) ([]Permission, error) {
	return s.repo.ListPermissions(ctx)
}

// GetPermission fetches a permission by ID.
func (s *Service) GetPermission(ctx context.Context, id int64) (Permission, error) {
	return s.repo.GetPermission(ctx, id)
}

// CreatePermission inserts a new permission with its endpoint set.
func (s *Service) CreatePermission(ctx context.Context, name, description string, endpointIDs []int64) (Permission, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Permission{}, fmt.Errorf("%w: permission name required", shared.ErrValidation)
	}
	return s.repo.CreatePermission(ctx, name, strings.TrimSpace(description), endpointIDs)
}

// UpdatePermission updates a permission and replaces its endpoint set.
func (s *Service) UpdatePermission(ctx context.Context, id int64, name, description string, endpointIDs []int64) (Permission, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Permission{}, fmt.Errorf("%w: permission name required", shared.ErrValidation)
	}
	return s.repo.UpdatePermission(ctx, id, name, strings.TrimSpace(description), endpointIDs)
}

// DeletePermission removes a permission by ID.
func (s *Service) DeletePermission(ctx context.Context, id int64) error {
	return s.repo.DeletePermission(ctx, id)
}

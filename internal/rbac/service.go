// Package rbac implements the per-request authorization guard. The policy is
// fail closed: no role, unknown user and unregistered endpoint all deny.
package rbac

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/gatewarden/gatewarden/internal/shared"
)

// RepositoryPort defines data access methods for authorization checks.
type RepositoryPort interface {
	UserRoleID(ctx context.Context, userID uuid.UUID) (*int64, error)
	EndpointExists(ctx context.Context, name string) (bool, error)
	RoleGrantsEndpoint(ctx context.Context, roleID int64, endpointName string) (bool, error)
}

// Guard decides whether a user may reach an endpoint. It is side-effect free
// and never consults the superuser flag; access flows only through the
// role -> permission -> endpoint chain.
type Guard struct {
	repo RepositoryPort
}

// NewGuard builds Guard instance.
func NewGuard(repo RepositoryPort) *Guard {
	return &Guard{repo: repo}
}

// Authorize reports whether the user identified by userID may call the route
// identified by (method, routeName).
func (g *Guard) Authorize(ctx context.Context, userID, method, routeName string) (bool, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return false, nil
	}

	roleID, err := g.repo.UserRoleID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if roleID == nil {
		return false, nil
	}

	name := shared.EndpointName(method, routeName)
	exists, err := g.repo.EndpointExists(ctx, name)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, nil
	}

	return g.repo.RoleGrantsEndpoint(ctx, *roleID, name)
}

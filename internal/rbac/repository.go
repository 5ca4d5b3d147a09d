package rbac

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatewarden/gatewarden/internal/shared"
)

// Repository provides PostgreSQL backed authorization queries.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// UserRoleID returns the role ID of the user, or nil when no role is assigned.
func (r *Repository) UserRoleID(ctx context.Context, userID uuid.UUID) (*int64, error) {
	var roleID *int64
	err := r.pool.QueryRow(ctx, `SELECT role_id FROM users WHERE id = $1`, userID).Scan(&roleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return roleID, nil
}

// EndpointExists reports whether an endpoint with the given name is registered.
func (r *Repository) EndpointExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM api_endpoints WHERE name = $1)`, name).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// RoleGrantsEndpoint reports whether any permission of the role covers the
// endpoint with the given name. This is a live join on every call; membership
// mutations are visible to the next check without cache invalidation.
func (r *Repository) RoleGrantsEndpoint(ctx context.Context, roleID int64, endpointName string) (bool, error) {
	var granted bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM role_permissions rp
			JOIN permission_endpoints pe ON pe.permission_id = rp.permission_id
			JOIN api_endpoints ae ON ae.id = pe.endpoint_id
			WHERE rp.role_id = $1 AND ae.name = $2
		)`, roleID, endpointName).Scan(&granted)
	if err != nil {
		return false, err
	}
	return granted, nil
}

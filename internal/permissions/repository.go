package permissions

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatewarden/gatewarden/internal/platform/db"
	"github.com/gatewarden/gatewarden/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListPermissions returns all permissions with their endpoint sets.
func (r *Repository) ListPermissions(ctx context.Context) ([]Permission, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, description FROM permissions ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var perms []Permission
	for rows.Next() {
		var p Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Description); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range perms {
		ids, err := r.endpointIDs(ctx, perms[i].ID)
		if err != nil {
			return nil, err
		}
		perms[i].EndpointIDs = ids
	}
	return perms, nil
}

// GetPermission fetches a permission by ID.
func (r *Repository) GetPermission(ctx context.Context, id int64) (Permission, error) {
	var p Permission
	err := r.pool.QueryRow(ctx, `SELECT id, name, description FROM permissions WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Permission{}, shared.ErrNotFound
		}
		return Permission{}, err
	}
	ids, err := r.endpointIDs(ctx, p.ID)
	if err != nil {
		return Permission{}, err
	}
	p.EndpointIDs = ids
	return p, nil
}

// GetPermissionByName fetches a permission by its unique name.
func (r *Repository) GetPermissionByName(ctx context.Context, name string) (Permission, error) {
	var p Permission
	err := r.pool.QueryRow(ctx, `SELECT id, name, description FROM permissions WHERE name = $1`, name).
		Scan(&p.ID, &p.Name, &p.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Permission{}, shared.ErrNotFound
		}
		return Permission{}, err
	}
	ids, err := r.endpointIDs(ctx, p.ID)
	if err != nil {
		return Permission{}, err
	}
	p.EndpointIDs = ids
	return p, nil
}

// CreatePermission inserts a new permission and attaches the endpoint set.
func (r *Repository) CreatePermission(ctx context.Context, name, description string, endpointIDs []int64) (Permission, error) {
	var p Permission
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO permissions (name, description) VALUES ($1, $2) RETURNING id, name, description`,
			name, description).
			Scan(&p.ID, &p.Name, &p.Description)
		if err != nil {
			return mapConstraintError(err)
		}
		return attachEndpoints(ctx, tx, p.ID, endpointIDs)
	})
	if err != nil {
		return Permission{}, err
	}
	p.EndpointIDs = endpointIDs
	return p, nil
}

// UpdatePermission updates a permission and replaces its endpoint set.
func (r *Repository) UpdatePermission(ctx context.Context, id int64, name, description string, endpointIDs []int64) (Permission, error) {
	var p Permission
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`UPDATE permissions SET name = $2, description = $3 WHERE id = $1 RETURNING id, name, description`,
			id, name, description).
			Scan(&p.ID, &p.Name, &p.Description)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return shared.ErrNotFound
			}
			return mapConstraintError(err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM permission_endpoints WHERE permission_id = $1`, id); err != nil {
			return err
		}
		return attachEndpoints(ctx, tx, id, endpointIDs)
	})
	if err != nil {
		return Permission{}, err
	}
	p.EndpointIDs = endpointIDs
	return p, nil
}

// SetEndpoints replaces the endpoint set of a permission wholesale.
func (r *Repository) SetEndpoints(ctx context.Context, permissionID int64, endpointIDs []int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM permission_endpoints WHERE permission_id = $1`, permissionID); err != nil {
			return err
		}
		return attachEndpoints(ctx, tx, permissionID, endpointIDs)
	})
}

// DeletePermission removes a permission by ID.
func (r *Repository) DeletePermission(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM permissions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// GetOrCreatePermission returns the permission with the given name, creating it when absent.
func (r *Repository) GetOrCreatePermission(ctx context.Context, name, description string) (Permission, error) {
	p, err := r.GetPermissionByName(ctx, name)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return Permission{}, err
	}
	p, err = r.CreatePermission(ctx, name, description, nil)
	if errors.Is(err, shared.ErrDuplicate) {
		return r.GetPermissionByName(ctx, name)
	}
	return p, err
}

func (r *Repository) endpointIDs(ctx context.Context, permissionID int64) ([]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT endpoint_id FROM permission_endpoints WHERE permission_id = $1 ORDER BY endpoint_id`, permissionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func attachEndpoints(ctx context.Context, tx pgx.Tx, permissionID int64, endpointIDs []int64) error {
	for _, epID := range endpointIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO permission_endpoints (permission_id, endpoint_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			permissionID, epID); err != nil {
			return err
		}
	}
	return nil
}

func mapConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return shared.ErrDuplicate
	}
	return err
}

package endpoints

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

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

// ListEndpoints returns all endpoints ordered by ID.
func (r *Repository) ListEndpoints(ctx context.Context) ([]Endpoint, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, path, method, name FROM api_endpoints ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Endpoint
	for rows.Next() {
		var ep Endpoint
		if err := rows.Scan(&ep.ID, &ep.Path, &ep.Method, &ep.Name); err != nil {
			return nil, err
		}
		list = append(list, ep)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// GetEndpoint fetches an endpoint by ID.
func (r *Repository) GetEndpoint(ctx context.Context, id int64) (Endpoint, error) {
	var ep Endpoint
	err := r.pool.QueryRow(ctx, `SELECT id, path, method, name FROM api_endpoints WHERE id = $1`, id).
		Scan(&ep.ID, &ep.Path, &ep.Method, &ep.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Endpoint{}, shared.ErrNotFound
		}
		return Endpoint{}, err
	}
	return ep, nil
}

// GetEndpointByName fetches an endpoint by its canonical name.
func (r *Repository) GetEndpointByName(ctx context.Context, name string) (Endpoint, error) {
	var ep Endpoint
	err := r.pool.QueryRow(ctx, `SELECT id, path, method, name FROM api_endpoints WHERE name = $1`, name).
		Scan(&ep.ID, &ep.Path, &ep.Method, &ep.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Endpoint{}, shared.ErrNotFound
		}
		return Endpoint{}, err
	}
	return ep, nil
}

// CreateEndpoint inserts a new endpoint.
func (r *Repository) CreateEndpoint(ctx context.Context, path, method, name string) (Endpoint, error) {
	var ep Endpoint
	err := r.pool.QueryRow(ctx,
		`INSERT INTO api_endpoints (path, method, name) VALUES ($1, $2, $3) RETURNING id, path, method, name`,
		path, method, name).
		Scan(&ep.ID, &ep.Path, &ep.Method, &ep.Name)
	if err != nil {
		return Endpoint{}, mapConstraintError(err)
	}
	return ep, nil
}

// GetOrCreateEndpoint returns the endpoint with the given name, creating it when absent.
// Path and method are only applied on creation.
func (r *Repository) GetOrCreateEndpoint(ctx context.Context, path, method, name string) (Endpoint, bool, error) {
	ep, err := r.GetEndpointByName(ctx, name)
	if err == nil {
		return ep, false, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return Endpoint{}, false, err
	}
	created, err := r.CreateEndpoint(ctx, path, method, name)
	if err != nil {
		// Lost a race with a concurrent insert; the row exists now.
		if errors.Is(err, shared.ErrDuplicate) {
			ep, err = r.GetEndpointByName(ctx, name)
			return ep, false, err
		}
		return Endpoint{}, false, err
	}
	return created, true, nil
}

// UpdateEndpoint updates an existing endpoint.
func (r *Repository) UpdateEndpoint(ctx context.Context, id int64, path, method, name string) (Endpoint, error) {
	var ep Endpoint
	err := r.pool.QueryRow(ctx,
		`UPDATE api_endpoints SET path = $2, method = $3, name = $4 WHERE id = $1 RETURNING id, path, method, name`,
		id, path, method, name).
		Scan(&ep.ID, &ep.Path, &ep.Method, &ep.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Endpoint{}, shared.ErrNotFound
		}
		return Endpoint{}, mapConstraintError(err)
	}
	return ep, nil
}

// DeleteEndpoint removes an endpoint by ID.
func (r *Repository) DeleteEndpoint(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM api_endpoints WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
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

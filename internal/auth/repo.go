package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatewarden/gatewarden/internal/users"
)

// Repository defines persistence operations for the token service.
type Repository interface {
	FindUserByUsernameOrEmail(ctx context.Context, identifier string) (users.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	BlacklistToken(ctx context.Context, jti string, userID uuid.UUID, expiresAt time.Time) error
	IsTokenBlacklisted(ctx context.Context, jti string) (bool, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool  *pgxpool.Pool
	users *users.Repository
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool, users: users.NewRepository(pool)}
}

// FindUserByUsernameOrEmail resolves the identifier as username first, then email.
func (r *PGRepository) FindUserByUsernameOrEmail(ctx context.Context, identifier string) (users.User, error) {
	return r.users.FindByUsernameOrEmail(ctx, identifier)
}

// UpdateLastLogin stamps the user's last successful login time.
func (r *PGRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.users.UpdateLastLogin(ctx, id, at)
}

// BlacklistToken persists a revoked token identifier. Revocation is terminal;
// re-revoking the same token is a no-op.
func (r *PGRepository) BlacklistToken(ctx context.Context, jti string, userID uuid.UUID, expiresAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO token_blacklist (jti, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (jti) DO NOTHING`,
		jti, userID, expiresAt.UTC(), time.Now().UTC())
	return err
}

// IsTokenBlacklisted reports whether the token identifier has been revoked.
func (r *PGRepository) IsTokenBlacklisted(ctx context.Context, jti string) (bool, error) {
	var revoked bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM token_blacklist WHERE jti = $1)`, jti).Scan(&revoked)
	if err != nil {
		return false, err
	}
	return revoked, nil
}

// PurgeExpiredTokens deletes blacklist rows whose expiry has passed. The jti
// can never be replayed once its token expired, so the row is dead weight.
func (r *PGRepository) PurgeExpiredTokens(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM token_blacklist WHERE expires_at < $1`, before.UTC())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

var _ Repository = (*PGRepository)(nil)

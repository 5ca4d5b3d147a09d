package bootstrap

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatewarden/gatewarden/internal/platform/db"
	"github.com/gatewarden/gatewarden/internal/users"
)

// Advisory lock key serializing concurrent bootstrap attempts within the
// check-then-insert transaction.
const bootstrapLockKey = int64(0x6761746577617264)

// Repository defines the transactional bootstrap operation.
type Repository interface {
	CreateAdmin(ctx context.Context, u users.User) (users.User, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// CreateAdmin runs the existence checks and the insert in one transaction
// under an advisory lock, so racing bootstrap calls yield exactly one admin.
// Preconditions are checked in the documented order.
func (r *PGRepository) CreateAdmin(ctx context.Context, u users.User) (users.User, error) {
	var created users.User
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, bootstrapLockKey); err != nil {
			return err
		}

		var adminExists bool
		err := tx.QueryRow(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM users u JOIN roles r ON r.id = u.role_id WHERE r.name = $1
			)`, AdminRoleName).Scan(&adminExists)
		if err != nil {
			return err
		}
		if adminExists {
			return ErrAlreadyBootstrapped
		}

		var usernameExists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, u.Username).Scan(&usernameExists); err != nil {
			return err
		}
		if usernameExists {
			return ErrUsernameTaken
		}

		var emailExists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, u.Email).Scan(&emailExists); err != nil {
			return err
		}
		if emailExists {
			return ErrEmailTaken
		}

		var roleID int64
		err = tx.QueryRow(ctx, `SELECT id FROM roles WHERE name = $1`, AdminRoleName).Scan(&roleID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrRoleMissing
			}
			return err
		}

		u.RoleID = &roleID
		u.RoleName = AdminRoleName
		_, err = tx.Exec(ctx, `
			INSERT INTO users (id, username, first_name, last_name, email, password_hash,
				role_id, is_active, is_staff, is_superuser, date_joined)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			u.ID, u.Username, u.FirstName, u.LastName, u.Email, u.PasswordHash,
			u.RoleID, u.IsActive, u.IsStaff, u.IsSuperuser, u.DateJoined)
		if err != nil {
			return err
		}
		created = u
		return nil
	})
	if err != nil {
		return users.User{}, err
	}
	return created, nil
}

var _ Repository = (*PGRepository)(nil)

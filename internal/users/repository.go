package users

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatewarden/gatewarden/internal/shared"
)

const userColumns = `u.id, u.username, u.first_name, u.last_name, u.email, u.password_hash,
	u.role_id, COALESCE(r.name, ''), u.is_active, u.is_staff, u.is_superuser, u.last_login, u.date_joined`

const userSelect = `SELECT ` + userColumns + ` FROM users u LEFT JOIN roles r ON r.id = u.role_id`

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash,
		&u.RoleID, &u.RoleName, &u.IsActive, &u.IsStaff, &u.IsSuperuser, &u.LastLogin, &u.DateJoined)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, shared.ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

// ListUsers returns all users.
func (r *Repository) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, userSelect+` ORDER BY u.date_joined`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

// GetUser fetches a user by ID.
func (r *Repository) GetUser(ctx context.Context, id uuid.UUID) (User, error) {
	return scanUser(r.pool.QueryRow(ctx, userSelect+` WHERE u.id = $1`, id))
}

// GetUserByUsername fetches a user by username.
func (r *Repository) GetUserByUsername(ctx context.Context, username string) (User, error) {
	return scanUser(r.pool.QueryRow(ctx, userSelect+` WHERE u.username = $1`, username))
}

// GetUserByEmail fetches a user by email.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(r.pool.QueryRow(ctx, userSelect+` WHERE u.email = $1`, email))
}

// FindByUsernameOrEmail resolves the identifier first as a username, then as
// an email address.
func (r *Repository) FindByUsernameOrEmail(ctx context.Context, identifier string) (User, error) {
	u, err := r.GetUserByUsername(ctx, identifier)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return User{}, err
	}
	return r.GetUserByEmail(ctx, identifier)
}

// RoleIDByName resolves a role name to its ID.
func (r *Repository) RoleIDByName(ctx context.Context, name string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `SELECT id FROM roles WHERE name = $1`, name).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, shared.ErrNotFound
		}
		return 0, err
	}
	return id, nil
}

// CreateUser inserts a new user record. The password hash must already be computed.
func (r *Repository) CreateUser(ctx context.Context, u User) (User, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (id, username, first_name, last_name, email, password_hash,
			role_id, is_active, is_staff, is_superuser, date_joined)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
		u.ID, u.Username, u.FirstName, u.LastName, u.Email, u.PasswordHash,
		u.RoleID, u.IsActive, u.IsStaff, u.IsSuperuser, u.DateJoined).Scan(&id)
	if err != nil {
		return User{}, mapConstraintError(err)
	}
	return r.GetUser(ctx, id)
}

// UpdateUser updates mutable user fields.
func (r *Repository) UpdateUser(ctx context.Context, u User) (User, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET username = $2, first_name = $3, last_name = $4, email = $5,
			role_id = $6, is_active = $7, is_staff = $8, is_superuser = $9
		WHERE id = $1`,
		u.ID, u.Username, u.FirstName, u.LastName, u.Email,
		u.RoleID, u.IsActive, u.IsStaff, u.IsSuperuser)
	if err != nil {
		return User{}, mapConstraintError(err)
	}
	if tag.RowsAffected() == 0 {
		return User{}, shared.ErrNotFound
	}
	return r.GetUser(ctx, u.ID)
}

// UpdateLastLogin stamps the user's last successful login time.
func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET last_login = $2 WHERE id = $1`, id, at)
	return err
}

// DeleteUser removes a user by ID.
func (r *Repository) DeleteUser(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
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

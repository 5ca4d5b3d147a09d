package users_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/gatewarden/gatewarden/internal/shared"
	"github.com/gatewarden/gatewarden/internal/users"
	_ "github.com/gatewarden/gatewarden/testing"
)

type memRepo struct {
	byID    map[uuid.UUID]users.User
	roleIDs map[string]int64
}

func newMemRepo() *memRepo {
	return &memRepo{
		byID:    make(map[uuid.UUID]users.User),
		roleIDs: map[string]int64{"admin": 1, "editor": 2},
	}
}

func (r *memRepo) ListUsers(ctx context.Context) ([]users.User, error) {
	list := make([]users.User, 0, len(r.byID))
	for _, u := range r.byID {
		list = append(list, u)
	}
	return list, nil
}

func (r *memRepo) GetUser(ctx context.Context, id uuid.UUID) (users.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return users.User{}, shared.ErrNotFound
	}
	return u, nil
}

func (r *memRepo) CreateUser(ctx context.Context, u users.User) (users.User, error) {
	for _, existing := range r.byID {
		if existing.Username == u.Username || existing.Email == u.Email {
			return users.User{}, shared.ErrDuplicate
		}
	}
	r.byID[u.ID] = u
	return u, nil
}

func (r *memRepo) UpdateUser(ctx context.Context, u users.User) (users.User, error) {
	if _, ok := r.byID[u.ID]; !ok {
		return users.User{}, shared.ErrNotFound
	}
	r.byID[u.ID] = u
	return u, nil
}

func (r *memRepo) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.byID[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *memRepo) RoleIDByName(ctx context.Context, name string) (int64, error) {
	id, ok := r.roleIDs[name]
	if !ok {
		return 0, shared.ErrNotFound
	}
	return id, nil
}

func validParams() users.CreateParams {
	return users.CreateParams{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "supersecret",
		RoleName: "editor",
		IsActive: true,
	}
}

func TestCreateUserHashesPassword(t *testing.T) {
	service := users.NewService(newMemRepo())

	created, err := service.CreateUser(context.Background(), validParams())
	require.NoError(t, err)

	assert.NotEqual(t, "supersecret", created.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("supersecret")))
	require.NotNil(t, created.RoleID)
	assert.Equal(t, int64(2), *created.RoleID)
	assert.True(t, created.IsActive)
	assert.False(t, created.DateJoined.IsZero())
}

func TestCreateUserValidation(t *testing.T) {
	service := users.NewService(newMemRepo())
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*users.CreateParams)
	}{
		{"short username", func(p *users.CreateParams) { p.Username = "ab" }},
		{"long username", func(p *users.CreateParams) { p.Username = "thisusernameiswaytoolong" }},
		{"bad email", func(p *users.CreateParams) { p.Email = "nope" }},
		{"empty password", func(p *users.CreateParams) { p.Password = "" }},
		{"missing role", func(p *users.CreateParams) { p.RoleName = "" }},
		{"unknown role", func(p *users.CreateParams) { p.RoleName = "ghost" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			params := validParams()
			tc.mutate(&params)
			_, err := service.CreateUser(ctx, params)
			require.ErrorIs(t, err, shared.ErrValidation)
		})
	}
}

func TestCreateUserDuplicate(t *testing.T) {
	service := users.NewService(newMemRepo())
	ctx := context.Background()

	_, err := service.CreateUser(ctx, validParams())
	require.NoError(t, err)

	_, err = service.CreateUser(ctx, validParams())
	require.ErrorIs(t, err, shared.ErrDuplicate)
}

func TestUpdateUserClearsRole(t *testing.T) {
	repo := newMemRepo()
	service := users.NewService(repo)
	ctx := context.Background()

	created, err := service.CreateUser(ctx, validParams())
	require.NoError(t, err)

	updated, err := service.UpdateUser(ctx, created.ID, users.UpdateParams{
		Username: "alice",
		Email:    "alice@example.com",
		IsActive: true,
	})
	require.NoError(t, err)
	assert.Nil(t, updated.RoleID)
}

func TestUpdateUserUnknownID(t *testing.T) {
	service := users.NewService(newMemRepo())

	_, err := service.UpdateUser(context.Background(), uuid.New(), users.UpdateParams{
		Username: "alice",
		Email:    "alice@example.com",
	})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDeleteUser(t *testing.T) {
	repo := newMemRepo()
	service := users.NewService(repo)
	ctx := context.Background()

	created, err := service.CreateUser(ctx, validParams())
	require.NoError(t, err)

	require.NoError(t, service.DeleteUser(ctx, created.ID))
	require.ErrorIs(t, service.DeleteUser(ctx, created.ID), shared.ErrNotFound)
}

package bootstrap_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/gatewarden/gatewarden/internal/bootstrap"
	"github.com/gatewarden/gatewarden/internal/shared"
	"github.com/gatewarden/gatewarden/internal/users"
	_ "github.com/gatewarden/gatewarden/testing"
)

// memRepo mimics the transactional check-then-insert under a lock: the mutex
// stands in for the advisory lock, so racing calls serialize the same way.
type memRepo struct {
	mu          sync.Mutex
	roleID      *int64
	adminExists bool
	usernames   map[string]bool
	emails      map[string]bool
	created     []users.User
}

func newMemRepo(withRole bool) *memRepo {
	r := &memRepo{usernames: make(map[string]bool), emails: make(map[string]bool)}
	if withRole {
		id := int64(1)
		r.roleID = &id
	}
	return r
}

func (r *memRepo) CreateAdmin(ctx context.Context, u users.User) (users.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.adminExists {
		return users.User{}, bootstrap.ErrAlreadyBootstrapped
	}
	if r.usernames[u.Username] {
		return users.User{}, bootstrap.ErrUsernameTaken
	}
	if r.emails[u.Email] {
		return users.User{}, bootstrap.ErrEmailTaken
	}
	if r.roleID == nil {
		return users.User{}, bootstrap.ErrRoleMissing
	}
	u.RoleID = r.roleID
	u.RoleName = bootstrap.AdminRoleName
	r.adminExists = true
	r.usernames[u.Username] = true
	r.emails[u.Email] = true
	r.created = append(r.created, u)
	return u, nil
}

func TestCreateAdmin(t *testing.T) {
	repo := newMemRepo(true)
	service := bootstrap.NewService(repo)

	created, err := service.CreateAdmin(context.Background(), "admin", "admin@example.com", "supersecret")
	require.NoError(t, err)

	assert.Equal(t, "admin", created.Username)
	assert.Equal(t, bootstrap.AdminRoleName, created.RoleName)
	assert.True(t, created.IsActive)
	assert.True(t, created.IsStaff)
	assert.True(t, created.IsSuperuser)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("supersecret")))
}

func TestCreateAdminValidation(t *testing.T) {
	service := bootstrap.NewService(newMemRepo(true))
	ctx := context.Background()

	cases := []struct {
		name     string
		username string
		email    string
		password string
	}{
		{"short username", "ab", "admin@example.com", "supersecret"},
		{"long username", "averyveryverylongusername", "admin@example.com", "supersecret"},
		{"bad email", "admin", "not-an-email", "supersecret"},
		{"short password", "admin", "admin@example.com", "short"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.CreateAdmin(ctx, tc.username, tc.email, tc.password)
			require.ErrorIs(t, err, shared.ErrValidation)
		})
	}
}

func TestCreateAdminSecondAttemptFails(t *testing.T) {
	repo := newMemRepo(true)
	service := bootstrap.NewService(repo)
	ctx := context.Background()

	_, err := service.CreateAdmin(ctx, "admin", "admin@example.com", "supersecret")
	require.NoError(t, err)

	_, err = service.CreateAdmin(ctx, "other", "other@example.com", "supersecret")
	require.ErrorIs(t, err, bootstrap.ErrAlreadyBootstrapped)
}

func TestCreateAdminPreconditionOrder(t *testing.T) {
	repo := newMemRepo(true)
	repo.usernames["admin"] = true
	repo.emails["admin@example.com"] = true
	service := bootstrap.NewService(repo)
	ctx := context.Background()

	// Username collision wins over email collision.
	_, err := service.CreateAdmin(ctx, "admin", "admin@example.com", "supersecret")
	require.ErrorIs(t, err, bootstrap.ErrUsernameTaken)

	_, err = service.CreateAdmin(ctx, "other", "admin@example.com", "supersecret")
	require.ErrorIs(t, err, bootstrap.ErrEmailTaken)
}

func TestCreateAdminRequiresProvisionedRole(t *testing.T) {
	service := bootstrap.NewService(newMemRepo(false))

	_, err := service.CreateAdmin(context.Background(), "admin", "admin@example.com", "supersecret")
	require.ErrorIs(t, err, bootstrap.ErrRoleMissing)
}

func TestCreateAdminConcurrentAttemptsYieldExactlyOne(t *testing.T) {
	repo := newMemRepo(true)
	service := bootstrap.NewService(repo)

	const attempts = 16
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = service.CreateAdmin(context.Background(), "admin", "admin@example.com", "supersecret")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, bootstrap.ErrAlreadyBootstrapped)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Len(t, repo.created, 1)
}

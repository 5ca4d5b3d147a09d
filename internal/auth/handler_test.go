package auth_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatewarden/gatewarden/internal/auth"
	"github.com/gatewarden/gatewarden/internal/rbac"
	"github.com/gatewarden/gatewarden/internal/shared"
	"github.com/gatewarden/gatewarden/internal/token"
	"github.com/gatewarden/gatewarden/internal/users"
	_ "github.com/gatewarden/gatewarden/testing"
)

type grantPort struct {
	roleID    int64
	endpoints map[string]bool
}

func (p *grantPort) UserRoleID(ctx context.Context, userID uuid.UUID) (*int64, error) {
	id := p.roleID
	return &id, nil
}

func (p *grantPort) EndpointExists(ctx context.Context, name string) (bool, error) {
	return p.endpoints[name], nil
}

func (p *grantPort) RoleGrantsEndpoint(ctx context.Context, roleID int64, endpointName string) (bool, error) {
	return p.endpoints[endpointName], nil
}

type fixture struct {
	router  chi.Router
	repo    *stubRepo
	service *auth.Service
	port    *grantPort
}

func newFixture(t *testing.T, user *users.User) *fixture {
	t.Helper()
	signer, err := token.NewHMACSigner("test-secret")
	require.NoError(t, err)

	repo := newStubRepo(user)
	service := auth.NewService(repo, signer, 15*time.Minute, 24*time.Hour)

	port := &grantPort{roleID: 3, endpoints: map[string]bool{"post_logout": true}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	middleware := rbac.Middleware{Guard: rbac.NewGuard(port), Signer: signer, Logger: logger}

	router := chi.NewRouter()
	auth.NewHandler(logger, service, middleware, nil).MountRoutes(router)
	return &fixture{router: router, repo: repo, service: service, port: port}
}

func (f *fixture) do(t *testing.T, method, path, body, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestLoginReturnsTokenPair(t *testing.T) {
	f := newFixture(t, testUser(t, "correct", true))

	rec := f.do(t, http.MethodPost, "/login", `{"username":"alice","password":"correct"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["access"])
	assert.NotEmpty(t, body["refresh"])
	assert.NotContains(t, body, "is_superuser")
}

func TestLoginSuperuserFlag(t *testing.T) {
	user := testUser(t, "correct", true)
	user.IsSuperuser = true
	f := newFixture(t, user)

	rec := f.do(t, http.MethodPost, "/login", `{"username":"alice","password":"correct"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["is_superuser"])
}

func TestLoginBadCredentials(t *testing.T) {
	f := newFixture(t, testUser(t, "correct", true))

	for _, payload := range []string{
		`{"username":"alice","password":"wrong"}`,
		`{"username":"nobody","password":"correct"}`,
	} {
		rec := f.do(t, http.MethodPost, "/login", payload, "")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "No active account found with the given credentials.", decodeBody(t, rec)["detail"])
	}
}

func TestLoginDisabledAccount(t *testing.T) {
	f := newFixture(t, testUser(t, "correct", false))

	rec := f.do(t, http.MethodPost, "/login", `{"username":"alice","password":"correct"}`, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "User account is disabled.", decodeBody(t, rec)["detail"])
}

func TestLoginMissingFields(t *testing.T) {
	f := newFixture(t, testUser(t, "correct", true))

	for _, payload := range []string{
		`{}`,
		`{"username":"alice"}`,
		`{"password":"correct"}`,
		`not json`,
	} {
		rec := f.do(t, http.MethodPost, "/login", payload, "")
		require.Equal(t, http.StatusBadRequest, rec.Code, "payload %s", payload)
		assert.Equal(t, "Username and password are required.", decodeBody(t, rec)["detail"])
	}
}

func TestRefreshEndpoint(t *testing.T) {
	f := newFixture(t, testUser(t, "correct", true))

	pair, err := f.service.Authenticate(context.Background(), "alice", "correct")
	require.NoError(t, err)

	rec := f.do(t, http.MethodPost, "/token/refresh", `{"refresh":"`+pair.Refresh+`"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decodeBody(t, rec)["access"])
}

func TestRefreshRejectsGarbage(t *testing.T) {
	f := newFixture(t, testUser(t, "correct", true))

	rec := f.do(t, http.MethodPost, "/token/refresh", `{"refresh":"garbage"}`, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, shared.ErrInvalidToken.Error(), decodeBody(t, rec)["detail"])
}

func TestRefreshRejectsRevokedToken(t *testing.T) {
	f := newFixture(t, testUser(t, "correct", true))

	pair, err := f.service.Authenticate(context.Background(), "alice", "correct")
	require.NoError(t, err)
	require.NoError(t, f.service.Revoke(context.Background(), pair.Refresh))

	rec := f.do(t, http.MethodPost, "/token/refresh", `{"refresh":"`+pair.Refresh+`"}`, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	f := newFixture(t, testUser(t, "correct", true))

	pair, err := f.service.Authenticate(context.Background(), "alice", "correct")
	require.NoError(t, err)

	rec := f.do(t, http.MethodPost, "/logout", `{"refresh":"`+pair.Refresh+`"}`, pair.Access)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Successfully logged out.", decodeBody(t, rec)["message"])

	rec = f.do(t, http.MethodPost, "/token/refresh", `{"refresh":"`+pair.Refresh+`"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutRequiresAuthentication(t *testing.T) {
	f := newFixture(t, testUser(t, "correct", true))

	rec := f.do(t, http.MethodPost, "/logout", `{"refresh":"x"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutRejectsRefreshTokenAsBearer(t *testing.T) {
	f := newFixture(t, testUser(t, "correct", true))

	pair, err := f.service.Authenticate(context.Background(), "alice", "correct")
	require.NoError(t, err)

	rec := f.do(t, http.MethodPost, "/logout", `{"refresh":"`+pair.Refresh+`"}`, pair.Refresh)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutDeniedWithoutGrant(t *testing.T) {
	f := newFixture(t, testUser(t, "correct", true))
	f.port.endpoints = map[string]bool{}

	pair, err := f.service.Authenticate(context.Background(), "alice", "correct")
	require.NoError(t, err)

	rec := f.do(t, http.MethodPost, "/logout", `{"refresh":"`+pair.Refresh+`"}`, pair.Access)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLogoutInvalidBody(t *testing.T) {
	f := newFixture(t, testUser(t, "correct", true))

	pair, err := f.service.Authenticate(context.Background(), "alice", "correct")
	require.NoError(t, err)

	rec := f.do(t, http.MethodPost, "/logout", `{}`, pair.Access)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid token", decodeBody(t, rec)["error"])
}

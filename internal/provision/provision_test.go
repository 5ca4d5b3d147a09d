package provision_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatewarden/gatewarden/internal/endpoints"
	"github.com/gatewarden/gatewarden/internal/permissions"
	"github.com/gatewarden/gatewarden/internal/provision"
	"github.com/gatewarden/gatewarden/internal/roles"
	"github.com/gatewarden/gatewarden/internal/shared"
	_ "github.com/gatewarden/gatewarden/testing"
)

type memStore struct {
	nextID          int64
	endpointsByName map[string]endpoints.Endpoint
	permsByName     map[string]permissions.Permission
	rolesByName     map[string]roles.Role
	permEndpoints   map[int64][]int64
	rolePerms       map[int64][]int64
}

func newMemStore() *memStore {
	return &memStore{
		nextID:          1,
		endpointsByName: make(map[string]endpoints.Endpoint),
		permsByName:     make(map[string]permissions.Permission),
		rolesByName:     make(map[string]roles.Role),
		permEndpoints:   make(map[int64][]int64),
		rolePerms:       make(map[int64][]int64),
	}
}

func (s *memStore) id() int64 {
	id := s.nextID
	s.nextID++
	return id
}

func (s *memStore) GetOrCreateEndpoint(ctx context.Context, path, method, name string) (endpoints.Endpoint, bool, error) {
	if ep, ok := s.endpointsByName[name]; ok {
		return ep, false, nil
	}
	ep := endpoints.Endpoint{ID: s.id(), Path: path, Method: method, Name: name}
	s.endpointsByName[name] = ep
	return ep, true, nil
}

func (s *memStore) GetOrCreatePermission(ctx context.Context, name, description string) (permissions.Permission, error) {
	if p, ok := s.permsByName[name]; ok {
		return p, nil
	}
	p := permissions.Permission{ID: s.id(), Name: name, Description: description}
	s.permsByName[name] = p
	return p, nil
}

func (s *memStore) SetEndpoints(ctx context.Context, permissionID int64, endpointIDs []int64) error {
	s.permEndpoints[permissionID] = append([]int64(nil), endpointIDs...)
	return nil
}

func (s *memStore) GetOrCreateRole(ctx context.Context, name string) (roles.Role, error) {
	if r, ok := s.rolesByName[name]; ok {
		return r, nil
	}
	r := roles.Role{ID: s.id(), Name: name}
	s.rolesByName[name] = r
	return r, nil
}

func (s *memStore) SetPermissions(ctx context.Context, roleID int64, permissionIDs []int64) error {
	s.rolePerms[roleID] = append([]int64(nil), permissionIDs...)
	return nil
}

func TestRunSeedsCatalogue(t *testing.T) {
	store := newMemStore()
	p := provision.New(store, store, store, nil)

	require.NoError(t, p.Run(context.Background(), provision.DefaultRoutes))

	assert.Len(t, store.endpointsByName, len(provision.DefaultRoutes))
	assert.Contains(t, store.endpointsByName, "post_logout")
	assert.Contains(t, store.endpointsByName, "get_api_endpoint_list")
	assert.Contains(t, store.endpointsByName, "delete_role_detail")

	ep := store.endpointsByName["post_token_refresh"]
	assert.Equal(t, "/token-refresh/", ep.Path)
	assert.Equal(t, "POST", ep.Method)

	perm, ok := store.permsByName[provision.FullAccessPermission]
	require.True(t, ok)
	assert.Len(t, store.permEndpoints[perm.ID], len(provision.DefaultRoutes))

	role, ok := store.rolesByName[provision.AdminRole]
	require.True(t, ok)
	assert.Equal(t, []int64{perm.ID}, store.rolePerms[role.ID])
}

func TestRunIsIdempotent(t *testing.T) {
	store := newMemStore()
	p := provision.New(store, store, store, nil)
	ctx := context.Background()

	require.NoError(t, p.Run(ctx, provision.DefaultRoutes))
	endpointCount := len(store.endpointsByName)
	permID := store.permsByName[provision.FullAccessPermission].ID
	roleID := store.rolesByName[provision.AdminRole].ID

	require.NoError(t, p.Run(ctx, provision.DefaultRoutes))

	assert.Len(t, store.endpointsByName, endpointCount)
	assert.Equal(t, permID, store.permsByName[provision.FullAccessPermission].ID)
	assert.Equal(t, roleID, store.rolesByName[provision.AdminRole].ID)
	assert.Len(t, store.permEndpoints[permID], endpointCount)
}

// Shrinking the route list shrinks full_access with it: the endpoint set is
// replaced wholesale, not merged.
func TestRunReplacesEndpointSetWholesale(t *testing.T) {
	store := newMemStore()
	p := provision.New(store, store, store, nil)
	ctx := context.Background()

	require.NoError(t, p.Run(ctx, provision.DefaultRoutes))

	reduced := []provision.Route{{Identifier: "logout", Method: "POST"}}
	require.NoError(t, p.Run(ctx, reduced))

	permID := store.permsByName[provision.FullAccessPermission].ID
	require.Len(t, store.permEndpoints[permID], 1)
	assert.Equal(t, store.endpointsByName["post_logout"].ID, store.permEndpoints[permID][0])
}

func TestRunRejectsDuplicateDerivedNames(t *testing.T) {
	store := newMemStore()
	p := provision.New(store, store, store, nil)

	// "role-list" and "role_list" collapse to the same endpoint name.
	dupes := []provision.Route{
		{Identifier: "role-list", Method: "GET"},
		{Identifier: "role_list", Method: "GET"},
	}
	err := p.Run(context.Background(), dupes)
	require.ErrorIs(t, err, shared.ErrValidation)
	assert.Empty(t, store.endpointsByName)
}

func TestRunRejectsBlankRoute(t *testing.T) {
	store := newMemStore()
	p := provision.New(store, store, store, nil)

	err := p.Run(context.Background(), []provision.Route{{Identifier: " ", Method: "GET"}})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestDefaultRoutesDeriveUniqueNames(t *testing.T) {
	seen := make(map[string]struct{}, len(provision.DefaultRoutes))
	for _, route := range provision.DefaultRoutes {
		name := endpoints.Name(route.Method, route.Identifier)
		_, dup := seen[name]
		require.False(t, dup, "duplicate endpoint name %s", name)
		seen[name] = struct{}{}
	}
}

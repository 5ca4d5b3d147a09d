// Package provision seeds the endpoint catalogue, the full_access permission
// and the admin role from a static route list. Running it twice with the same
// list is a no-op; it is the only component allowed to overwrite relationship
// sets wholesale.
package provision

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gatewarden/gatewarden/internal/endpoints"
	"github.com/gatewarden/gatewarden/internal/permissions"
	"github.com/gatewarden/gatewarden/internal/roles"
	"github.com/gatewarden/gatewarden/internal/shared"
)

// FullAccessPermission is the permission covering every provisioned endpoint.
const FullAccessPermission = "full_access"

// AdminRole is the role granted the full access permission.
const AdminRole = "admin"

// EndpointStore is the subset of endpoint persistence used by provisioning.
type EndpointStore interface {
	GetOrCreateEndpoint(ctx context.Context, path, method, name string) (endpoints.Endpoint, bool, error)
}

// PermissionStore is the subset of permission persistence used by provisioning.
type PermissionStore interface {
	GetOrCreatePermission(ctx context.Context, name, description string) (permissions.Permission, error)
	SetEndpoints(ctx context.Context, permissionID int64, endpointIDs []int64) error
}

// RoleStore is the subset of role persistence used by provisioning.
type RoleStore interface {
	GetOrCreateRole(ctx context.Context, name string) (roles.Role, error)
	SetPermissions(ctx context.Context, roleID int64, permissionIDs []int64) error
}

// Provisioner seeds endpoints, the full access permission and the admin role.
type Provisioner struct {
	endpoints   EndpointStore
	permissions PermissionStore
	roles       RoleStore
	logger      *slog.Logger
}

// New constructs a Provisioner.
func New(eps EndpointStore, perms PermissionStore, rls RoleStore, logger *slog.Logger) *Provisioner {
	return &Provisioner{endpoints: eps, permissions: perms, roles: rls, logger: logger}
}

// Run provisions the supplied route list. Endpoint rows are get-or-created by
// name; full_access and the admin role have their relationship sets replaced
// to cover exactly the configured list.
func (p *Provisioner) Run(ctx context.Context, routes []Route) error {
	if err := validateRoutes(routes); err != nil {
		return err
	}

	endpointIDs := make([]int64, 0, len(routes))
	for _, route := range routes {
		name := endpoints.Name(route.Method, route.Identifier)
		path := "/" + route.Identifier + "/"
		method := strings.ToUpper(route.Method)

		ep, created, err := p.endpoints.GetOrCreateEndpoint(ctx, path, method, name)
		if err != nil {
			return fmt.Errorf("provision: endpoint %s: %w", name, err)
		}
		if created && p.logger != nil {
			p.logger.Info("created endpoint", slog.String("name", name), slog.String("method", method))
		}
		endpointIDs = append(endpointIDs, ep.ID)
	}

	perm, err := p.permissions.GetOrCreatePermission(ctx, FullAccessPermission, "Full access to all defined endpoints")
	if err != nil {
		return fmt.Errorf("provision: permission %s: %w", FullAccessPermission, err)
	}
	if err := p.permissions.SetEndpoints(ctx, perm.ID, endpointIDs); err != nil {
		return fmt.Errorf("provision: set endpoints: %w", err)
	}

	role, err := p.roles.GetOrCreateRole(ctx, AdminRole)
	if err != nil {
		return fmt.Errorf("provision: role %s: %w", AdminRole, err)
	}
	if err := p.roles.SetPermissions(ctx, role.ID, []int64{perm.ID}); err != nil {
		return fmt.Errorf("provision: set permissions: %w", err)
	}

	if p.logger != nil {
		p.logger.Info("provisioning complete", slog.Int("endpoints", len(endpointIDs)))
	}
	return nil
}

// validateRoutes rejects a list in which two tuples derive the same endpoint
// name; authorization could not tell the colliding routes apart.
func validateRoutes(routes []Route) error {
	seen := make(map[string]Route, len(routes))
	for _, route := range routes {
		if strings.TrimSpace(route.Identifier) == "" || strings.TrimSpace(route.Method) == "" {
			return fmt.Errorf("%w: route identifier and method are required", shared.ErrValidation)
		}
		name := endpoints.Name(route.Method, route.Identifier)
		if prev, ok := seen[name]; ok {
			return fmt.Errorf("%w: routes (%s %s) and (%s %s) derive the same endpoint name %q",
				shared.ErrValidation, prev.Method, prev.Identifier, route.Method, route.Identifier, name)
		}
		seen[name] = route
	}
	return nil
}

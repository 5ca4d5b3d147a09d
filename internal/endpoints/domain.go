package endpoints

import "github.com/gatewarden/gatewarden/internal/shared"

// Endpoint represents a single API endpoint identity (e.g. GET /role/).
// Name is globally unique and is the only key consulted at authorization time.
// Renaming an endpoint referenced by a permission breaks that mapping.
type Endpoint struct {
	ID     int64
	Path   string
	Method string
	Name   string
}

// Name derives the canonical endpoint name from an HTTP method and the
// symbolic route identifier, e.g. ("DELETE", "role-detail") -> "delete_role_detail".
func Name(method, routeName string) string {
	return shared.EndpointName(method, routeName)
}

package shared

import "strings"

// EndpointName derives the canonical endpoint name from an HTTP method and the
// symbolic route identifier, e.g. ("DELETE", "role-detail") -> "delete_role_detail".
// It lives here so both rbac and endpoints can use it without importing each other.
func EndpointName(method, routeName string) string {
	return strings.ToLower(method) + "_" + strings.ReplaceAll(routeName, "-", "_")
}

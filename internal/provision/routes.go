package provision

// Route is one provisionable endpoint tuple: the symbolic route identifier,
// the HTTP method and a human description.
type Route struct {
	Identifier  string
	Method      string
	Description string
}

// DefaultRoutes is the static configuration list consumed by Run. Ordering is
// stable so reruns touch endpoints in the same sequence.
var DefaultRoutes = []Route{
	{"logout", "POST", "User logout"},
	{"token-refresh", "POST", "Refresh access token"},

	{"auth-list", "GET", "List users"},
	{"auth-list", "POST", "Create user"},
	{"auth-detail", "GET", "Retrieve user"},
	{"auth-detail", "PUT", "Update user"},
	{"auth-detail", "DELETE", "Delete user"},

	{"role-list", "GET", "List roles"},
	{"role-list", "POST", "Create role"},
	{"role-detail", "GET", "Retrieve role"},
	{"role-detail", "PUT", "Update role"},
	{"role-detail", "DELETE", "Delete role"},

	{"permission-list", "GET", "List permissions"},
	{"permission-list", "POST", "Create permission"},
	{"permission-detail", "GET", "Retrieve permission"},
	{"permission-detail", "PUT", "Update permission"},
	{"permission-detail", "DELETE", "Delete permission"},

	{"api-endpoint-list", "GET", "List API endpoints"},
	{"api-endpoint-list", "POST", "Create API endpoint"},
	{"api-endpoint-detail", "GET", "Retrieve API endpoint"},
	{"api-endpoint-detail", "PUT", "Update API endpoint"},
	{"api-endpoint-detail", "DELETE", "Delete API endpoint"},
}

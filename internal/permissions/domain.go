package permissions

// Permission is a named bundle of API endpoints.
type Permission struct {
	ID          int64
	Name        string
	Description string
	EndpointIDs []int64
}

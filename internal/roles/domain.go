package roles

// Role is a named bundle of permissions assigned to users. Deleting a role
// never deletes its users; their role reference is nulled.
type Role struct {
	ID            int64
	Name          string
	PermissionIDs []int64
}

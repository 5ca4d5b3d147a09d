package bootstrap

import "errors"

// AdminRoleName is the role the bootstrap user is forced into.
const AdminRoleName = "admin"

var (
	// ErrAlreadyBootstrapped indicates an admin user already exists. The
	// bootstrap path is permanently disabled from that point on.
	ErrAlreadyBootstrapped = errors.New("bootstrap: admin user already exists")
	// ErrUsernameTaken indicates the requested username is in use.
	ErrUsernameTaken = errors.New("bootstrap: username already taken")
	// ErrEmailTaken indicates the requested email is in use.
	ErrEmailTaken = errors.New("bootstrap: email already taken")
	// ErrRoleMissing indicates the admin role has not been provisioned yet.
	ErrRoleMissing = errors.New("bootstrap: role admin does not exist")
)

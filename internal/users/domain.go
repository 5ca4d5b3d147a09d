package users

import (
	"time"

	"github.com/google/uuid"
)

// User represents a user account. RoleID is nullable; a user without a role
// is authorized for nothing.
type User struct {
	ID           uuid.UUID
	Username     string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	RoleID       *int64
	RoleName     string
	IsActive     bool
	IsStaff      bool
	IsSuperuser  bool
	LastLogin    *time.Time
	DateJoined   time.Time
}

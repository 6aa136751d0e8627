package domain

import "github.com/google/uuid"

// Role is the authorization level of a user.
type Role string

// Supported roles.
const (
	RoleAdmin     Role = "ADMIN"
	RoleModerator Role = "MODERATOR"
	RoleUser      Role = "USER"
)

// IsValid reports whether r is one of the supported roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleUser:
		return true
	}
	return false
}

// Privileged reports whether r may act on resources owned by other users.
func (r Role) Privileged() bool {
	return r == RoleAdmin || r == RoleModerator
}

// Actor identifies the user performing an operation.
type Actor struct {
	UserID uuid.UUID
	Role   Role
}

// AccessPolicy decides whether actor may operate on a resource owned by ownerID.
type AccessPolicy func(actor Actor, ownerID uuid.UUID) bool

// DefaultAccessPolicy lets ADMIN and MODERATOR through and restricts USER to
// resources they own.
func DefaultAccessPolicy(actor Actor, ownerID uuid.UUID) bool {
	if actor.Role.Privileged() {
		return true
	}
	return actor.UserID != uuid.Nil && actor.UserID == ownerID
}

// CanDelete is stricter than DefaultAccessPolicy: moderators may not delete
// projects or boards they do not own.
func CanDelete(actor Actor, ownerID uuid.UUID) bool {
	return actor.Role == RoleAdmin || (actor.UserID != uuid.Nil && actor.UserID == ownerID)
}

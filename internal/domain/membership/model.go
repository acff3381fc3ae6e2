package membership

import "errors"

// Role constants
const (
	RoleMember      = "member"
	RoleCoordinator = "coordinator"
)

// ErrInvalidRole is returned for roles other than member or coordinator.
var ErrInvalidRole = errors.New("membership role must be 'member' or 'coordinator'")

// Membership links a user to a club.
// INVARIANT: at most one Membership per (UserID, ClubID)
type Membership struct {
	ID     int64
	UserID int64
	ClubID int64
	Role   string
}

// Member is a membership joined with the user's display fields, as shown on
// a club's page.
type Member struct {
	UserID int64
	Name   string
	Email  string
	Role   string
}

// Validate checks the membership role.
// PRE: none
// POST: Returns nil if valid, error otherwise
func (m *Membership) Validate() error {
	if !IsValidRole(m.Role) {
		return ErrInvalidRole
	}
	return nil
}

// IsCoordinator reports whether the membership grants event creation rights.
// INVARIANT: Membership fields are not mutated
func (m *Membership) IsCoordinator() bool {
	return m.Role == RoleCoordinator
}

// IsValidRole reports whether role is a known membership role.
func IsValidRole(role string) bool {
	return role == RoleMember || role == RoleCoordinator
}

// HasAnyRole reports whether role is one of allowed.
func HasAnyRole(role string, allowed ...string) bool {
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}

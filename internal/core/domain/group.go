package domain

import "time"

// DefaultMaxMembers caps group size when the creator does not set one.
const DefaultMaxMembers = 10

// Group is a named collection of principals sharing project access.
type Group struct {
	ID          string
	Name        string
	Description *string
	MaxMembers  int
	IsPublic    bool
	CreatedBy   string
	CreatedAt   time.Time
}

// Membership ties a principal to a group with exactly one role.
// Unique per (GroupID, UserID).
type Membership struct {
	ID       string
	GroupID  string
	UserID   string
	Role     Role
	JoinedAt time.Time
}

// Invitation is a pending membership keyed by an identity string. It is
// bound to a real principal only once that identity authenticates, so no
// membership row ever points at a placeholder user.
type Invitation struct {
	ID        string
	GroupID   string
	Email     string
	Role      Role
	InvitedBy string
	CreatedAt time.Time
}

// CountOwners returns the number of memberships holding the OWNER role.
func CountOwners(members []Membership) int {
	count := 0
	for _, m := range members {
		if m.Role == RoleOwner {
			count++
		}
	}
	return count
}

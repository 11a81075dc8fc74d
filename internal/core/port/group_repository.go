package port

import (
	"context"

	"github.com/arklim/social-platform-collab/internal/core/domain"
)

// GroupRepository handles group CRUD.
type GroupRepository interface {
	Create(ctx context.Context, group domain.Group) error
	GetByID(ctx context.Context, id string) (*domain.Group, error)
	// GetByIDForUpdate retrieves the group and holds its row lock until the
	// surrounding transaction ends. Group mutations take this lock before
	// reading membership state so owner and capacity checks cannot
	// interleave across transactions.
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Group, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Group, error)
	Delete(ctx context.Context, id string) error
}

// MembershipRepository handles the (group, principal, role) relation.
// Rows are unique per (groupID, userID).
type MembershipRepository interface {
	Create(ctx context.Context, membership domain.Membership) error
	Get(ctx context.Context, groupID, userID string) (*domain.Membership, error)
	ListByGroup(ctx context.Context, groupID string) ([]domain.Membership, error)
	UpdateRole(ctx context.Context, groupID, userID string, role domain.Role) error
	Delete(ctx context.Context, groupID, userID string) error
	DeleteByGroup(ctx context.Context, groupID string) (int, error)
}

// InvitationRepository stores pending invitations keyed by (group, email).
type InvitationRepository interface {
	Upsert(ctx context.Context, invitation domain.Invitation) error
	ListByEmail(ctx context.Context, email string) ([]domain.Invitation, error)
	DeleteByGroup(ctx context.Context, groupID string) error
	Delete(ctx context.Context, id string) error
}

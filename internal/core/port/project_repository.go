package port

import (
	"context"

	"github.com/arklim/social-platform-collab/internal/core/domain"
)

// ProjectRepository is the read-mostly view of the project store this
// subsystem consumes. Projects are owned elsewhere; the single write
// operation detaches projects from a group being deleted.
type ProjectRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	// DetachTeam clears the team association on every project referencing
	// the group and returns how many were detached. Projects themselves are
	// never deleted here.
	DetachTeam(ctx context.Context, teamID string) (int, error)
}

// PrincipalDirectory resolves identity strings to principal IDs. Identity is
// established by the platform IAM service; this is lookup only.
type PrincipalDirectory interface {
	// LookupByEmail returns the principal ID for the email, or
	// repository.ErrNotFound when no account exists yet.
	LookupByEmail(ctx context.Context, email string) (string, error)
}

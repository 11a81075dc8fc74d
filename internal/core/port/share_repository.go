package port

import (
	"context"
	"time"

	"github.com/arklim/social-platform-collab/internal/core/domain"
)

// ShareRepository persists directed project grants. Rows are unique per
// (projectID, grantedTo); Upsert updates the existing row on conflict.
type ShareRepository interface {
	Upsert(ctx context.Context, share domain.Share) error
	GetByID(ctx context.Context, id string) (*domain.Share, error)
	GetByProjectAndTarget(ctx context.Context, projectID, userID string) (*domain.Share, error)
	// ListByTarget returns shares granted to the principal that are live at
	// the given instant, joined with project and owner display data.
	ListByTarget(ctx context.Context, userID string, now time.Time) ([]domain.SharedProject, error)
	// ListByGranter returns live shares the principal has granted to others.
	ListByGranter(ctx context.Context, userID string, now time.Time) ([]domain.SharedProject, error)
	UpdateSettings(ctx context.Context, id string, settings domain.ShareSettings, updatedAt time.Time) error
	Delete(ctx context.Context, id string) error
	// DeleteExpiredBefore removes shares whose expiry predates the cutoff and
	// returns the number of rows purged. Housekeeping only; correctness never
	// depends on it because read paths filter expired shares themselves.
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int, error)
}

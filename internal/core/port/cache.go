package port

import (
	"context"
	"time"

	"github.com/arklim/social-platform-collab/internal/core/domain"
)

// DecisionCache is the short-lived read cache for resolved access decisions.
// Mutations that can change an answer must invalidate the affected keys
// before returning success, so a decision is never observed stale past the
// mutation within the same process.
type DecisionCache interface {
	// GetDecision returns the cached decision or repository.ErrNotFound on a miss.
	GetDecision(ctx context.Context, projectID, principalID string) (*domain.AccessDecision, error)
	SetDecision(ctx context.Context, projectID, principalID string, decision domain.AccessDecision, ttl time.Duration) error
	// InvalidateDecision drops the single (project, principal) entry.
	InvalidateDecision(ctx context.Context, projectID, principalID string) error
	// InvalidatePrincipal drops every cached decision for the principal,
	// used when a group role change affects an unknown set of projects.
	InvalidatePrincipal(ctx context.Context, principalID string) error
}

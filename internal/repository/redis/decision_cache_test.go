package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	red "github.com/redis/go-redis/v9"

	"github.com/arklim/social-platform-collab/internal/core/domain"
	"github.com/arklim/social-platform-collab/internal/repository"
)

func newTestCache(t *testing.T) (*DecisionCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := red.NewClient(&red.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewDecisionCache(client, "collab:decision"), mr
}

func TestDecisionCacheRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	decision := domain.AccessDecision{
		Allowed:     true,
		AccessLevel: domain.AccessLevelEdit,
		Reason:      domain.ReasonShare,
	}

	if err := cache.SetDecision(ctx, "project-1", "user-1", decision, time.Minute); err != nil {
		t.Fatalf("SetDecision returned error: %v", err)
	}

	got, err := cache.GetDecision(ctx, "project-1", "user-1")
	if err != nil {
		t.Fatalf("GetDecision returned error: %v", err)
	}

	if !got.Allowed || got.AccessLevel != domain.AccessLevelEdit || got.Reason != domain.ReasonShare {
		t.Fatalf("decision did not round-trip: %+v", got)
	}
}

func TestDecisionCacheMiss(t *testing.T) {
	cache, _ := newTestCache(t)

	if _, err := cache.GetDecision(context.Background(), "project-1", "user-1"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on miss, got %v", err)
	}
}

func TestDecisionCacheExpiry(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	decision := domain.AccessDecision{Allowed: true, AccessLevel: domain.AccessLevelView, Reason: domain.ReasonGroupRole}
	if err := cache.SetDecision(ctx, "project-1", "user-1", decision, 30*time.Second); err != nil {
		t.Fatalf("SetDecision returned error: %v", err)
	}

	mr.FastForward(31 * time.Second)

	if _, err := cache.GetDecision(ctx, "project-1", "user-1"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after TTL, got %v", err)
	}
}

func TestInvalidateDecision(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	decision := domain.AccessDecision{Allowed: true, AccessLevel: domain.AccessLevelAdmin, Reason: domain.ReasonOwner, IsOwner: true}
	if err := cache.SetDecision(ctx, "project-1", "user-1", decision, time.Minute); err != nil {
		t.Fatalf("SetDecision returned error: %v", err)
	}

	if err := cache.InvalidateDecision(ctx, "project-1", "user-1"); err != nil {
		t.Fatalf("InvalidateDecision returned error: %v", err)
	}

	if _, err := cache.GetDecision(ctx, "project-1", "user-1"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after invalidation, got %v", err)
	}
}

func TestInvalidatePrincipalDropsAllProjects(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	decision := domain.AccessDecision{Allowed: true, AccessLevel: domain.AccessLevelView, Reason: domain.ReasonGroupRole}
	for _, projectID := range []string{"project-1", "project-2", "project-3"} {
		if err := cache.SetDecision(ctx, projectID, "user-1", decision, time.Minute); err != nil {
			t.Fatalf("SetDecision(%s) returned error: %v", projectID, err)
		}
	}
	if err := cache.SetDecision(ctx, "project-1", "user-2", decision, time.Minute); err != nil {
		t.Fatalf("SetDecision for second principal returned error: %v", err)
	}

	if err := cache.InvalidatePrincipal(ctx, "user-1"); err != nil {
		t.Fatalf("InvalidatePrincipal returned error: %v", err)
	}

	for _, projectID := range []string{"project-1", "project-2", "project-3"} {
		if _, err := cache.GetDecision(ctx, projectID, "user-1"); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected %s dropped for user-1, got %v", projectID, err)
		}
	}

	// Other principals keep their entries.
	if _, err := cache.GetDecision(ctx, "project-1", "user-2"); err != nil {
		t.Fatalf("expected user-2 decision to survive, got %v", err)
	}
}

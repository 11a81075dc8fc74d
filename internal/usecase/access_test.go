package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/arklim/social-platform-collab/internal/core/domain"
)

type accessFixture struct {
	projects *projectRepoMock
	shares   *shareRepoMock
	members  *memberRepoMock
	cache    *decisionCacheMock
	service  *AccessService
	now      time.Time
}

func newAccessFixture() *accessFixture {
	f := &accessFixture{
		projects: &projectRepoMock{},
		shares:   &shareRepoMock{},
		members:  &memberRepoMock{},
		cache:    &decisionCacheMock{},
		now:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.service = NewAccessService(f.projects, f.shares, f.members).
		WithClock(func() time.Time { return f.now })
	return f
}

func (f *accessFixture) withCache() *accessFixture {
	f.service = f.service.WithDecisionCache(f.cache, 30*time.Second)
	return f
}

func TestResolveAccessOwnerWinsOverEverything(t *testing.T) {
	f := newAccessFixture()
	team := "g1"
	f.projects.seed(domain.Project{ID: "p1", OwnerID: "user-1", TeamID: &team})
	// A weaker share and group role exist; ownership must still decide.
	f.shares.seed(domain.Share{ID: "s1", ProjectID: "p1", GrantedTo: "user-1", AccessLevel: domain.AccessLevelView})
	f.members.Create(context.Background(), domain.Membership{GroupID: "g1", UserID: "user-1", Role: domain.RoleViewer})

	decision, err := f.service.ResolveAccess(context.Background(), "p1", "user-1", domain.RoleUser)
	if err != nil {
		t.Fatalf("ResolveAccess: %v", err)
	}

	if !decision.Allowed || !decision.IsOwner {
		t.Fatalf("owner must be allowed and flagged, got %+v", decision)
	}
	if decision.AccessLevel != domain.AccessLevelAdmin {
		t.Fatalf("owner gets ADMIN, got %s", decision.AccessLevel)
	}
	if decision.Reason != domain.ReasonOwner {
		t.Fatalf("expected OWNER reason, got %s", decision.Reason)
	}
}

func TestResolveAccessShareBeatsGroupRole(t *testing.T) {
	f := newAccessFixture()
	team := "g1"
	f.projects.seed(domain.Project{ID: "p1", OwnerID: "owner-1", TeamID: &team})
	f.shares.seed(domain.Share{ID: "s1", ProjectID: "p1", GrantedTo: "user-2", AccessLevel: domain.AccessLevelView})
	f.members.Create(context.Background(), domain.Membership{GroupID: "g1", UserID: "user-2", Role: domain.RoleAdmin})

	decision, err := f.service.ResolveAccess(context.Background(), "p1", "user-2", domain.RoleUser)
	if err != nil {
		t.Fatalf("ResolveAccess: %v", err)
	}

	if decision.Reason != domain.ReasonShare {
		t.Fatalf("direct share takes precedence over group role, got %s", decision.Reason)
	}
	if decision.AccessLevel != domain.AccessLevelView {
		t.Fatalf("share level applies even when the group role is stronger, got %s", decision.AccessLevel)
	}
}

func TestResolveAccessGroupRole(t *testing.T) {
	f := newAccessFixture()
	team := "g1"
	f.projects.seed(domain.Project{ID: "p1", OwnerID: "owner-1", TeamID: &team})
	f.members.Create(context.Background(), domain.Membership{GroupID: "g1", UserID: "user-2", Role: domain.RoleMember})

	decision, err := f.service.ResolveAccess(context.Background(), "p1", "user-2", domain.RoleUser)
	if err != nil {
		t.Fatalf("ResolveAccess: %v", err)
	}

	if decision.Reason != domain.ReasonGroupRole {
		t.Fatalf("expected GROUP_ROLE reason, got %s", decision.Reason)
	}
	if decision.AccessLevel != domain.AccessLevelEdit {
		t.Fatalf("MEMBER confers EDIT, got %s", decision.AccessLevel)
	}
}

func TestResolveAccessNoGrant(t *testing.T) {
	f := newAccessFixture()
	f.projects.seed(domain.Project{ID: "p1", OwnerID: "owner-1"})

	decision, err := f.service.ResolveAccess(context.Background(), "p1", "user-2", domain.RoleUser)
	if err != nil {
		t.Fatalf("ResolveAccess: %v", err)
	}

	if decision.Allowed {
		t.Fatal("no grant means denied")
	}
	if decision.AccessLevel != domain.AccessLevelNone || decision.Reason != domain.ReasonNoGrant {
		t.Fatalf("expected NONE/NO_GRANT, got %+v", decision)
	}
}

func TestResolveAccessExpiredShareFallsThrough(t *testing.T) {
	f := newAccessFixture()
	f.projects.seed(domain.Project{ID: "p1", OwnerID: "owner-1"})
	expiry := f.now.Add(time.Minute)
	f.shares.seed(domain.Share{ID: "s1", ProjectID: "p1", GrantedTo: "user-2", AccessLevel: domain.AccessLevelEdit, ExpiresAt: &expiry})

	decision, err := f.service.ResolveAccess(context.Background(), "p1", "user-2", domain.RoleUser)
	if err != nil {
		t.Fatalf("ResolveAccess: %v", err)
	}
	if !decision.Allowed || decision.Reason != domain.ReasonShare {
		t.Fatalf("share is live before expiry, got %+v", decision)
	}

	// Advance past the expiry; the same row must now count for nothing.
	f.now = f.now.Add(2 * time.Minute)

	decision, err = f.service.ResolveAccess(context.Background(), "p1", "user-2", domain.RoleUser)
	if err != nil {
		t.Fatalf("ResolveAccess: %v", err)
	}
	if decision.Allowed || decision.Reason != domain.ReasonNoGrant {
		t.Fatalf("expired share must not grant access, got %+v", decision)
	}
}

func TestResolveAccessSystemRoleShortCircuits(t *testing.T) {
	// Repositories are left empty: an elevated system role must never touch them.
	f := newAccessFixture().withCache()

	for _, role := range []domain.Role{domain.RoleAdmin, domain.RoleSuperAdmin} {
		decision, err := f.service.ResolveAccess(context.Background(), "p1", "user-2", role)
		if err != nil {
			t.Fatalf("ResolveAccess(%s): %v", role, err)
		}
		if !decision.Allowed || decision.AccessLevel != domain.AccessLevelAdmin {
			t.Fatalf("%s must get ADMIN, got %+v", role, decision)
		}
		if decision.Reason != domain.ReasonSystemRole {
			t.Fatalf("expected SYSTEM_ROLE reason, got %s", decision.Reason)
		}
	}

	if f.cache.sets != 0 {
		t.Fatal("system role decisions are computed without IO and never cached")
	}
}

func TestResolveAccessCacheHitSkipsRepositories(t *testing.T) {
	f := newAccessFixture().withCache()
	// No project seeded: a repository hit would fail with not found.
	f.cache.decisions = map[string]domain.AccessDecision{
		cacheKey("p1", "user-2"): {Allowed: true, AccessLevel: domain.AccessLevelEdit, Reason: domain.ReasonShare},
	}

	decision, err := f.service.ResolveAccess(context.Background(), "p1", "user-2", domain.RoleUser)
	if err != nil {
		t.Fatalf("ResolveAccess: %v", err)
	}
	if !decision.Allowed || decision.AccessLevel != domain.AccessLevelEdit {
		t.Fatalf("expected the cached decision, got %+v", decision)
	}
}

func TestResolveAccessCachesComputedDecision(t *testing.T) {
	f := newAccessFixture().withCache()
	f.projects.seed(domain.Project{ID: "p1", OwnerID: "user-1"})

	if _, err := f.service.ResolveAccess(context.Background(), "p1", "user-1", domain.RoleUser); err != nil {
		t.Fatalf("ResolveAccess: %v", err)
	}

	if f.cache.sets != 1 {
		t.Fatalf("expected one cache write, got %d", f.cache.sets)
	}
	cached, err := f.cache.GetDecision(context.Background(), "p1", "user-1")
	if err != nil {
		t.Fatalf("cached decision missing: %v", err)
	}
	if !cached.IsOwner {
		t.Fatal("cached decision must match the computed one")
	}
}

func TestCanPerformMapsActionsToLevels(t *testing.T) {
	f := newAccessFixture()
	f.projects.seed(domain.Project{ID: "p1", OwnerID: "owner-1"})
	f.shares.seed(domain.Share{ID: "s1", ProjectID: "p1", GrantedTo: "viewer", AccessLevel: domain.AccessLevelView})
	f.shares.seed(domain.Share{ID: "s2", ProjectID: "p1", GrantedTo: "editor", AccessLevel: domain.AccessLevelEdit})

	cases := []struct {
		principal string
		action    domain.Action
		want      bool
	}{
		{"viewer", domain.ActionRead, true},
		{"viewer", domain.ActionUpdate, false},
		{"viewer", domain.ActionDelete, false},
		{"editor", domain.ActionRead, true},
		{"editor", domain.ActionUpdate, true},
		{"editor", domain.ActionDelete, false},
		{"owner-1", domain.ActionDelete, true},
		{"stranger", domain.ActionRead, false},
		// Unknown actions fail closed below ADMIN.
		{"editor", domain.Action("transmogrify"), false},
		{"owner-1", domain.Action("transmogrify"), true},
	}

	for _, tc := range cases {
		allowed, err := f.service.CanPerform(context.Background(), "p1", tc.principal, domain.RoleUser, tc.action)
		if err != nil {
			t.Fatalf("CanPerform(%s, %s): %v", tc.principal, tc.action, err)
		}
		if allowed != tc.want {
			t.Fatalf("CanPerform(%s, %s) = %v, want %v", tc.principal, tc.action, allowed, tc.want)
		}
	}
}

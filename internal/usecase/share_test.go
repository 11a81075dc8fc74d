package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arklim/social-platform-collab/internal/core/domain"
	"github.com/arklim/social-platform-collab/internal/repository"
)

// Mock repositories for share testing

type projectRepoMock struct {
	projects map[string]domain.Project
}

func (m *projectRepoMock) seed(project domain.Project) {
	if m.projects == nil {
		m.projects = make(map[string]domain.Project)
	}
	m.projects[project.ID] = project
}

func (m *projectRepoMock) GetByID(_ context.Context, id string) (*domain.Project, error) {
	if project, ok := m.projects[id]; ok {
		return &project, nil
	}
	return nil, repository.ErrNotFound
}

func (m *projectRepoMock) DetachTeam(_ context.Context, teamID string) (int, error) {
	count := 0
	for id, project := range m.projects {
		if project.TeamID != nil && *project.TeamID == teamID {
			project.TeamID = nil
			m.projects[id] = project
			count++
		}
	}
	return count, nil
}

type shareRepoMock struct {
	shares    map[string]domain.Share
	purgedAt  *time.Time
	purgedNum int
}

func (m *shareRepoMock) seed(share domain.Share) {
	if m.shares == nil {
		m.shares = make(map[string]domain.Share)
	}
	m.shares[share.ID] = share
}

func (m *shareRepoMock) Upsert(_ context.Context, share domain.Share) error {
	if m.shares == nil {
		m.shares = make(map[string]domain.Share)
	}
	m.shares[share.ID] = share
	return nil
}

func (m *shareRepoMock) GetByID(_ context.Context, id string) (*domain.Share, error) {
	if share, ok := m.shares[id]; ok {
		return &share, nil
	}
	return nil, repository.ErrNotFound
}

func (m *shareRepoMock) GetByProjectAndTarget(_ context.Context, projectID, userID string) (*domain.Share, error) {
	for _, share := range m.shares {
		if share.ProjectID == projectID && share.GrantedTo == userID {
			return &share, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *shareRepoMock) ListByTarget(_ context.Context, userID string, now time.Time) ([]domain.SharedProject, error) {
	result := make([]domain.SharedProject, 0)
	for _, share := range m.shares {
		if share.GrantedTo == userID && !share.Expired(now) {
			result = append(result, domain.SharedProject{Share: share, OwnerID: share.GrantedBy})
		}
	}
	return result, nil
}

func (m *shareRepoMock) ListByGranter(_ context.Context, userID string, now time.Time) ([]domain.SharedProject, error) {
	result := make([]domain.SharedProject, 0)
	for _, share := range m.shares {
		if share.GrantedBy == userID && !share.Expired(now) {
			result = append(result, domain.SharedProject{Share: share, OwnerID: share.GrantedBy})
		}
	}
	return result, nil
}

func (m *shareRepoMock) UpdateSettings(_ context.Context, id string, settings domain.ShareSettings, updatedAt time.Time) error {
	share, ok := m.shares[id]
	if !ok {
		return repository.ErrNotFound
	}
	share.Settings = settings
	share.UpdatedAt = updatedAt
	m.shares[id] = share
	return nil
}

func (m *shareRepoMock) Delete(_ context.Context, id string) error {
	if _, ok := m.shares[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.shares, id)
	return nil
}

func (m *shareRepoMock) DeleteExpiredBefore(_ context.Context, cutoff time.Time) (int, error) {
	m.purgedAt = &cutoff
	count := 0
	for id, share := range m.shares {
		if share.ExpiresAt != nil && share.ExpiresAt.Before(cutoff) {
			delete(m.shares, id)
			count++
		}
	}
	m.purgedNum = count
	return count, nil
}

type shareFixture struct {
	shares   *shareRepoMock
	projects *projectRepoMock
	events   *eventRecorder
	cache    *decisionCacheMock
	service  *ShareService
	now      time.Time
}

func newShareFixture() *shareFixture {
	f := &shareFixture{
		shares:   &shareRepoMock{},
		projects: &projectRepoMock{},
		events:   &eventRecorder{},
		cache:    &decisionCacheMock{},
		now:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.service = NewShareService(f.shares, f.projects, f.events).
		WithDecisionCache(f.cache).
		WithClock(func() time.Time { return f.now })
	f.projects.seed(domain.Project{ID: "p1", Name: "api", OwnerID: "owner-1"})
	return f
}

func TestShareProjectCreatesShare(t *testing.T) {
	f := newShareFixture()

	share, err := f.service.ShareProject(context.Background(), ShareProjectInput{
		ProjectID:   "p1",
		OwnerID:     "owner-1",
		TargetID:    "user-2",
		AccessLevel: domain.AccessLevelEdit,
	})
	if err != nil {
		t.Fatalf("ShareProject: %v", err)
	}

	if share.GrantedBy != "owner-1" || share.GrantedTo != "user-2" {
		t.Fatalf("unexpected grant endpoints: %+v", share)
	}
	if share.AccessLevel != domain.AccessLevelEdit {
		t.Fatalf("expected EDIT, got %s", share.AccessLevel)
	}
	if !share.Settings.AllowComments {
		t.Fatal("default settings must apply when none are given")
	}
	if share.CreatedAt != f.now || share.UpdatedAt != f.now {
		t.Fatal("timestamps must come from the service clock")
	}

	if len(f.events.shareCreated) != 1 || f.events.shareCreated[0].Updated {
		t.Fatalf("expected one fresh share created event, got %+v", f.events.shareCreated)
	}
	if len(f.cache.invalidatedPairs) != 1 || f.cache.invalidatedPairs[0] != cacheKey("p1", "user-2") {
		t.Fatalf("expected decision invalidation for (p1, user-2), got %v", f.cache.invalidatedPairs)
	}
}

func TestShareProjectReshareKeepsIdentity(t *testing.T) {
	f := newShareFixture()
	created := f.now.Add(-48 * time.Hour)
	f.shares.seed(domain.Share{
		ID:          "share-1",
		ProjectID:   "p1",
		GrantedBy:   "owner-1",
		GrantedTo:   "user-2",
		AccessLevel: domain.AccessLevelView,
		CreatedAt:   created,
		UpdatedAt:   created,
	})

	share, err := f.service.ShareProject(context.Background(), ShareProjectInput{
		ProjectID:   "p1",
		OwnerID:     "owner-1",
		TargetID:    "user-2",
		AccessLevel: domain.AccessLevelAdmin,
	})
	if err != nil {
		t.Fatalf("ShareProject: %v", err)
	}

	if share.ID != "share-1" {
		t.Fatalf("re-share must reuse the existing id, got %s", share.ID)
	}
	if !share.CreatedAt.Equal(created) {
		t.Fatal("re-share must keep the original creation time")
	}
	if !share.UpdatedAt.Equal(f.now) {
		t.Fatal("re-share must refresh the update time")
	}
	if share.AccessLevel != domain.AccessLevelAdmin {
		t.Fatalf("expected ADMIN after re-share, got %s", share.AccessLevel)
	}
	if len(f.shares.shares) != 1 {
		t.Fatalf("re-share must not create a second row, got %d", len(f.shares.shares))
	}
	if len(f.events.shareCreated) != 1 || !f.events.shareCreated[0].Updated {
		t.Fatal("re-share event must carry the updated flag")
	}
}

func TestShareProjectOwnerOnly(t *testing.T) {
	f := newShareFixture()

	_, err := f.service.ShareProject(context.Background(), ShareProjectInput{
		ProjectID:   "p1",
		OwnerID:     "user-2",
		TargetID:    "user-3",
		AccessLevel: domain.AccessLevelView,
	})
	if !errors.Is(err, ErrNotProjectOwner) {
		t.Fatalf("expected ErrNotProjectOwner, got %v", err)
	}
}

func TestShareProjectRejectsSelfShare(t *testing.T) {
	f := newShareFixture()

	_, err := f.service.ShareProject(context.Background(), ShareProjectInput{
		ProjectID:   "p1",
		OwnerID:     "owner-1",
		TargetID:    "owner-1",
		AccessLevel: domain.AccessLevelView,
	})
	if !errors.Is(err, ErrShareWithSelf) {
		t.Fatalf("expected ErrShareWithSelf, got %v", err)
	}
}

func TestShareProjectRejectsInvalidLevel(t *testing.T) {
	f := newShareFixture()

	_, err := f.service.ShareProject(context.Background(), ShareProjectInput{
		ProjectID:   "p1",
		OwnerID:     "owner-1",
		TargetID:    "user-2",
		AccessLevel: domain.AccessLevelNone,
	})
	if !errors.Is(err, ErrInvalidAccessLevel) {
		t.Fatalf("expected ErrInvalidAccessLevel, got %v", err)
	}
}

func TestShareProjectRejectsPastExpiry(t *testing.T) {
	f := newShareFixture()

	expiry := f.now
	_, err := f.service.ShareProject(context.Background(), ShareProjectInput{
		ProjectID:   "p1",
		OwnerID:     "owner-1",
		TargetID:    "user-2",
		AccessLevel: domain.AccessLevelView,
		ExpiresAt:   &expiry,
	})
	if !errors.Is(err, ErrExpiryInPast) {
		t.Fatalf("expiry at the current instant must be rejected, got %v", err)
	}

	future := f.now.Add(time.Hour)
	if _, err := f.service.ShareProject(context.Background(), ShareProjectInput{
		ProjectID:   "p1",
		OwnerID:     "owner-1",
		TargetID:    "user-2",
		AccessLevel: domain.AccessLevelView,
		ExpiresAt:   &future,
	}); err != nil {
		t.Fatalf("future expiry must be accepted: %v", err)
	}
}

func TestRevokeShareAuthorization(t *testing.T) {
	f := newShareFixture()
	f.shares.seed(domain.Share{
		ID:        "share-1",
		ProjectID: "p1",
		GrantedBy: "owner-1",
		GrantedTo: "user-2",
	})

	// A stranger learns nothing about the share's existence.
	err := f.service.RevokeShare(context.Background(), "share-1", "user-3")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for strangers, got %v", err)
	}
	if len(f.shares.shares) != 1 {
		t.Fatal("share must survive an unauthorized revoke")
	}

	if err := f.service.RevokeShare(context.Background(), "share-1", "owner-1"); err != nil {
		t.Fatalf("RevokeShare by granter: %v", err)
	}
	if len(f.shares.shares) != 0 {
		t.Fatal("share must be gone after revoke")
	}
	if len(f.events.shareRevoked) != 1 {
		t.Fatalf("expected one revoked event, got %d", len(f.events.shareRevoked))
	}
	if len(f.cache.invalidatedPairs) != 1 || f.cache.invalidatedPairs[0] != cacheKey("p1", "user-2") {
		t.Fatalf("expected decision invalidation for the target, got %v", f.cache.invalidatedPairs)
	}
}

func TestRevokeShareByProjectOwner(t *testing.T) {
	f := newShareFixture()
	// Granted by a previous owner; the current project owner may still revoke.
	f.shares.seed(domain.Share{
		ID:        "share-1",
		ProjectID: "p1",
		GrantedBy: "previous-owner",
		GrantedTo: "user-2",
	})

	if err := f.service.RevokeShare(context.Background(), "share-1", "owner-1"); err != nil {
		t.Fatalf("RevokeShare by project owner: %v", err)
	}
}

func TestUpdateShareSettings(t *testing.T) {
	f := newShareFixture()
	f.shares.seed(domain.Share{
		ID:        "share-1",
		ProjectID: "p1",
		GrantedBy: "owner-1",
		GrantedTo: "user-2",
		Settings:  domain.DefaultShareSettings(),
	})

	settings := domain.ShareSettings{AllowDownload: true, RequireApproval: true}
	if err := f.service.UpdateShareSettings(context.Background(), "share-1", "owner-1", settings); err != nil {
		t.Fatalf("UpdateShareSettings: %v", err)
	}

	stored, _ := f.shares.GetByID(context.Background(), "share-1")
	if stored.Settings != settings {
		t.Fatalf("settings not replaced: %+v", stored.Settings)
	}
	if !stored.UpdatedAt.Equal(f.now) {
		t.Fatal("update instant must come from the service clock")
	}

	if len(f.events.settingsUpdated) != 1 {
		t.Fatalf("expected one settings updated event, got %d", len(f.events.settingsUpdated))
	}
	event := f.events.settingsUpdated[0]
	if event.ShareID != "share-1" || event.UpdatedBy != "owner-1" || event.Settings != settings {
		t.Fatalf("event must carry the change, got %+v", event)
	}
	if !event.UpdatedAt.Equal(f.now) {
		t.Fatal("event timestamp must come from the service clock")
	}

	if err := f.service.UpdateShareSettings(context.Background(), "share-1", "user-3", settings); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for strangers, got %v", err)
	}
	if len(f.events.settingsUpdated) != 1 {
		t.Fatal("an unauthorized update must not publish an event")
	}
}

func TestListSharedWithMeFiltersExpired(t *testing.T) {
	f := newShareFixture()
	past := f.now.Add(-time.Minute)
	future := f.now.Add(time.Hour)
	f.shares.seed(domain.Share{ID: "live", ProjectID: "p1", GrantedBy: "owner-1", GrantedTo: "user-2", ExpiresAt: &future})
	f.shares.seed(domain.Share{ID: "dead", ProjectID: "p2", GrantedBy: "owner-1", GrantedTo: "user-2", ExpiresAt: &past})

	shared, err := f.service.ListSharedWithMe(context.Background(), "user-2")
	if err != nil {
		t.Fatalf("ListSharedWithMe: %v", err)
	}
	if len(shared) != 1 || shared[0].Share.ID != "live" {
		t.Fatalf("expired shares must never be listed, got %+v", shared)
	}
}

func TestPurgeExpiredAppliesRetention(t *testing.T) {
	f := newShareFixture()
	old := f.now.Add(-48 * time.Hour)
	recent := f.now.Add(-time.Hour)
	f.shares.seed(domain.Share{ID: "ancient", ProjectID: "p1", GrantedTo: "user-2", ExpiresAt: &old})
	f.shares.seed(domain.Share{ID: "fresh-expired", ProjectID: "p2", GrantedTo: "user-2", ExpiresAt: &recent})

	purged, err := f.service.PurgeExpired(context.Background(), 24*time.Hour)
	if err != nil {
		t.Fatalf("PurgeExpired: %v", err)
	}

	if purged != 1 {
		t.Fatalf("only shares expired past the retention window are purged, got %d", purged)
	}
	wantCutoff := f.now.Add(-24 * time.Hour)
	if f.shares.purgedAt == nil || !f.shares.purgedAt.Equal(wantCutoff) {
		t.Fatalf("expected cutoff %v, got %v", wantCutoff, f.shares.purgedAt)
	}
	if _, err := f.shares.GetByID(context.Background(), "fresh-expired"); err != nil {
		t.Fatal("shares inside the retention window must survive housekeeping")
	}
}

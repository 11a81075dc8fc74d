package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/social-platform-collab/internal/core/domain"
	"github.com/arklim/social-platform-collab/internal/core/port"
	"github.com/arklim/social-platform-collab/internal/repository"
)

var (
	// ErrNotProjectOwner indicates the granter does not own the project.
	// Sharing is owner-only; a share cannot itself be re-shared.
	ErrNotProjectOwner = errors.New("only the project owner can share it")
	// ErrShareWithSelf indicates an attempt to share a project with its owner.
	ErrShareWithSelf = errors.New("cannot share a project with its owner")
	// ErrInvalidAccessLevel indicates a share without a usable access level.
	ErrInvalidAccessLevel = errors.New("share access level must be VIEW, EDIT, or ADMIN")
	// ErrExpiryInPast indicates an expiry that precedes the current time.
	ErrExpiryInPast = errors.New("share expiry must be in the future")
)

// ShareProjectInput captures the payload for creating or updating a share.
type ShareProjectInput struct {
	ProjectID   string
	OwnerID     string
	TargetID    string
	AccessLevel domain.AccessLevel
	Settings    *domain.ShareSettings
	ExpiresAt   *time.Time
}

// ShareService manages direct, optionally time-bounded project grants.
type ShareService struct {
	shares   port.ShareRepository
	projects port.ProjectRepository
	events   port.EventPublisher
	cache    port.DecisionCache
	logger   *zap.Logger
	now      func() time.Time
}

// NewShareService constructs a ShareService.
func NewShareService(shares port.ShareRepository, projects port.ProjectRepository, events port.EventPublisher) *ShareService {
	return &ShareService{
		shares:   shares,
		projects: projects,
		events:   events,
		logger:   zap.NewNop(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithDecisionCache attaches the cache invalidated by share mutations.
func (s *ShareService) WithDecisionCache(cache port.DecisionCache) *ShareService {
	s.cache = cache
	return s
}

// WithLogger attaches a structured logger.
func (s *ShareService) WithLogger(log *zap.Logger) *ShareService {
	if log != nil {
		s.logger = log
	}
	return s
}

// WithClock overrides the time source, for tests.
func (s *ShareService) WithClock(now func() time.Time) *ShareService {
	if now != nil {
		s.now = now
	}
	return s
}

// ShareProject grants the target access to the project. Re-sharing the same
// (project, target) pair updates the existing share in place rather than
// creating a duplicate.
func (s *ShareService) ShareProject(ctx context.Context, input ShareProjectInput) (*domain.Share, error) {
	projectID := strings.TrimSpace(input.ProjectID)
	ownerID := strings.TrimSpace(input.OwnerID)
	targetID := strings.TrimSpace(input.TargetID)
	if projectID == "" || ownerID == "" || targetID == "" {
		return nil, fmt.Errorf("project id, owner id, and target id are required")
	}

	if input.AccessLevel < domain.AccessLevelView || input.AccessLevel > domain.AccessLevelAdmin {
		return nil, ErrInvalidAccessLevel
	}

	now := s.now()
	if input.ExpiresAt != nil && !input.ExpiresAt.After(now) {
		return nil, ErrExpiryInPast
	}

	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	if project.OwnerID != ownerID {
		return nil, ErrNotProjectOwner
	}
	if targetID == project.OwnerID {
		return nil, ErrShareWithSelf
	}

	settings := domain.DefaultShareSettings()
	if input.Settings != nil {
		settings = *input.Settings
	}

	share := domain.Share{
		ID:          uuid.NewString(),
		ProjectID:   projectID,
		GrantedBy:   ownerID,
		GrantedTo:   targetID,
		AccessLevel: input.AccessLevel,
		Settings:    settings,
		ExpiresAt:   input.ExpiresAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	updated := false
	if existing, err := s.shares.GetByProjectAndTarget(ctx, projectID, targetID); err == nil {
		share.ID = existing.ID
		share.CreatedAt = existing.CreatedAt
		updated = true
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup existing share: %w", err)
	}

	if err := s.shares.Upsert(ctx, share); err != nil {
		return nil, fmt.Errorf("upsert share: %w", err)
	}

	s.invalidateDecision(ctx, projectID, targetID)
	s.publishShareCreated(ctx, share, updated)

	return &share, nil
}

// RevokeShare deletes a share. Only the project owner or the original
// granter may revoke; anyone else sees ErrNotFound so share existence does
// not leak.
func (s *ShareService) RevokeShare(ctx context.Context, shareID, requesterID string) error {
	share, err := s.authorizeShareChange(ctx, shareID, requesterID)
	if err != nil {
		return err
	}

	if err := s.shares.Delete(ctx, share.ID); err != nil {
		return fmt.Errorf("delete share: %w", err)
	}

	s.invalidateDecision(ctx, share.ProjectID, share.GrantedTo)
	s.publishShareRevoked(ctx, *share, requesterID)

	return nil
}

// UpdateShareSettings replaces the settings bundle on a share. Same
// authorization as RevokeShare.
func (s *ShareService) UpdateShareSettings(ctx context.Context, shareID, requesterID string, settings domain.ShareSettings) error {
	share, err := s.authorizeShareChange(ctx, shareID, requesterID)
	if err != nil {
		return err
	}

	now := s.now()
	if err := s.shares.UpdateSettings(ctx, share.ID, settings, now); err != nil {
		return fmt.Errorf("update share settings: %w", err)
	}

	s.publishShareSettingsUpdated(ctx, *share, requesterID, settings, now)

	return nil
}

// ListSharedWithMe returns live shares granted to the principal with
// project and owner display data. Expired shares never appear.
func (s *ShareService) ListSharedWithMe(ctx context.Context, principalID string) ([]domain.SharedProject, error) {
	principalID = strings.TrimSpace(principalID)
	if principalID == "" {
		return nil, fmt.Errorf("principal id is required")
	}

	shared, err := s.shares.ListByTarget(ctx, principalID, s.now())
	if err != nil {
		return nil, fmt.Errorf("list shares by target: %w", err)
	}

	return shared, nil
}

// ListMyShares returns live shares the principal has granted to others.
func (s *ShareService) ListMyShares(ctx context.Context, principalID string) ([]domain.SharedProject, error) {
	principalID = strings.TrimSpace(principalID)
	if principalID == "" {
		return nil, fmt.Errorf("principal id is required")
	}

	shared, err := s.shares.ListByGranter(ctx, principalID, s.now())
	if err != nil {
		return nil, fmt.Errorf("list shares by granter: %w", err)
	}

	return shared, nil
}

// PurgeExpired removes shares whose expiry predates now minus the retention
// window. Housekeeping only; read paths already filter expired shares.
func (s *ShareService) PurgeExpired(ctx context.Context, retention time.Duration) (int, error) {
	cutoff := s.now()
	if retention > 0 {
		cutoff = cutoff.Add(-retention)
	}

	purged, err := s.shares.DeleteExpiredBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete expired shares: %w", err)
	}

	if purged > 0 {
		s.logger.Info("purged expired shares",
			zap.Int("count", purged),
			zap.Time("cutoff", cutoff))
	}

	return purged, nil
}

func (s *ShareService) authorizeShareChange(ctx context.Context, shareID, requesterID string) (*domain.Share, error) {
	shareID = strings.TrimSpace(shareID)
	requesterID = strings.TrimSpace(requesterID)
	if shareID == "" || requesterID == "" {
		return nil, fmt.Errorf("share id and requester id are required")
	}

	share, err := s.shares.GetByID(ctx, shareID)
	if err != nil {
		return nil, fmt.Errorf("get share: %w", err)
	}

	if share.GrantedBy == requesterID {
		return share, nil
	}

	project, err := s.projects.GetByID(ctx, share.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	if project.OwnerID != requesterID {
		return nil, repository.ErrNotFound
	}

	return share, nil
}

func (s *ShareService) invalidateDecision(ctx context.Context, projectID, principalID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateDecision(ctx, projectID, principalID); err != nil {
		s.logger.Warn("invalidate decision cache",
			zap.String("project_id", projectID),
			zap.String("principal_id", principalID),
			zap.Error(err))
	}
}

func (s *ShareService) publishShareCreated(ctx context.Context, share domain.Share, updated bool) {
	if s.events == nil {
		return
	}
	event := domain.ShareCreatedEvent{
		EventID:     uuid.NewString(),
		ShareID:     share.ID,
		ProjectID:   share.ProjectID,
		GrantedBy:   share.GrantedBy,
		GrantedTo:   share.GrantedTo,
		AccessLevel: share.AccessLevel,
		ExpiresAt:   share.ExpiresAt,
		Updated:     updated,
		SharedAt:    share.UpdatedAt,
	}
	if err := s.events.PublishShareCreated(ctx, event); err != nil {
		s.logger.Warn("publish share created event", zap.Error(err))
	}
}

func (s *ShareService) publishShareSettingsUpdated(ctx context.Context, share domain.Share, updatedBy string, settings domain.ShareSettings, at time.Time) {
	if s.events == nil {
		return
	}
	event := domain.ShareSettingsUpdatedEvent{
		EventID:   uuid.NewString(),
		ShareID:   share.ID,
		ProjectID: share.ProjectID,
		GrantedTo: share.GrantedTo,
		UpdatedBy: updatedBy,
		Settings:  settings,
		UpdatedAt: at,
	}
	if err := s.events.PublishShareSettingsUpdated(ctx, event); err != nil {
		s.logger.Warn("publish share settings updated event", zap.Error(err))
	}
}

func (s *ShareService) publishShareRevoked(ctx context.Context, share domain.Share, revokedBy string) {
	if s.events == nil {
		return
	}
	event := domain.ShareRevokedEvent{
		EventID:   uuid.NewString(),
		ShareID:   share.ID,
		ProjectID: share.ProjectID,
		GrantedTo: share.GrantedTo,
		RevokedBy: revokedBy,
		RevokedAt: s.now(),
	}
	if err := s.events.PublishShareRevoked(ctx, event); err != nil {
		s.logger.Warn("publish share revoked event", zap.Error(err))
	}
}

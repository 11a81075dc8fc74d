package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/arklim/social-platform-collab/internal/core/domain"
	"github.com/arklim/social-platform-collab/internal/core/port"
	"github.com/arklim/social-platform-collab/internal/infra/telemetry"
	"github.com/arklim/social-platform-collab/internal/repository"
)

const defaultDecisionTTL = 30 * time.Second

// AccessService is the single entry point for authorization questions. It
// combines ownership, live shares, and group membership into one decision;
// callers never consult the registries directly for access checks.
type AccessService struct {
	projects port.ProjectRepository
	shares   port.ShareRepository
	members  port.MembershipRepository
	cache    port.DecisionCache
	cacheTTL time.Duration
	metrics  *telemetry.AccessMetrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewAccessService constructs an AccessService.
func NewAccessService(projects port.ProjectRepository, shares port.ShareRepository, members port.MembershipRepository) *AccessService {
	return &AccessService{
		projects: projects,
		shares:   shares,
		members:  members,
		cacheTTL: defaultDecisionTTL,
		logger:   zap.NewNop(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithDecisionCache attaches the short-lived decision cache.
func (s *AccessService) WithDecisionCache(cache port.DecisionCache, ttl time.Duration) *AccessService {
	s.cache = cache
	if ttl > 0 {
		s.cacheTTL = ttl
	}
	return s
}

// WithMetrics attaches decision counters.
func (s *AccessService) WithMetrics(metrics *telemetry.AccessMetrics) *AccessService {
	s.metrics = metrics
	return s
}

// WithLogger attaches a structured logger.
func (s *AccessService) WithLogger(log *zap.Logger) *AccessService {
	if log != nil {
		s.logger = log
	}
	return s
}

// WithClock overrides the time source, for tests.
func (s *AccessService) WithClock(now func() time.Time) *AccessService {
	if now != nil {
		s.now = now
	}
	return s
}

// ResolveAccess decides what the principal may do with the project, in
// strict precedence order: system role, ownership, live share, group role.
// The owner always wins over any share or group role on the same project.
func (s *AccessService) ResolveAccess(ctx context.Context, projectID, principalID string, systemRole domain.Role) (domain.AccessDecision, error) {
	projectID = strings.TrimSpace(projectID)
	principalID = strings.TrimSpace(principalID)
	if projectID == "" || principalID == "" {
		return domain.AccessDecision{}, fmt.Errorf("project id and principal id are required")
	}

	// Platform operators bypass per-resource grants entirely. Computed
	// without IO, so never cached.
	if systemRole.IsSystemElevated() {
		decision := domain.AccessDecision{
			Allowed:     true,
			AccessLevel: domain.AccessLevelAdmin,
			Reason:      domain.ReasonSystemRole,
		}
		s.countDecision(decision)
		return decision, nil
	}

	if s.cache != nil {
		cached, err := s.cache.GetDecision(ctx, projectID, principalID)
		switch {
		case err == nil:
			s.countCache(true)
			return *cached, nil
		case errors.Is(err, repository.ErrNotFound):
			s.countCache(false)
		default:
			s.logger.Warn("decision cache read failed", zap.Error(err))
		}
	}

	decision, err := s.resolve(ctx, projectID, principalID)
	if err != nil {
		return domain.AccessDecision{}, err
	}

	if s.cache != nil {
		if err := s.cache.SetDecision(ctx, projectID, principalID, decision, s.cacheTTL); err != nil {
			s.logger.Warn("decision cache write failed", zap.Error(err))
		}
	}

	s.countDecision(decision)
	return decision, nil
}

func (s *AccessService) resolve(ctx context.Context, projectID, principalID string) (domain.AccessDecision, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return domain.AccessDecision{}, fmt.Errorf("get project: %w", err)
	}

	if project.OwnerID == principalID {
		return domain.AccessDecision{
			Allowed:     true,
			AccessLevel: domain.AccessLevelAdmin,
			IsOwner:     true,
			Reason:      domain.ReasonOwner,
		}, nil
	}

	share, err := s.shares.GetByProjectAndTarget(ctx, projectID, principalID)
	switch {
	case err == nil:
		if !share.Expired(s.now()) {
			return domain.AccessDecision{
				Allowed:     true,
				AccessLevel: share.AccessLevel,
				Reason:      domain.ReasonShare,
			}, nil
		}
	case !errors.Is(err, repository.ErrNotFound):
		return domain.AccessDecision{}, fmt.Errorf("get share: %w", err)
	}

	if project.TeamID != nil {
		membership, err := s.members.Get(ctx, *project.TeamID, principalID)
		switch {
		case err == nil:
			return domain.AccessDecision{
				Allowed:     true,
				AccessLevel: membership.Role.GroupAccessLevel(),
				Reason:      domain.ReasonGroupRole,
			}, nil
		case !errors.Is(err, repository.ErrNotFound):
			return domain.AccessDecision{}, fmt.Errorf("get membership: %w", err)
		}
	}

	return domain.AccessDecision{
		Allowed:     false,
		AccessLevel: domain.AccessLevelNone,
		Reason:      domain.ReasonNoGrant,
	}, nil
}

// CanPerform combines ResolveAccess with the action's minimum access level,
// so callers do not re-implement the mapping.
func (s *AccessService) CanPerform(ctx context.Context, projectID, principalID string, systemRole domain.Role, action domain.Action) (bool, error) {
	decision, err := s.ResolveAccess(ctx, projectID, principalID, systemRole)
	if err != nil {
		return false, err
	}

	return decision.Allowed && decision.AccessLevel >= domain.MinimumLevelFor(action), nil
}

func (s *AccessService) countDecision(decision domain.AccessDecision) {
	if s.metrics == nil {
		return
	}
	s.metrics.CountDecision(string(decision.Reason), decision.Allowed)
}

func (s *AccessService) countCache(hit bool) {
	if s.metrics == nil {
		return
	}
	s.metrics.CountCacheLookup(hit)
}

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

// MinGroupMembers is the smallest permitted capacity: a group below two
// members cannot outlive an ownership transfer.
const MinGroupMembers = 2

var (
	// ErrGroupNameRequired indicates an empty group name.
	ErrGroupNameRequired = errors.New("group name is required")
	// ErrMaxMembersTooSmall indicates a capacity below the minimum.
	ErrMaxMembersTooSmall = errors.New("max members must be at least 2")
	// ErrInvalidMemberRole indicates a role that cannot be held by a membership.
	ErrInvalidMemberRole = errors.New("role is not assignable to a group member")
	// ErrPermissionDenied indicates the actor lacks the required permission.
	ErrPermissionDenied = errors.New("insufficient permissions")
	// ErrGroupFull indicates the group is at member capacity.
	ErrGroupFull = errors.New("group is at member capacity")
	// ErrAlreadyMember indicates the target already belongs to the group.
	ErrAlreadyMember = errors.New("user is already a member of the group")
	// ErrNotMember indicates the target has no membership in the group.
	ErrNotMember = errors.New("user is not a member of the group")
	// ErrLastOwner indicates the mutation would leave the group without an owner.
	ErrLastOwner = errors.New("group must retain at least one owner")
	// ErrOwnershipTransferRequired is the self-service variant of ErrLastOwner.
	ErrOwnershipTransferRequired = errors.New("transfer group ownership before leaving")
)

// CreateGroupInput captures the payload for creating a group.
type CreateGroupInput struct {
	Name        string
	Description *string
	MaxMembers  int
	IsPublic    bool
	CreatorID   string
}

// InviteMemberInput captures the payload for inviting a member. Exactly one
// of UserID and Email identifies the target.
type InviteMemberInput struct {
	GroupID   string
	InviterID string
	UserID    string
	Email     string
	Role      domain.Role
}

// InviteMemberResult reports either the created membership or, when the
// identity has no principal yet, the pending invitation.
type InviteMemberResult struct {
	Membership *domain.Membership
	Invitation *domain.Invitation
}

// UpdateMemberRoleInput captures the payload for changing a member's role.
type UpdateMemberRoleInput struct {
	GroupID   string
	MemberID  string
	NewRole   domain.Role
	UpdaterID string
}

// GroupService manages groups, memberships, and pending invitations. Every
// mutation runs inside one store transaction and takes the group row lock
// before reading membership state, so concurrent mutations on the same
// group serialize and the owner invariant cannot be raced away.
type GroupService struct {
	tx        port.GroupTxFunc
	groups    port.GroupRepository
	members   port.MembershipRepository
	invites   port.InvitationRepository
	directory port.PrincipalDirectory
	events    port.EventPublisher
	cache     port.DecisionCache
	logger    *zap.Logger
	now       func() time.Time
}

// NewGroupService constructs a GroupService.
func NewGroupService(
	tx port.GroupTxFunc,
	groups port.GroupRepository,
	members port.MembershipRepository,
	invites port.InvitationRepository,
	directory port.PrincipalDirectory,
	events port.EventPublisher,
) *GroupService {
	return &GroupService{
		tx:        tx,
		groups:    groups,
		members:   members,
		invites:   invites,
		directory: directory,
		events:    events,
		logger:    zap.NewNop(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithDecisionCache attaches the cache invalidated by membership mutations.
func (s *GroupService) WithDecisionCache(cache port.DecisionCache) *GroupService {
	s.cache = cache
	return s
}

// WithLogger attaches a structured logger.
func (s *GroupService) WithLogger(log *zap.Logger) *GroupService {
	if log != nil {
		s.logger = log
	}
	return s
}

// WithClock overrides the time source, for tests.
func (s *GroupService) WithClock(now func() time.Time) *GroupService {
	if now != nil {
		s.now = now
	}
	return s
}

// CreateGroup creates the group and the creator's OWNER membership in a
// single atomic unit, so the owner invariant holds from the first instant.
func (s *GroupService) CreateGroup(ctx context.Context, input CreateGroupInput) (*domain.Group, error) {
	creatorID := strings.TrimSpace(input.CreatorID)
	if creatorID == "" {
		return nil, fmt.Errorf("creator id is required")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrGroupNameRequired
	}

	maxMembers := input.MaxMembers
	if maxMembers == 0 {
		maxMembers = domain.DefaultMaxMembers
	}
	if maxMembers < MinGroupMembers {
		return nil, ErrMaxMembersTooSmall
	}

	now := s.now()
	group := domain.Group{
		ID:         uuid.NewString(),
		Name:       name,
		MaxMembers: maxMembers,
		IsPublic:   input.IsPublic,
		CreatedBy:  creatorID,
		CreatedAt:  now,
	}
	if input.Description != nil {
		trimmed := strings.TrimSpace(*input.Description)
		if trimmed != "" {
			group.Description = &trimmed
		}
	}

	ownerMembership := domain.Membership{
		ID:       uuid.NewString(),
		GroupID:  group.ID,
		UserID:   creatorID,
		Role:     domain.RoleOwner,
		JoinedAt: now,
	}

	err := s.tx(ctx, func(tx port.GroupTx) error {
		if err := tx.Groups.Create(ctx, group); err != nil {
			return fmt.Errorf("create group: %w", err)
		}
		if err := tx.Members.Create(ctx, ownerMembership); err != nil {
			return fmt.Errorf("create owner membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishMemberAdded(ctx, ownerMembership, creatorID)

	return &group, nil
}

// GetGroup retrieves a group by ID.
func (s *GroupService) GetGroup(ctx context.Context, groupID string) (*domain.Group, error) {
	groupID = strings.TrimSpace(groupID)
	if groupID == "" {
		return nil, fmt.Errorf("group id is required")
	}

	group, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}

	return group, nil
}

// ListGroups returns the groups the principal belongs to.
func (s *GroupService) ListGroups(ctx context.Context, userID string) ([]domain.Group, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}

	groups, err := s.groups.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list groups by user: %w", err)
	}

	return groups, nil
}

// ListMembers returns the group's membership set, provided the requester is
// itself a member.
func (s *GroupService) ListMembers(ctx context.Context, groupID, requesterID string) ([]domain.Membership, error) {
	groupID = strings.TrimSpace(groupID)
	if groupID == "" {
		return nil, fmt.Errorf("group id is required")
	}

	requester, err := s.members.Get(ctx, groupID, strings.TrimSpace(requesterID))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPermissionDenied
		}
		return nil, fmt.Errorf("get requester membership: %w", err)
	}

	if !domain.HasPermission(requester.Role, domain.ResourceGroupMembers, domain.ActionRead) {
		return nil, ErrPermissionDenied
	}

	members, err := s.members.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	return members, nil
}

// InviteMember adds the target to the group, or records a pending invitation
// when the identity has no account yet. The capacity and duplicate checks
// run inside the same transaction as the insert.
func (s *GroupService) InviteMember(ctx context.Context, input InviteMemberInput) (*InviteMemberResult, error) {
	groupID := strings.TrimSpace(input.GroupID)
	inviterID := strings.TrimSpace(input.InviterID)
	if groupID == "" || inviterID == "" {
		return nil, fmt.Errorf("group id and inviter id are required")
	}

	targetUserID := strings.TrimSpace(input.UserID)
	targetEmail := strings.ToLower(strings.TrimSpace(input.Email))
	if targetUserID == "" && targetEmail == "" {
		return nil, fmt.Errorf("target user id or email is required")
	}

	if !input.Role.IsGroupRole() {
		return nil, ErrInvalidMemberRole
	}

	if targetUserID == "" {
		resolved, err := s.directory.LookupByEmail(ctx, targetEmail)
		switch {
		case err == nil:
			targetUserID = resolved
		case errors.Is(err, repository.ErrNotFound):
			// No account yet: hold a pending invitation instead of
			// fabricating a membership against a placeholder principal.
		default:
			return nil, fmt.Errorf("lookup principal by email: %w", err)
		}
	}

	var result InviteMemberResult

	err := s.tx(ctx, func(tx port.GroupTx) error {
		group, err := tx.Groups.GetByIDForUpdate(ctx, groupID)
		if err != nil {
			return fmt.Errorf("lock group: %w", err)
		}

		inviter, err := tx.Members.Get(ctx, groupID, inviterID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrPermissionDenied
			}
			return fmt.Errorf("get inviter membership: %w", err)
		}
		if !domain.HasPermission(inviter.Role, domain.ResourceGroupMembers, domain.ActionManage) {
			return ErrPermissionDenied
		}

		members, err := tx.Members.ListByGroup(ctx, groupID)
		if err != nil {
			return fmt.Errorf("list members: %w", err)
		}
		if len(members) >= group.MaxMembers {
			return ErrGroupFull
		}

		if targetUserID == "" {
			invitation := domain.Invitation{
				ID:        uuid.NewString(),
				GroupID:   groupID,
				Email:     targetEmail,
				Role:      input.Role,
				InvitedBy: inviterID,
				CreatedAt: s.now(),
			}
			if err := tx.Invitations.Upsert(ctx, invitation); err != nil {
				return fmt.Errorf("upsert invitation: %w", err)
			}
			result.Invitation = &invitation
			return nil
		}

		for _, m := range members {
			if m.UserID == targetUserID {
				return ErrAlreadyMember
			}
		}

		membership := domain.Membership{
			ID:       uuid.NewString(),
			GroupID:  groupID,
			UserID:   targetUserID,
			Role:     input.Role,
			JoinedAt: s.now(),
		}
		if err := tx.Members.Create(ctx, membership); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return ErrAlreadyMember
			}
			return fmt.Errorf("create membership: %w", err)
		}
		result.Membership = &membership
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Membership != nil {
		s.invalidatePrincipal(ctx, result.Membership.UserID)
		s.publishMemberAdded(ctx, *result.Membership, inviterID)
	}
	if result.Invitation != nil {
		s.publishInvitationCreated(ctx, *result.Invitation)
	}

	return &result, nil
}

// AcceptInvitations binds every pending invitation for the identity to the
// now-authenticated principal. Groups that filled up in the meantime keep
// their invitation pending.
func (s *GroupService) AcceptInvitations(ctx context.Context, email, userID string) ([]domain.Membership, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	userID = strings.TrimSpace(userID)
	if email == "" || userID == "" {
		return nil, fmt.Errorf("email and user id are required")
	}

	invitations, err := s.invites.ListByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}

	accepted := make([]domain.Membership, 0, len(invitations))

	for _, invitation := range invitations {
		invitation := invitation
		var membership *domain.Membership

		err := s.tx(ctx, func(tx port.GroupTx) error {
			group, err := tx.Groups.GetByIDForUpdate(ctx, invitation.GroupID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					// Group vanished; drop the orphaned invitation.
					return tx.Invitations.Delete(ctx, invitation.ID)
				}
				return fmt.Errorf("lock group: %w", err)
			}

			members, err := tx.Members.ListByGroup(ctx, invitation.GroupID)
			if err != nil {
				return fmt.Errorf("list members: %w", err)
			}
			if len(members) >= group.MaxMembers {
				return ErrGroupFull
			}
			for _, m := range members {
				if m.UserID == userID {
					return tx.Invitations.Delete(ctx, invitation.ID)
				}
			}

			m := domain.Membership{
				ID:       uuid.NewString(),
				GroupID:  invitation.GroupID,
				UserID:   userID,
				Role:     invitation.Role,
				JoinedAt: s.now(),
			}
			if err := tx.Members.Create(ctx, m); err != nil {
				return fmt.Errorf("create membership: %w", err)
			}
			if err := tx.Invitations.Delete(ctx, invitation.ID); err != nil {
				return fmt.Errorf("delete invitation: %w", err)
			}
			membership = &m
			return nil
		})
		if err != nil {
			if errors.Is(err, ErrGroupFull) {
				s.logger.Warn("invitation left pending, group at capacity",
					zap.String("group_id", invitation.GroupID),
					zap.String("email", email))
				continue
			}
			return accepted, err
		}

		if membership != nil {
			accepted = append(accepted, *membership)
			s.invalidatePrincipal(ctx, userID)
			s.publishMemberAdded(ctx, *membership, invitation.InvitedBy)
		}
	}

	return accepted, nil
}

// UpdateMemberRole changes a member's role, refusing any transition that
// would leave the group without an owner.
func (s *GroupService) UpdateMemberRole(ctx context.Context, input UpdateMemberRoleInput) error {
	groupID := strings.TrimSpace(input.GroupID)
	memberID := strings.TrimSpace(input.MemberID)
	updaterID := strings.TrimSpace(input.UpdaterID)
	if groupID == "" || memberID == "" || updaterID == "" {
		return fmt.Errorf("group id, member id, and updater id are required")
	}

	if !input.NewRole.IsGroupRole() {
		return ErrInvalidMemberRole
	}

	var oldRole domain.Role

	err := s.tx(ctx, func(tx port.GroupTx) error {
		if _, err := tx.Groups.GetByIDForUpdate(ctx, groupID); err != nil {
			return fmt.Errorf("lock group: %w", err)
		}

		updater, err := tx.Members.Get(ctx, groupID, updaterID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrPermissionDenied
			}
			return fmt.Errorf("get updater membership: %w", err)
		}
		if !domain.HasPermission(updater.Role, domain.ResourceGroupMembers, domain.ActionManage) {
			return ErrPermissionDenied
		}

		target, err := tx.Members.Get(ctx, groupID, memberID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrNotMember
			}
			return fmt.Errorf("get target membership: %w", err)
		}
		oldRole = target.Role

		if target.Role == domain.RoleOwner && input.NewRole != domain.RoleOwner {
			members, err := tx.Members.ListByGroup(ctx, groupID)
			if err != nil {
				return fmt.Errorf("list members: %w", err)
			}
			if domain.CountOwners(members) <= 1 {
				return ErrLastOwner
			}
		}

		if err := tx.Members.UpdateRole(ctx, groupID, memberID, input.NewRole); err != nil {
			return fmt.Errorf("update member role: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidatePrincipal(ctx, memberID)
	s.publishRoleChanged(ctx, groupID, memberID, oldRole, input.NewRole, updaterID)

	return nil
}

// RemoveMember removes a member, refusing to remove the last owner.
func (s *GroupService) RemoveMember(ctx context.Context, groupID, memberID, removerID string) error {
	return s.removeMembership(ctx, groupID, memberID, removerID, ErrLastOwner, "removed")
}

// LeaveGroup is the self-service removal. The last owner must transfer
// ownership before leaving.
func (s *GroupService) LeaveGroup(ctx context.Context, groupID, principalID string) error {
	return s.removeMembership(ctx, groupID, principalID, principalID, ErrOwnershipTransferRequired, "left")
}

func (s *GroupService) removeMembership(ctx context.Context, groupID, memberID, removerID string, lastOwnerErr error, reason string) error {
	groupID = strings.TrimSpace(groupID)
	memberID = strings.TrimSpace(memberID)
	removerID = strings.TrimSpace(removerID)
	if groupID == "" || memberID == "" || removerID == "" {
		return fmt.Errorf("group id, member id, and remover id are required")
	}

	err := s.tx(ctx, func(tx port.GroupTx) error {
		if _, err := tx.Groups.GetByIDForUpdate(ctx, groupID); err != nil {
			return fmt.Errorf("lock group: %w", err)
		}

		if removerID != memberID {
			remover, err := tx.Members.Get(ctx, groupID, removerID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return ErrPermissionDenied
				}
				return fmt.Errorf("get remover membership: %w", err)
			}
			if !domain.HasPermission(remover.Role, domain.ResourceGroupMembers, domain.ActionManage) {
				return ErrPermissionDenied
			}
		}

		target, err := tx.Members.Get(ctx, groupID, memberID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrNotMember
			}
			return fmt.Errorf("get target membership: %w", err)
		}

		if target.Role == domain.RoleOwner {
			members, err := tx.Members.ListByGroup(ctx, groupID)
			if err != nil {
				return fmt.Errorf("list members: %w", err)
			}
			if domain.CountOwners(members) <= 1 {
				return lastOwnerErr
			}
		}

		if err := tx.Members.Delete(ctx, groupID, memberID); err != nil {
			return fmt.Errorf("delete membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidatePrincipal(ctx, memberID)
	s.publishMemberRemoved(ctx, groupID, memberID, removerID, reason)

	return nil
}

// DeleteGroup removes the group, cascades to memberships and pending
// invitations, and detaches (never deletes) projects that referenced it.
// Only the original creator or a SUPER_ADMIN may delete.
func (s *GroupService) DeleteGroup(ctx context.Context, groupID, requesterID string, requesterRole domain.Role) error {
	groupID = strings.TrimSpace(groupID)
	requesterID = strings.TrimSpace(requesterID)
	if groupID == "" || requesterID == "" {
		return fmt.Errorf("group id and requester id are required")
	}

	var (
		removedMembers   []domain.Membership
		projectsDetached int
	)

	err := s.tx(ctx, func(tx port.GroupTx) error {
		group, err := tx.Groups.GetByIDForUpdate(ctx, groupID)
		if err != nil {
			return fmt.Errorf("lock group: %w", err)
		}

		if group.CreatedBy != requesterID && requesterRole != domain.RoleSuperAdmin {
			return ErrPermissionDenied
		}

		removedMembers, err = tx.Members.ListByGroup(ctx, groupID)
		if err != nil {
			return fmt.Errorf("list members: %w", err)
		}

		if _, err := tx.Members.DeleteByGroup(ctx, groupID); err != nil {
			return fmt.Errorf("delete memberships: %w", err)
		}
		if err := tx.Invitations.DeleteByGroup(ctx, groupID); err != nil {
			return fmt.Errorf("delete invitations: %w", err)
		}

		projectsDetached, err = tx.Projects.DetachTeam(ctx, groupID)
		if err != nil {
			return fmt.Errorf("detach projects: %w", err)
		}

		if err := tx.Groups.Delete(ctx, groupID); err != nil {
			return fmt.Errorf("delete group: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, m := range removedMembers {
		s.invalidatePrincipal(ctx, m.UserID)
	}
	s.publishGroupDeleted(ctx, groupID, requesterID, len(removedMembers), projectsDetached)

	return nil
}

func (s *GroupService) invalidatePrincipal(ctx context.Context, principalID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidatePrincipal(ctx, principalID); err != nil {
		s.logger.Warn("invalidate decision cache",
			zap.String("principal_id", principalID),
			zap.Error(err))
	}
}

func (s *GroupService) publishMemberAdded(ctx context.Context, m domain.Membership, addedBy string) {
	if s.events == nil {
		return
	}
	event := domain.MemberAddedEvent{
		EventID: uuid.NewString(),
		GroupID: m.GroupID,
		UserID:  m.UserID,
		Role:    m.Role,
		AddedBy: addedBy,
		AddedAt: m.JoinedAt,
	}
	if err := s.events.PublishMemberAdded(ctx, event); err != nil {
		s.logger.Warn("publish member added event", zap.Error(err))
	}
}

func (s *GroupService) publishMemberRemoved(ctx context.Context, groupID, userID, removedBy, reason string) {
	if s.events == nil {
		return
	}
	event := domain.MemberRemovedEvent{
		EventID:   uuid.NewString(),
		GroupID:   groupID,
		UserID:    userID,
		RemovedBy: removedBy,
		RemovedAt: s.now(),
		Reason:    reason,
	}
	if err := s.events.PublishMemberRemoved(ctx, event); err != nil {
		s.logger.Warn("publish member removed event", zap.Error(err))
	}
}

func (s *GroupService) publishRoleChanged(ctx context.Context, groupID, userID string, oldRole, newRole domain.Role, changedBy string) {
	if s.events == nil {
		return
	}
	event := domain.MemberRoleChangedEvent{
		EventID:   uuid.NewString(),
		GroupID:   groupID,
		UserID:    userID,
		OldRole:   oldRole,
		NewRole:   newRole,
		ChangedBy: changedBy,
		ChangedAt: s.now(),
	}
	if err := s.events.PublishMemberRoleChanged(ctx, event); err != nil {
		s.logger.Warn("publish role changed event", zap.Error(err))
	}
}

func (s *GroupService) publishGroupDeleted(ctx context.Context, groupID, deletedBy string, membersRemoved, projectsDetached int) {
	if s.events == nil {
		return
	}
	event := domain.GroupDeletedEvent{
		EventID:          uuid.NewString(),
		GroupID:          groupID,
		DeletedBy:        deletedBy,
		DeletedAt:        s.now(),
		MembersRemoved:   membersRemoved,
		ProjectsDetached: projectsDetached,
	}
	if err := s.events.PublishGroupDeleted(ctx, event); err != nil {
		s.logger.Warn("publish group deleted event", zap.Error(err))
	}
}

func (s *GroupService) publishInvitationCreated(ctx context.Context, invitation domain.Invitation) {
	if s.events == nil {
		return
	}
	event := domain.InvitationCreatedEvent{
		EventID:   uuid.NewString(),
		GroupID:   invitation.GroupID,
		Email:     invitation.Email,
		Role:      invitation.Role,
		InvitedBy: invitation.InvitedBy,
		InvitedAt: invitation.CreatedAt,
	}
	if err := s.events.PublishInvitationCreated(ctx, event); err != nil {
		s.logger.Warn("publish invitation created event", zap.Error(err))
	}
}

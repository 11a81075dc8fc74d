package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/arklim/social-platform-collab/internal/core/domain"
	"github.com/arklim/social-platform-collab/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for development environments.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, userID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub event published",
		zap.String("event_type", eventType),
		zap.String("user_id", userID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishMemberAdded logs collab.group.member.added events.
func (p *StubPublisher) PublishMemberAdded(_ context.Context, event domain.MemberAddedEvent) error {
	payload := map[string]any{
		"group_id": event.GroupID,
		"user_id":  event.UserID,
		"role":     event.Role,
		"added_by": event.AddedBy,
		"added_at": event.AddedAt,
		"metadata": event.Metadata,
	}
	p.logEvent("collab.group.member.added", event.UserID, event.AddedAt, payload)
	return nil
}

// PublishMemberRemoved logs collab.group.member.removed events.
func (p *StubPublisher) PublishMemberRemoved(_ context.Context, event domain.MemberRemovedEvent) error {
	payload := map[string]any{
		"group_id":   event.GroupID,
		"user_id":    event.UserID,
		"removed_by": event.RemovedBy,
		"removed_at": event.RemovedAt,
		"reason":     event.Reason,
		"metadata":   event.Metadata,
	}
	p.logEvent("collab.group.member.removed", event.UserID, event.RemovedAt, payload)
	return nil
}

// PublishMemberRoleChanged logs collab.group.member.role_changed events.
func (p *StubPublisher) PublishMemberRoleChanged(_ context.Context, event domain.MemberRoleChangedEvent) error {
	payload := map[string]any{
		"group_id":   event.GroupID,
		"user_id":    event.UserID,
		"old_role":   event.OldRole,
		"new_role":   event.NewRole,
		"changed_by": event.ChangedBy,
		"changed_at": event.ChangedAt,
		"metadata":   event.Metadata,
	}
	p.logEvent("collab.group.member.role_changed", event.UserID, event.ChangedAt, payload)
	return nil
}

// PublishGroupDeleted logs collab.group.deleted events.
func (p *StubPublisher) PublishGroupDeleted(_ context.Context, event domain.GroupDeletedEvent) error {
	payload := map[string]any{
		"group_id":          event.GroupID,
		"deleted_by":        event.DeletedBy,
		"deleted_at":        event.DeletedAt,
		"members_removed":   event.MembersRemoved,
		"projects_detached": event.ProjectsDetached,
		"metadata":          event.Metadata,
	}
	p.logEvent("collab.group.deleted", event.DeletedBy, event.DeletedAt, payload)
	return nil
}

// PublishInvitationCreated logs collab.group.invitation.created events.
func (p *StubPublisher) PublishInvitationCreated(_ context.Context, event domain.InvitationCreatedEvent) error {
	payload := map[string]any{
		"group_id":   event.GroupID,
		"email":      event.Email,
		"role":       event.Role,
		"invited_by": event.InvitedBy,
		"invited_at": event.InvitedAt,
		"metadata":   event.Metadata,
	}
	p.logEvent("collab.group.invitation.created", event.InvitedBy, event.InvitedAt, payload)
	return nil
}

// PublishShareCreated logs collab.share.created events.
func (p *StubPublisher) PublishShareCreated(_ context.Context, event domain.ShareCreatedEvent) error {
	payload := map[string]any{
		"share_id":     event.ShareID,
		"project_id":   event.ProjectID,
		"granted_by":   event.GrantedBy,
		"granted_to":   event.GrantedTo,
		"access_level": event.AccessLevel,
		"expires_at":   event.ExpiresAt,
		"updated":      event.Updated,
		"shared_at":    event.SharedAt,
		"metadata":     event.Metadata,
	}
	p.logEvent("collab.share.created", event.GrantedTo, event.SharedAt, payload)
	return nil
}

// PublishShareSettingsUpdated logs collab.share.settings_updated events.
func (p *StubPublisher) PublishShareSettingsUpdated(_ context.Context, event domain.ShareSettingsUpdatedEvent) error {
	payload := map[string]any{
		"share_id":   event.ShareID,
		"project_id": event.ProjectID,
		"granted_to": event.GrantedTo,
		"updated_by": event.UpdatedBy,
		"settings":   event.Settings,
		"updated_at": event.UpdatedAt,
		"metadata":   event.Metadata,
	}
	p.logEvent("collab.share.settings_updated", event.GrantedTo, event.UpdatedAt, payload)
	return nil
}

// PublishShareRevoked logs collab.share.revoked events.
func (p *StubPublisher) PublishShareRevoked(_ context.Context, event domain.ShareRevokedEvent) error {
	payload := map[string]any{
		"share_id":   event.ShareID,
		"project_id": event.ProjectID,
		"granted_to": event.GrantedTo,
		"revoked_by": event.RevokedBy,
		"revoked_at": event.RevokedAt,
		"metadata":   event.Metadata,
	}
	p.logEvent("collab.share.revoked", event.GrantedTo, event.RevokedAt, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)

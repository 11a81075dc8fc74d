package port

import (
	"context"

	"github.com/arklim/social-platform-collab/internal/core/domain"
)

// EventPublisher publishes collaboration domain events to the message bus.
// Notification and audit consumers live outside this service.
type EventPublisher interface {
	PublishMemberAdded(ctx context.Context, event domain.MemberAddedEvent) error
	PublishMemberRemoved(ctx context.Context, event domain.MemberRemovedEvent) error
	PublishMemberRoleChanged(ctx context.Context, event domain.MemberRoleChangedEvent) error
	PublishGroupDeleted(ctx context.Context, event domain.GroupDeletedEvent) error
	PublishInvitationCreated(ctx context.Context, event domain.InvitationCreatedEvent) error
	PublishShareCreated(ctx context.Context, event domain.ShareCreatedEvent) error
	PublishShareSettingsUpdated(ctx context.Context, event domain.ShareSettingsUpdatedEvent) error
	PublishShareRevoked(ctx context.Context, event domain.ShareRevokedEvent) error
}

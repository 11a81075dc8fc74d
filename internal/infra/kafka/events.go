package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/arklim/social-platform-collab/internal/core/domain"
	"github.com/arklim/social-platform-collab/internal/core/port"
	"github.com/arklim/social-platform-collab/internal/infra/config"
)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	UserID    string           `json:"user_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, userID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	if span := trace.SpanFromContext(ctx); span != nil {
		if sc := span.SpanContext(); sc.IsValid() {
			metadata["trace_id"] = sc.TraceID().String()
		}
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		UserID:    userID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishMemberAdded publishes collab.group.member.added events.
func (p *EventPublisher) PublishMemberAdded(ctx context.Context, event domain.MemberAddedEvent) error {
	payload := struct {
		GroupID  string         `json:"group_id"`
		UserID   string         `json:"user_id"`
		Role     string         `json:"role"`
		AddedBy  string         `json:"added_by"`
		AddedAt  time.Time      `json:"added_at"`
		Metadata map[string]any `json:"metadata,omitempty"`
	}{
		GroupID:  event.GroupID,
		UserID:   event.UserID,
		Role:     string(event.Role),
		AddedBy:  event.AddedBy,
		AddedAt:  event.AddedAt.UTC(),
		Metadata: event.Metadata,
	}

	return p.publish(ctx, event.EventID, "collab.group.member.added", event.UserID, event.AddedAt, payload)
}

// PublishMemberRemoved publishes collab.group.member.removed events.
func (p *EventPublisher) PublishMemberRemoved(ctx context.Context, event domain.MemberRemovedEvent) error {
	payload := struct {
		GroupID   string         `json:"group_id"`
		UserID    string         `json:"user_id"`
		RemovedBy string         `json:"removed_by"`
		RemovedAt time.Time      `json:"removed_at"`
		Reason    string         `json:"reason,omitempty"`
		Metadata  map[string]any `json:"metadata,omitempty"`
	}{
		GroupID:   event.GroupID,
		UserID:    event.UserID,
		RemovedBy: event.RemovedBy,
		RemovedAt: event.RemovedAt.UTC(),
		Reason:    event.Reason,
		Metadata:  event.Metadata,
	}

	return p.publish(ctx, event.EventID, "collab.group.member.removed", event.UserID, event.RemovedAt, payload)
}

// PublishMemberRoleChanged publishes collab.group.member.role_changed events.
func (p *EventPublisher) PublishMemberRoleChanged(ctx context.Context, event domain.MemberRoleChangedEvent) error {
	payload := struct {
		GroupID   string         `json:"group_id"`
		UserID    string         `json:"user_id"`
		OldRole   string         `json:"old_role"`
		NewRole   string         `json:"new_role"`
		ChangedBy string         `json:"changed_by"`
		ChangedAt time.Time      `json:"changed_at"`
		Metadata  map[string]any `json:"metadata,omitempty"`
	}{
		GroupID:   event.GroupID,
		UserID:    event.UserID,
		OldRole:   string(event.OldRole),
		NewRole:   string(event.NewRole),
		ChangedBy: event.ChangedBy,
		ChangedAt: event.ChangedAt.UTC(),
		Metadata:  event.Metadata,
	}

	return p.publish(ctx, event.EventID, "collab.group.member.role_changed", event.UserID, event.ChangedAt, payload)
}

// PublishGroupDeleted publishes collab.group.deleted events.
func (p *EventPublisher) PublishGroupDeleted(ctx context.Context, event domain.GroupDeletedEvent) error {
	payload := struct {
		GroupID          string         `json:"group_id"`
		DeletedBy        string         `json:"deleted_by"`
		DeletedAt        time.Time      `json:"deleted_at"`
		MembersRemoved   int            `json:"members_removed"`
		ProjectsDetached int            `json:"projects_detached"`
		Metadata         map[string]any `json:"metadata,omitempty"`
	}{
		GroupID:          event.GroupID,
		DeletedBy:        event.DeletedBy,
		DeletedAt:        event.DeletedAt.UTC(),
		MembersRemoved:   event.MembersRemoved,
		ProjectsDetached: event.ProjectsDetached,
		Metadata:         event.Metadata,
	}

	return p.publish(ctx, event.EventID, "collab.group.deleted", event.DeletedBy, event.DeletedAt, payload)
}

// PublishInvitationCreated publishes collab.group.invitation.created events.
// The invited identity is an email, not a principal, so user_id carries the
// inviter.
func (p *EventPublisher) PublishInvitationCreated(ctx context.Context, event domain.InvitationCreatedEvent) error {
	payload := struct {
		GroupID   string         `json:"group_id"`
		Email     string         `json:"email"`
		Role      string         `json:"role"`
		InvitedBy string         `json:"invited_by"`
		InvitedAt time.Time      `json:"invited_at"`
		Metadata  map[string]any `json:"metadata,omitempty"`
	}{
		GroupID:   event.GroupID,
		Email:     event.Email,
		Role:      string(event.Role),
		InvitedBy: event.InvitedBy,
		InvitedAt: event.InvitedAt.UTC(),
		Metadata:  event.Metadata,
	}

	return p.publish(ctx, event.EventID, "collab.group.invitation.created", event.InvitedBy, event.InvitedAt, payload)
}

// PublishShareCreated publishes collab.share.created events.
func (p *EventPublisher) PublishShareCreated(ctx context.Context, event domain.ShareCreatedEvent) error {
	payload := struct {
		ShareID     string         `json:"share_id"`
		ProjectID   string         `json:"project_id"`
		GrantedBy   string         `json:"granted_by"`
		GrantedTo   string         `json:"granted_to"`
		AccessLevel string         `json:"access_level"`
		ExpiresAt   *time.Time     `json:"expires_at,omitempty"`
		Updated     bool           `json:"updated"`
		SharedAt    time.Time      `json:"shared_at"`
		Metadata    map[string]any `json:"metadata,omitempty"`
	}{
		ShareID:     event.ShareID,
		ProjectID:   event.ProjectID,
		GrantedBy:   event.GrantedBy,
		GrantedTo:   event.GrantedTo,
		AccessLevel: event.AccessLevel.String(),
		ExpiresAt:   event.ExpiresAt,
		Updated:     event.Updated,
		SharedAt:    event.SharedAt.UTC(),
		Metadata:    event.Metadata,
	}

	return p.publish(ctx, event.EventID, "collab.share.created", event.GrantedTo, event.SharedAt, payload)
}

// PublishShareSettingsUpdated publishes collab.share.settings_updated events.
func (p *EventPublisher) PublishShareSettingsUpdated(ctx context.Context, event domain.ShareSettingsUpdatedEvent) error {
	payload := struct {
		ShareID   string               `json:"share_id"`
		ProjectID string               `json:"project_id"`
		GrantedTo string               `json:"granted_to"`
		UpdatedBy string               `json:"updated_by"`
		Settings  domain.ShareSettings `json:"settings"`
		UpdatedAt time.Time            `json:"updated_at"`
		Metadata  map[string]any       `json:"metadata,omitempty"`
	}{
		ShareID:   event.ShareID,
		ProjectID: event.ProjectID,
		GrantedTo: event.GrantedTo,
		UpdatedBy: event.UpdatedBy,
		Settings:  event.Settings,
		UpdatedAt: event.UpdatedAt.UTC(),
		Metadata:  event.Metadata,
	}

	return p.publish(ctx, event.EventID, "collab.share.settings_updated", event.GrantedTo, event.UpdatedAt, payload)
}

// PublishShareRevoked publishes collab.share.revoked events.
func (p *EventPublisher) PublishShareRevoked(ctx context.Context, event domain.ShareRevokedEvent) error {
	payload := struct {
		ShareID   string         `json:"share_id"`
		ProjectID string         `json:"project_id"`
		GrantedTo string         `json:"granted_to"`
		RevokedBy string         `json:"revoked_by"`
		RevokedAt time.Time      `json:"revoked_at"`
		Metadata  map[string]any `json:"metadata,omitempty"`
	}{
		ShareID:   event.ShareID,
		ProjectID: event.ProjectID,
		GrantedTo: event.GrantedTo,
		RevokedBy: event.RevokedBy,
		RevokedAt: event.RevokedAt.UTC(),
		Metadata:  event.Metadata,
	}

	return p.publish(ctx, event.EventID, "collab.share.revoked", event.GrantedTo, event.RevokedAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)

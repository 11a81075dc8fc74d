package domain

import "time"

// MemberAddedEvent records a membership creation.
type MemberAddedEvent struct {
	EventID  string
	GroupID  string
	UserID   string
	Role     Role
	AddedBy  string
	AddedAt  time.Time
	Metadata map[string]any
}

// MemberRemovedEvent records a membership removal, including self-service
// leaves (RemovedBy equals UserID).
type MemberRemovedEvent struct {
	EventID   string
	GroupID   string
	UserID    string
	RemovedBy string
	RemovedAt time.Time
	Reason    string
	Metadata  map[string]any
}

// MemberRoleChangedEvent records a role transition on a membership.
type MemberRoleChangedEvent struct {
	EventID   string
	GroupID   string
	UserID    string
	OldRole   Role
	NewRole   Role
	ChangedBy string
	ChangedAt time.Time
	Metadata  map[string]any
}

// GroupDeletedEvent records a group deletion and its cascade.
type GroupDeletedEvent struct {
	EventID          string
	GroupID          string
	DeletedBy        string
	DeletedAt        time.Time
	MembersRemoved   int
	ProjectsDetached int
	Metadata         map[string]any
}

// InvitationCreatedEvent records a pending invitation for an identity that
// has no principal yet.
type InvitationCreatedEvent struct {
	EventID   string
	GroupID   string
	Email     string
	Role      Role
	InvitedBy string
	InvitedAt time.Time
	Metadata  map[string]any
}

// ShareCreatedEvent records a share creation or idempotent update.
type ShareCreatedEvent struct {
	EventID     string
	ShareID     string
	ProjectID   string
	GrantedBy   string
	GrantedTo   string
	AccessLevel AccessLevel
	ExpiresAt   *time.Time
	Updated     bool
	SharedAt    time.Time
	Metadata    map[string]any
}

// ShareSettingsUpdatedEvent records a settings change on a live share.
type ShareSettingsUpdatedEvent struct {
	EventID   string
	ShareID   string
	ProjectID string
	GrantedTo string
	UpdatedBy string
	Settings  ShareSettings
	UpdatedAt time.Time
	Metadata  map[string]any
}

// ShareRevokedEvent records a share revocation.
type ShareRevokedEvent struct {
	EventID   string
	ShareID   string
	ProjectID string
	GrantedTo string
	RevokedBy string
	RevokedAt time.Time
	Metadata  map[string]any
}

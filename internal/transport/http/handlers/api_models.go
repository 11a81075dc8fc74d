package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arklim/social-platform-collab/internal/core/domain"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse reports service status and start time.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// GroupPayload is the API view of a group.
type GroupPayload struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	MaxMembers  int       `json:"max_members"`
	IsPublic    bool      `json:"is_public"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// MembershipPayload is the API view of a group membership.
type MembershipPayload struct {
	ID       string    `json:"id"`
	GroupID  string    `json:"group_id"`
	UserID   string    `json:"user_id"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

// InvitationPayload is the API view of a pending invitation.
type InvitationPayload struct {
	ID        string    `json:"id"`
	GroupID   string    `json:"group_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	InvitedBy string    `json:"invited_by"`
	CreatedAt time.Time `json:"created_at"`
}

// GroupCreateRequest defines the payload to create a group.
type GroupCreateRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	MaxMembers  int     `json:"max_members"`
	IsPublic    bool    `json:"is_public"`
}

// InviteMemberRequest defines the payload to invite a member. Exactly one of
// user_id and email identifies the target.
type InviteMemberRequest struct {
	UserID string `json:"user_id"`
	Email  string `json:"email" binding:"omitempty,email"`
	Role   string `json:"role" binding:"required"`
}

// InviteMemberResponse reports either the created membership or the pending
// invitation recorded for an identity without an account.
type InviteMemberResponse struct {
	Membership *MembershipPayload `json:"membership,omitempty"`
	Invitation *InvitationPayload `json:"invitation,omitempty"`
}

// UpdateMemberRoleRequest defines the payload to change a member's role.
type UpdateMemberRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// AcceptInvitationsRequest binds pending invitations for the email to the
// authenticated principal.
type AcceptInvitationsRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// SharePayload is the API view of a share.
type SharePayload struct {
	ID          string               `json:"id"`
	ProjectID   string               `json:"project_id"`
	GrantedBy   string               `json:"granted_by"`
	GrantedTo   string               `json:"granted_to"`
	AccessLevel string               `json:"access_level"`
	Settings    domain.ShareSettings `json:"settings"`
	ExpiresAt   *time.Time           `json:"expires_at,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// SharedProjectPayload is a share joined with project and owner display data.
type SharedProjectPayload struct {
	Share       SharePayload `json:"share"`
	ProjectName string       `json:"project_name"`
	OwnerID     string       `json:"owner_id"`
	OwnerName   string       `json:"owner_name"`
}

// ShareCreateRequest defines the payload to share a project.
type ShareCreateRequest struct {
	ProjectID   string                `json:"project_id" binding:"required"`
	UserID      string                `json:"user_id" binding:"required"`
	AccessLevel string                `json:"access_level" binding:"required"`
	Settings    *domain.ShareSettings `json:"settings"`
	ExpiresAt   *time.Time            `json:"expires_at"`
}

// ShareSettingsRequest defines the payload to replace share settings.
type ShareSettingsRequest struct {
	Settings domain.ShareSettings `json:"settings"`
}

// AccessDecisionPayload is the API view of a resolved access decision.
type AccessDecisionPayload struct {
	Allowed     bool   `json:"allowed"`
	AccessLevel string `json:"access_level"`
	IsOwner     bool   `json:"is_owner"`
	Reason      string `json:"reason"`
}

// CanPerformResponse answers a single action question.
type CanPerformResponse struct {
	Allowed bool   `json:"allowed"`
	Action  string `json:"action"`
}

func groupPayload(group domain.Group) GroupPayload {
	return GroupPayload{
		ID:          group.ID,
		Name:        group.Name,
		Description: group.Description,
		MaxMembers:  group.MaxMembers,
		IsPublic:    group.IsPublic,
		CreatedBy:   group.CreatedBy,
		CreatedAt:   group.CreatedAt,
	}
}

func membershipPayload(m domain.Membership) MembershipPayload {
	return MembershipPayload{
		ID:       m.ID,
		GroupID:  m.GroupID,
		UserID:   m.UserID,
		Role:     string(m.Role),
		JoinedAt: m.JoinedAt,
	}
}

func invitationPayload(inv domain.Invitation) InvitationPayload {
	return InvitationPayload{
		ID:        inv.ID,
		GroupID:   inv.GroupID,
		Email:     inv.Email,
		Role:      string(inv.Role),
		InvitedBy: inv.InvitedBy,
		CreatedAt: inv.CreatedAt,
	}
}

func sharePayload(share domain.Share) SharePayload {
	return SharePayload{
		ID:          share.ID,
		ProjectID:   share.ProjectID,
		GrantedBy:   share.GrantedBy,
		GrantedTo:   share.GrantedTo,
		AccessLevel: share.AccessLevel.String(),
		Settings:    share.Settings,
		ExpiresAt:   share.ExpiresAt,
		CreatedAt:   share.CreatedAt,
		UpdatedAt:   share.UpdatedAt,
	}
}

func sharedProjectPayload(sp domain.SharedProject) SharedProjectPayload {
	return SharedProjectPayload{
		Share:       sharePayload(sp.Share),
		ProjectName: sp.ProjectName,
		OwnerID:     sp.OwnerID,
		OwnerName:   sp.OwnerName,
	}
}

package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/arklim/social-platform-collab/internal/core/domain"
	"github.com/arklim/social-platform-collab/internal/repository"
	"github.com/arklim/social-platform-collab/internal/transport/http/middleware"
	"github.com/arklim/social-platform-collab/internal/usecase"
)

// GroupHandler exposes group and membership management endpoints.
type GroupHandler struct {
	groups *usecase.GroupService
}

// NewGroupHandler builds a group handler.
func NewGroupHandler(groups *usecase.GroupService) *GroupHandler {
	return &GroupHandler{groups: groups}
}

// RegisterRoutes mounts group endpoints onto the router group.
func (h *GroupHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("", h.CreateGroup)
	r.GET("", h.ListGroups)
	r.GET("/:groupID", h.GetGroup)
	r.DELETE("/:groupID", h.DeleteGroup)
	r.GET("/:groupID/members", h.ListMembers)
	r.POST("/:groupID/members", h.InviteMember)
	r.PATCH("/:groupID/members/:userID", h.UpdateMemberRole)
	r.DELETE("/:groupID/members/:userID", h.RemoveMember)
	r.POST("/:groupID/leave", h.LeaveGroup)
}

// RegisterInvitationRoutes mounts invitation endpoints onto the router group.
func (h *GroupHandler) RegisterInvitationRoutes(r *gin.RouterGroup) {
	r.POST("/accept", h.AcceptInvitations)
}

// CreateGroup creates a group with the caller as its first owner.
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	actorID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok || actorID == "" {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid authentication"))
		return
	}

	var req GroupCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid group payload"))
		return
	}

	group, err := h.groups.CreateGroup(c.Request.Context(), usecase.CreateGroupInput{
		Name:        req.Name,
		Description: req.Description,
		MaxMembers:  req.MaxMembers,
		IsPublic:    req.IsPublic,
		CreatorID:   actorID,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrGroupNameRequired, Status: http.StatusBadRequest, Message: "group name is required"},
			{Err: usecase.ErrMaxMembersTooSmall, Status: http.StatusBadRequest, Message: "max members must be at least 2"},
		}, http.StatusInternalServerError, "failed to create group")
		return
	}

	c.JSON(http.StatusCreated, groupPayload(*group))
}

// ListGroups returns the caller's groups.
func (h *GroupHandler) ListGroups(c *gin.Context) {
	actorID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok || actorID == "" {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid authentication"))
		return
	}

	groups, err := h.groups.ListGroups(c.Request.Context(), actorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list groups"))
		return
	}

	payloads := make([]GroupPayload, 0, len(groups))
	for _, group := range groups {
		payloads = append(payloads, groupPayload(group))
	}

	c.JSON(http.StatusOK, gin.H{"groups": payloads})
}

// GetGroup returns a group by identifier.
func (h *GroupHandler) GetGroup(c *gin.Context) {
	group, err := h.groups.GetGroup(c.Request.Context(), c.Param("groupID"))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "group not found"},
		}, http.StatusInternalServerError, "failed to get group")
		return
	}

	c.JSON(http.StatusOK, groupPayload(*group))
}

// ListMembers returns the group's membership roster.
func (h *GroupHandler) ListMembers(c *gin.Context) {
	actorID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok || actorID == "" {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid authentication"))
		return
	}

	members, err := h.groups.ListMembers(c.Request.Context(), c.Param("groupID"), actorID)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrPermissionDenied, Status: http.StatusForbidden, Message: "insufficient permissions"},
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "group not found"},
		}, http.StatusInternalServerError, "failed to list members")
		return
	}

	payloads := make([]MembershipPayload, 0, len(members))
	for _, m := range members {
		payloads = append(payloads, membershipPayload(m))
	}

	c.JSON(http.StatusOK, gin.H{"members": payloads})
}

// InviteMember adds a member or records a pending invitation.
func (h *GroupHandler) InviteMember(c *gin.Context) {
	actorID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok || actorID == "" {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid authentication"))
		return
	}

	var req InviteMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid invite payload"))
		return
	}

	if strings.TrimSpace(req.UserID) == "" && strings.TrimSpace(req.Email) == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "user_id or email is required"))
		return
	}

	result, err := h.groups.InviteMember(c.Request.Context(), usecase.InviteMemberInput{
		GroupID:   c.Param("groupID"),
		InviterID: actorID,
		UserID:    req.UserID,
		Email:     req.Email,
		Role:      domain.Role(strings.ToUpper(strings.TrimSpace(req.Role))),
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidMemberRole, Status: http.StatusBadRequest, Message: "role is not assignable to a group member"},
			{Err: usecase.ErrPermissionDenied, Status: http.StatusForbidden, Message: "insufficient permissions"},
			{Err: usecase.ErrGroupFull, Status: http.StatusConflict, Message: "group is at member capacity"},
			{Err: usecase.ErrAlreadyMember, Status: http.StatusConflict, Message: "user is already a member"},
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "group not found"},
		}, http.StatusInternalServerError, "failed to invite member")
		return
	}

	response := InviteMemberResponse{}
	status := http.StatusCreated
	if result.Membership != nil {
		payload := membershipPayload(*result.Membership)
		response.Membership = &payload
	}
	if result.Invitation != nil {
		payload := invitationPayload(*result.Invitation)
		response.Invitation = &payload
		status = http.StatusAccepted
	}

	c.JSON(status, response)
}

// AcceptInvitations binds pending invitations for an email to the caller.
func (h *GroupHandler) AcceptInvitations(c *gin.Context) {
	actorID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok || actorID == "" {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid authentication"))
		return
	}

	var req AcceptInvitationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid accept payload"))
		return
	}

	memberships, err := h.groups.AcceptInvitations(c.Request.Context(), req.Email, actorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to accept invitations"))
		return
	}

	payloads := make([]MembershipPayload, 0, len(memberships))
	for _, m := range memberships {
		payloads = append(payloads, membershipPayload(m))
	}

	c.JSON(http.StatusOK, gin.H{"memberships": payloads})
}

// UpdateMemberRole changes a member's role within the group.
func (h *GroupHandler) UpdateMemberRole(c *gin.Context) {
	actorID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok || actorID == "" {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid authentication"))
		return
	}

	var req UpdateMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid role payload"))
		return
	}

	err := h.groups.UpdateMemberRole(c.Request.Context(), usecase.UpdateMemberRoleInput{
		GroupID:   c.Param("groupID"),
		MemberID:  c.Param("userID"),
		NewRole:   domain.Role(strings.ToUpper(strings.TrimSpace(req.Role))),
		UpdaterID: actorID,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidMemberRole, Status: http.StatusBadRequest, Message: "role is not assignable to a group member"},
			{Err: usecase.ErrPermissionDenied, Status: http.StatusForbidden, Message: "insufficient permissions"},
			{Err: usecase.ErrNotMember, Status: http.StatusNotFound, Message: "user is not a member"},
			{Err: usecase.ErrLastOwner, Status: http.StatusConflict, Message: "group must retain at least one owner"},
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "group not found"},
		}, http.StatusInternalServerError, "failed to update member role")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "member role updated"})
}

// RemoveMember removes a member from the group.
func (h *GroupHandler) RemoveMember(c *gin.Context) {
	actorID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok || actorID == "" {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid authentication"))
		return
	}

	err := h.groups.RemoveMember(c.Request.Context(), c.Param("groupID"), c.Param("userID"), actorID)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrPermissionDenied, Status: http.StatusForbidden, Message: "insufficient permissions"},
			{Err: usecase.ErrNotMember, Status: http.StatusNotFound, Message: "user is not a member"},
			{Err: usecase.ErrLastOwner, Status: http.StatusConflict, Message: "group must retain at least one owner"},
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "group not found"},
		}, http.StatusInternalServerError, "failed to remove member")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "member removed"})
}

// LeaveGroup removes the caller's own membership.
func (h *GroupHandler) LeaveGroup(c *gin.Context) {
	actorID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok || actorID == "" {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid authentication"))
		return
	}

	err := h.groups.LeaveGroup(c.Request.Context(), c.Param("groupID"), actorID)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrNotMember, Status: http.StatusNotFound, Message: "user is not a member"},
			{Err: usecase.ErrOwnershipTransferRequired, Status: http.StatusConflict, Message: "transfer group ownership before leaving"},
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "group not found"},
		}, http.StatusInternalServerError, "failed to leave group")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "left group"})
}

// DeleteGroup removes the group and cascades to memberships and invitations.
func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	actorID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok || actorID == "" {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid authentication"))
		return
	}

	err := h.groups.DeleteGroup(c.Request.Context(), c.Param("groupID"), actorID, middleware.GetSystemRole(c))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrPermissionDenied, Status: http.StatusForbidden, Message: "insufficient permissions"},
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "group not found"},
		}, http.StatusInternalServerError, "failed to delete group")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "group deleted"})
}

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

// ShareHandler exposes direct project sharing endpoints.
type ShareHandler struct {
	shares *usecase.ShareService
}

// NewShareHandler builds a share handler.
func NewShareHandler(shares *usecase.ShareService) *ShareHandler {
	return &ShareHandler{shares: shares}
}

// RegisterRoutes mounts share endpoints onto the router group.
func (h *ShareHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("", h.ShareProject)
	r.GET("/received", h.ListSharedWithMe)
	r.GET("/granted", h.ListMyShares)
	r.PUT("/:shareID/settings", h.UpdateSettings)
	r.DELETE("/:shareID", h.RevokeShare)
}

// ShareProject grants a user access to a project. Re-sharing the same pair
// updates the existing grant.
func (h *ShareHandler) ShareProject(c *gin.Context) {
	actorID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok || actorID == "" {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid authentication"))
		return
	}

	var req ShareCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid share payload"))
		return
	}

	level, err := domain.ParseAccessLevel(strings.ToUpper(strings.TrimSpace(req.AccessLevel)))
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "access level must be VIEW, EDIT, or ADMIN"))
		return
	}

	share, err := h.shares.ShareProject(c.Request.Context(), usecase.ShareProjectInput{
		ProjectID:   req.ProjectID,
		OwnerID:     actorID,
		TargetID:    req.UserID,
		AccessLevel: level,
		Settings:    req.Settings,
		ExpiresAt:   req.ExpiresAt,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidAccessLevel, Status: http.StatusBadRequest, Message: "access level must be VIEW, EDIT, or ADMIN"},
			{Err: usecase.ErrExpiryInPast, Status: http.StatusBadRequest, Message: "share expiry must be in the future"},
			{Err: usecase.ErrShareWithSelf, Status: http.StatusBadRequest, Message: "cannot share a project with its owner"},
			{Err: usecase.ErrNotProjectOwner, Status: http.StatusForbidden, Message: "only the project owner can share it"},
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "project not found"},
		}, http.StatusInternalServerError, "failed to share project")
		return
	}

	c.JSON(http.StatusCreated, sharePayload(*share))
}

// ListSharedWithMe returns live shares granted to the caller.
func (h *ShareHandler) ListSharedWithMe(c *gin.Context) {
	actorID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok || actorID == "" {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid authentication"))
		return
	}

	shared, err := h.shares.ListSharedWithMe(c.Request.Context(), actorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list shares"))
		return
	}

	payloads := make([]SharedProjectPayload, 0, len(shared))
	for _, sp := range shared {
		payloads = append(payloads, sharedProjectPayload(sp))
	}

	c.JSON(http.StatusOK, gin.H{"shares": payloads})
}

// ListMyShares returns live shares the caller has granted to others.
func (h *ShareHandler) ListMyShares(c *gin.Context) {
	actorID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok || actorID == "" {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid authentication"))
		return
	}

	shared, err := h.shares.ListMyShares(c.Request.Context(), actorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list shares"))
		return
	}

	payloads := make([]SharedProjectPayload, 0, len(shared))
	for _, sp := range shared {
		payloads = append(payloads, sharedProjectPayload(sp))
	}

	c.JSON(http.StatusOK, gin.H{"shares": payloads})
}

// UpdateSettings replaces the settings bundle on a share.
func (h *ShareHandler) UpdateSettings(c *gin.Context) {
	actorID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok || actorID == "" {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid authentication"))
		return
	}

	var req ShareSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid settings payload"))
		return
	}

	err := h.shares.UpdateShareSettings(c.Request.Context(), c.Param("shareID"), actorID, req.Settings)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "share not found"},
		}, http.StatusInternalServerError, "failed to update share settings")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "share settings updated"})
}

// RevokeShare deletes a share.
func (h *ShareHandler) RevokeShare(c *gin.Context) {
	actorID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok || actorID == "" {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid authentication"))
		return
	}

	err := h.shares.RevokeShare(c.Request.Context(), c.Param("shareID"), actorID)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "share not found"},
		}, http.StatusInternalServerError, "failed to revoke share")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "share revoked"})
}

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

// AccessHandler answers authorization questions for projects.
type AccessHandler struct {
	access *usecase.AccessService
}

// NewAccessHandler builds an access handler.
func NewAccessHandler(access *usecase.AccessService) *AccessHandler {
	return &AccessHandler{access: access}
}

// RegisterRoutes mounts access endpoints onto the router group.
func (h *AccessHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/:projectID", h.ResolveAccess)
	r.GET("/:projectID/can/:action", h.CanPerform)
}

// ResolveAccess returns the caller's effective access to a project.
func (h *AccessHandler) ResolveAccess(c *gin.Context) {
	actorID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok || actorID == "" {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid authentication"))
		return
	}

	decision, err := h.access.ResolveAccess(c.Request.Context(), c.Param("projectID"), actorID, middleware.GetSystemRole(c))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "project not found"},
		}, http.StatusInternalServerError, "failed to resolve access")
		return
	}

	c.JSON(http.StatusOK, AccessDecisionPayload{
		Allowed:     decision.Allowed,
		AccessLevel: decision.AccessLevel.String(),
		IsOwner:     decision.IsOwner,
		Reason:      string(decision.Reason),
	})
}

// CanPerform answers whether the caller may perform a single action.
func (h *AccessHandler) CanPerform(c *gin.Context) {
	actorID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok || actorID == "" {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid authentication"))
		return
	}

	action := domain.Action(strings.ToLower(strings.TrimSpace(c.Param("action"))))

	allowed, err := h.access.CanPerform(c.Request.Context(), c.Param("projectID"), actorID, middleware.GetSystemRole(c), action)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "project not found"},
		}, http.StatusInternalServerError, "failed to resolve access")
		return
	}

	c.JSON(http.StatusOK, CanPerformResponse{
		Allowed: allowed,
		Action:  string(action),
	})
}

package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/arklim/social-platform-collab/internal/infra/config"
	"github.com/arklim/social-platform-collab/internal/transport/http/handlers"
	"github.com/arklim/social-platform-collab/internal/transport/http/middleware"
	"github.com/arklim/social-platform-collab/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Groups *usecase.GroupService
	Shares *usecase.ShareService
	Access *usecase.AccessService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	HTTPMetrics *middleware.HTTPMetrics
	Services    ServiceSet
	Database    DatabaseChecker
	Cache       CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	if deps.HTTPMetrics != nil {
		r.Use(deps.HTTPMetrics.Handler())
	}

	authMiddleware := middleware.RequireAuth(deps.Config.Auth)

	healthHandler := handlers.NewHealthHandler()
	if deps.Database != nil {
		healthHandler = healthHandler.WithCheck("database", deps.Database.Ping)
	}
	if deps.Cache != nil {
		healthHandler = healthHandler.WithCheck("redis", deps.Cache.HealthCheck)
	}

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Ready)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		groupHandler := handlers.NewGroupHandler(deps.Services.Groups)

		groupsGroup := api.Group("/groups")
		groupsGroup.Use(authMiddleware)
		groupHandler.RegisterRoutes(groupsGroup)

		invitationsGroup := api.Group("/invitations")
		invitationsGroup.Use(authMiddleware)
		groupHandler.RegisterInvitationRoutes(invitationsGroup)

		shareHandler := handlers.NewShareHandler(deps.Services.Shares)
		sharesGroup := api.Group("/shares")
		sharesGroup.Use(authMiddleware)
		shareHandler.RegisterRoutes(sharesGroup)

		accessHandler := handlers.NewAccessHandler(deps.Services.Access)
		accessGroup := api.Group("/access")
		accessGroup.Use(authMiddleware)
		accessHandler.RegisterRoutes(accessGroup)
	}

	return r
}

package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appLogger "github.com/arklim/social-platform-collab/internal/infra/logger"
)

// Logger emits one access log line per request with correlation identifiers,
// the matched route, the authenticated principal, and a masked client IP.
// Probe and scrape endpoints are skipped so readiness polling does not
// flood the log.
func Logger(log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}

	quiet := map[string]struct{}{
		"/healthz": {},
		"/readyz":  {},
		"/metrics": {},
	}

	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		if _, ok := quiet[c.Request.URL.Path]; ok {
			return
		}

		fields := []zap.Field{
			zap.String("trace_id", GetTraceID(c)),
			zap.String("request_id", RequestIDFromContext(c.Request.Context())),
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", appLogger.MaskIP(c.ClientIP())),
		}

		if route := c.FullPath(); route != "" {
			fields = append(fields, zap.String("route", route))
		}
		if userID, ok := GetAuthenticatedUserID(c); ok && userID != "" {
			fields = append(fields, zap.String("user_id", userID))
		}
		if ua := c.Request.UserAgent(); ua != "" {
			fields = append(fields, zap.String("user_agent", ua))
		}

		if len(c.Errors) > 0 {
			log.Error("request failed", append(fields, zap.String("errors", c.Errors.String()))...)
			return
		}

		log.Info("request completed", fields...)
	}
}

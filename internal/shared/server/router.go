package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"doc-analyzer/internal/documents"
	"doc-analyzer/internal/pipeline"
	"doc-analyzer/internal/services/health"
	"doc-analyzer/internal/shared/auth"
	"doc-analyzer/internal/shared/config"
	"doc-analyzer/internal/shared/metrics"
	"doc-analyzer/internal/shared/server/middleware"
	"doc-analyzer/internal/shared/server/respond"
)

const uploadPath = "/api/v1/documents/upload"

// RouterDeps collects handlers built by bootstrap.
type RouterDeps struct {
	Config          config.Config
	Health          *health.Service
	DocumentHandler *documents.Handler
	UploadHandler   *pipeline.Handler

	// RateLimiter is optional; a fresh limiter is used when nil.
	RateLimiter *middleware.RateLimiter

	// Signer verifies bearer tokens. Without one only dev guest identities pass.
	Signer *auth.Signer
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		if deps.Health == nil {
			respond.OK(c, gin.H{"ok": true})
			return
		}
		st := deps.Health.Status(c.Request.Context())
		status := http.StatusOK
		if !st.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, st)
	})
	api.GET("/metrics", metrics.Handler())

	authed := api.Group("")
	authed.Use(
		middleware.Auth(deps.Config.Env, deps.Signer),
		middleware.RateLimit(rateLimitConfig(deps)),
	)
	if deps.UploadHandler != nil {
		deps.UploadHandler.RegisterRoutes(authed)
	}
	if deps.DocumentHandler != nil {
		deps.DocumentHandler.RegisterRoutes(authed)
	}

	return r
}

func rateLimitConfig(deps RouterDeps) middleware.RateLimitConfig {
	rules := map[string]middleware.RateLimitRule{}
	if deps.Config.UploadsPerMinute > 0 {
		rules[middleware.UploadGroup] = middleware.PerMinute(deps.Config.UploadsPerMinute)
	}
	return middleware.RateLimitConfig{
		Rules:   rules,
		Limiter: deps.RateLimiter,
		GroupFor: func(c *gin.Context) string {
			if c.Request.Method == http.MethodPost && c.FullPath() == uploadPath {
				return middleware.UploadGroup
			}
			return ""
		},
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}

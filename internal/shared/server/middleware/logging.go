package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"doc-analyzer/internal/shared/telemetry"
)

// Context keys handlers may set to enrich the request log line.
const (
	DocumentIDKey = "documentId"
	StrategyKey   = "extractStrategy"
	ErrorCodeKey  = "errorCode"
)

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		userID, _ := c.Get(userIDKey)
		isGuest, _ := c.Get(isGuestKey)

		telemetry.Info("request.complete", map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"user_id":     userID,
			"user_email":  UserEmailFromContext(c),
			"is_guest":    isGuest,
			"document_id": c.GetString(DocumentIDKey),
			"strategy":    c.GetString(StrategyKey),
			"error_code":  c.GetString(ErrorCodeKey),
			"client_ip":   c.ClientIP(),
		})
	}
}

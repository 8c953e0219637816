package middleware

import (
	"io"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"doc-analyzer/internal/shared/server/respond"
	"doc-analyzer/internal/shared/telemetry"
)

// Recovery turns a handler panic into a 500 INTERNAL_ERROR. The panic and its
// stack go to telemetry rather than gin's default writer.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, rec any) {
		fields := map[string]any{
			"request_id": RequestIDFromContext(c),
			"panic":      rec,
			"stack":      string(debug.Stack()),
			"method":     c.Request.Method,
			"route":      c.FullPath(),
		}
		if id := c.GetString(DocumentIDKey); id != "" {
			fields["document_id"] = id
		}
		telemetry.Error("http.panic", fields)
		respond.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
	})
}

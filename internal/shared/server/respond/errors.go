package respond

import (
	"github.com/gin-gonic/gin"

	"doc-analyzer/internal/shared/telemetry"
)

// Context keys shared with the middleware package, which imports respond.
const (
	requestIDKey  = "requestId"
	userIDKey     = "userId"
	documentIDKey = "documentId"
	errorCodeKey  = "errorCode"
)

// ErrorBody is the error object every failing endpoint returns.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Error logs the failure and aborts with {"error": {...}}. 5xx responses log at
// error level, everything else at warn.
func Error(c *gin.Context, status int, code, message string, details any) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"path":       c.FullPath(),
		"method":     c.Request.Method,
		"request_id": c.GetString(requestIDKey),
	}
	if fields["path"] == "" {
		fields["path"] = c.Request.URL.Path
	}
	for key, field := range map[string]string{userIDKey: "user_id", documentIDKey: "document_id"} {
		if v := c.GetString(key); v != "" {
			fields[field] = v
		}
	}
	c.Set(errorCodeKey, code)

	log := telemetry.Warn
	if status >= 500 {
		log = telemetry.Error
	}
	log("http.error", fields)

	c.AbortWithStatusJSON(status, ErrorResponse{Error: ErrorBody{Code: code, Message: message, Details: details}})
}

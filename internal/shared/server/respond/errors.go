package respond

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"docinsight-backend/internal/shared/telemetry"
)

// ErrorBody defines the standardized error object.
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// ErrorResponse wraps the error body.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Error logs through the request logger and sends a standardized error response.
func Error(c *gin.Context, status int, code, message string, details interface{}) {
	fields := []zap.Field{
		zap.Int("status", status),
		zap.String("code", code),
		zap.String("message", message),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
	}
	if userID := c.GetString("userId"); userID != "" {
		fields = append(fields, zap.String("user_id", userID))
	}
	log := telemetry.FromContext(c.Request.Context())
	if status >= 500 {
		log.Error("http.error", fields...)
	} else {
		log.Warn("http.error", fields...)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"docinsight-backend/internal/shared/telemetry"
)

// Logging attaches a request-scoped logger to the request context and
// emits one structured line per request.
func Logging(base *zap.Logger) gin.HandlerFunc {
	if base == nil {
		base = zap.NewNop()
	}
	return func(c *gin.Context) {
		reqLog := base.With(zap.String("request_id", RequestIDFromContext(c)))
		c.Request = c.Request.WithContext(telemetry.WithLogger(c.Request.Context(), reqLog))

		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Float64("duration_ms", float64(latency.Microseconds())/1000.0),
			zap.String("user_id", UserIDFromContext(c)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
		}
		if documentID := c.GetString("documentId"); documentID != "" {
			fields = append(fields, zap.String("document_id", documentID))
		}
		if source := c.GetString("sourceType"); source != "" {
			fields = append(fields, zap.String("source_type", source))
		}
		reqLog.Info("request.complete", fields...)
	}
}

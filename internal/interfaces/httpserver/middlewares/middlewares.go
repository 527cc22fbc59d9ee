package middlewares

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"statbridge/internal/infrastructure/metrics"
)

// RequestID attaches a request ID to the context and response headers,
// honoring an inbound X-Request-Id if present.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("requestID", id)
		c.Writer.Header().Set("X-Request-Id", id)
		c.Next()
	}
}

// RequestLogger logs each request once it completes.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		event := log.Info()
		if c.Writer.Status() >= 400 {
			event = log.Warn()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Str("request_id", c.GetString("requestID")).
			Dur("duration", time.Since(start)).
			Msg("request completed")
	}
}

// MetricsRecorder records HTTP request metrics for Prometheus.
func MetricsRecorder() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" || path == "/health" || path == "/healthz" || path == "/metrics" {
			return
		}
		status := strconv.Itoa(c.Writer.Status())
		metrics.RecordRequest(c.Request.Method, path, status, time.Since(start).Seconds())
	}
}

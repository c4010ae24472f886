package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/scrollfeed/logger"
	"github.com/kbukum/scrollfeed/observability"
)

// RequestLogger returns a Gin middleware that logs every request and records
// request metrics. Health-check paths are skipped. metrics may be nil.
func RequestLogger(log *logger.Logger, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if isHealthEndpoint(c.Request.URL.Path) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordRequest(c.Request.Context(), route, c.Request.Method, status, latency)

		path := c.Request.URL.Path
		if q := c.Request.URL.RawQuery; q != "" {
			path = path + "?" + q
		}

		fields := map[string]interface{}{
			"method":             c.Request.Method,
			"path":               path,
			"status":             status,
			logger.FieldDuration: latency.Milliseconds(),
			"client":             c.ClientIP(),
		}
		if id, ok := c.Get("request_id"); ok {
			fields[logger.FieldRequestID] = id
		}
		if latency > 500*time.Millisecond {
			fields["slow"] = true
		}
		logByStatus(log, fields, status)
	}
}

func isHealthEndpoint(path string) bool {
	switch path {
	case "/health", "/version":
		return true
	}
	return false
}

// logByStatus logs request fields at the level matching the status code.
// A nil log uses the global logger.
func logByStatus(log *logger.Logger, fields map[string]interface{}, status int) {
	if log == nil {
		log = logger.WithComponent("server")
	}
	switch {
	case status >= 500:
		log.Error("Request completed", fields)
	case status >= 400:
		log.Warn("Request completed", fields)
	default:
		log.Debug("Request completed", fields)
	}
}

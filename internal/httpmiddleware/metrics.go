package httpmiddleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"studentattendance/internal/metrics"
)

// Metrics records request counts and latency for service. Unmatched routes
// are grouped under "unmatched" to keep label cardinality bounded.
func Metrics(service string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(service, c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPDuration.WithLabelValues(service, c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

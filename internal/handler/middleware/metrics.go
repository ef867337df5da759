package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/glucotrack/glucotrack/pkg/metrics"
)

// Metrics records request count, latency, and in-flight gauge. The route
// template is used as the path label so patient ids do not explode the
// cardinality.
func Metrics(collector *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		collector.InFlightGauge.Inc()

		c.Next()

		collector.InFlightGauge.Dec()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		collector.RequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		collector.RequestDuration.WithLabelValues(c.Request.Method, path, status).
			Observe(time.Since(start).Seconds())
	}
}

package middleware

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	awspkg "github.com/Khizarkk7/storefront-backend/pkg/aws"
)

// unmeteredPaths is polled by the load balancer.
var unmeteredPaths = map[string]bool{"/health": true}

// MetricsMiddleware ships one request sample per call to CloudWatch,
// dimensioned by route template and status class.
func MetricsMiddleware(metricsClient *awspkg.MetricsClient, serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !metricsClient.IsEnabled() || unmeteredPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		sample := requestSample{
			latency: time.Since(start),
			failed:  status >= 400,
			dims: map[string]string{
				"Service": serviceName,
				"Method":  c.Request.Method,
				"Path":    route,
				"Status":  StatusClass(status),
			},
		}
		go sample.ship(metricsClient)
	}
}

type requestSample struct {
	latency time.Duration
	failed  bool
	dims    map[string]string
}

func (s requestSample) ship(m *awspkg.MetricsClient) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_ = m.RecordCount(ctx, awspkg.MetricHTTPRequests, s.dims)
	_ = m.RecordLatency(ctx, awspkg.MetricHTTPLatency, s.latency, s.dims)
	if s.failed {
		_ = m.RecordCount(ctx, awspkg.MetricHTTPErrors, s.dims)
	}
}

// StatusClass folds a status code into "2xx", "4xx" and so on.
func StatusClass(status int) string {
	if status < 100 || status > 599 {
		return "unknown"
	}
	return strconv.Itoa(status/100) + "xx"
}

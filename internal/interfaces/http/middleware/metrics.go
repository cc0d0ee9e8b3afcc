package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var durationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// HTTPMetrics records request count, latency and in-flight requests per
// route. Unmatched routes are reported as "unmatched" to bound cardinality.
func HTTPMetrics(meter metric.Meter) (gin.HandlerFunc, error) {
	requests, err := meter.Int64Counter("http_server_request_total",
		metric.WithDescription("Total number of HTTP requests"), metric.WithUnit("{request}"))
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("http_server_request_duration_seconds",
		metric.WithDescription("HTTP request latency in seconds"), metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...))
	if err != nil {
		return nil, err
	}
	active, err := meter.Int64UpDownCounter("http_server_active_requests",
		metric.WithDescription("Number of in-flight HTTP requests"), metric.WithUnit("{request}"))
	if err != nil {
		return nil, err
	}

	return func(c *gin.Context) {
		start := time.Now()
		ctx := c.Request.Context()
		method := attribute.String("method", c.Request.Method)

		active.Add(ctx, 1, metric.WithAttributes(method))
		defer active.Add(ctx, -1, metric.WithAttributes(method))

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		attrs := []attribute.KeyValue{method, attribute.String("route", route)}
		duration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(attrs...))
		attrs = append(attrs, attribute.String("status_code", strconv.Itoa(c.Writer.Status())))
		requests.Add(ctx, 1, metric.WithAttributes(attrs...))
	}, nil
}

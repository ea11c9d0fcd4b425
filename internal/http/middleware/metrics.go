// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file exposes Prometheus instrumentation for HTTP traffic. The Metrics()
// middleware measures request counts, latencies, in-flight concurrency, and
// response sizes with careful attention to label cardinality:
//
//   - method:   HTTP method verb (GET/POST/…)
//   - path:     the registered Gin route (e.g. /booking or /admin/cache/purge);
//     falls back to the raw URL path when no route matched
//   - action:   the booking operation multiplexed on the route's `action`
//     parameter (services, providers, availability, reserve, cancel); empty
//     when absent, "other" for unrecognized values so junk input cannot mint
//     new label values
//   - status:   numeric status code as a string (e.g. "200", "409")
//
// Because the whole booking surface hangs off one route, path alone would fold
// catalog reads and reservations into a single series; the bounded action
// label keeps them separable in dashboards without unbounded cardinality.
package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// httpReqs counts requests by method, route path, booking action, and
	// status code.
	httpReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "action", "status"},
	)

	// httpLat records request duration in seconds by method, route path and
	// action. Status is omitted to keep histogram cardinality lower.
	httpLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "action"},
	)

	// httpInflight gauges the number of in-flight (currently processing) requests.
	httpInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_inflight",
			Help: "Current number of in-flight HTTP requests.",
		},
	)

	// httpRespSize captures response sizes in bytes by method and route path.
	// Buckets are tuned for catalog and availability payloads: a full day of
	// slots is a few KiB, the service catalog rarely exceeds tens of KiB.
	httpRespSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_response_size_bytes",
			Help: "Size of HTTP responses in bytes.",
			Buckets: []float64{
				200, 500, 1 << 10, 2 << 10, 5 << 10, // 200B..5KiB
				10 << 10, 25 << 10, 50 << 10, // 10..50KiB
				100 << 10, 250 << 10, 500 << 10, // 100..500KiB
				1 << 20, // 1MiB, matches the global body cap
			},
		},
		[]string{"method", "path"},
	)
)

func init() {
	prometheus.MustRegister(httpReqs, httpLat, httpInflight, httpRespSize)
}

// knownActions bounds the action label to the operations the booking surface
// actually serves.
var knownActions = map[string]struct{}{
	"services":     {},
	"providers":    {},
	"availability": {},
	"reserve":      {},
	"cancel":       {},
}

// actionLabel maps the request's action parameter onto a bounded label value.
func actionLabel(c *gin.Context) string {
	a := c.Query("action")
	if a == "" {
		return ""
	}
	if _, ok := knownActions[a]; ok {
		return a
	}
	return "other"
}

// Metrics returns a Gin middleware that instruments requests with Prometheus.
//
// Usage:
//
//	r := gin.New()
//	r.Use(middleware.Metrics())
//	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
//
// Semantics:
//   - Increments http_requests_total(method, path, action, status) per request
//   - Observes http_request_duration_seconds(method, path, action) on completion
//   - Tracks http_requests_inflight gauge during handler execution
//   - Observes http_response_size_bytes(method, path) with bytes written
//
// The "path" label uses the registered route (c.FullPath()) so raw URLs cannot
// explode cardinality; when no route matched (404), the raw URL path is used
// instead. POST /booking carries its action in the JSON body rather than the
// query string, so write operations label as "" unless the client also sets
// the query parameter; the status code still separates their outcomes.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpInflight.Inc()
		defer httpInflight.Dec()

		c.Next()

		dur := time.Since(start).Seconds()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		method := c.Request.Method
		action := actionLabel(c)
		status := strconv.Itoa(c.Writer.Status())
		size := c.Writer.Size() // -1 when unknown

		httpReqs.WithLabelValues(method, path, action, status).Inc()
		httpLat.WithLabelValues(method, path, action).Observe(dur)
		if size >= 0 {
			httpRespSize.WithLabelValues(method, path).Observe(float64(size))
		}
	}
}

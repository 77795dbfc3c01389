package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// routeUnmatched is the path label for requests that hit no route, so
// scanners probing random URLs cannot grow the label set.
const routeUnmatched = "unmatched"

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route template and status.",
		},
		[]string{"method", "path", "status"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "HTTP request latency by route template.",
			// Action routes wait on the model for up to GENAI_TIMEOUT.
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 20, 30, 45, 60},
		},
		[]string{"method", "path"},
	)

	responseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response body size by route template.",
			Buckets: prometheus.ExponentialBuckets(256, 4, 7),
		},
		[]string{"method", "path"},
	)

	inFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "http_requests_inflight",
		Help: "HTTP requests currently being served.",
	})
)

// Metrics records count, latency and body size for each request, labelled
// by the matched route template rather than the raw URL.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		inFlight.Inc()
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)
		inFlight.Dec()

		method, path := c.Request.Method, c.FullPath()
		if path == "" {
			path = routeUnmatched
		}
		requestsTotal.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		requestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
		if n := c.Writer.Size(); n >= 0 {
			responseSize.WithLabelValues(method, path).Observe(float64(n))
		}
	}
}

// MetricsHandler exposes the default Prometheus registry.
func MetricsHandler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

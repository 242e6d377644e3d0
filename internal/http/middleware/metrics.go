package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// unmatchedPath labels requests that matched no registered route, so
// scanners probing random URLs cannot grow the path label set.
const unmatchedPath = "unmatched"

// Response sizes of the contact API range from a tiny capacity document to a
// page of submissions; anything above 64KiB is unexpected.
var respSizeBuckets = []float64{128, 256, 512, 1 << 10, 2 << 10, 4 << 10, 8 << 10, 16 << 10, 32 << 10, 64 << 10}

var (
	httpReqs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})

	httpLat = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	httpInflight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "http_requests_inflight",
		Help: "Current number of in-flight HTTP requests.",
	})

	httpRespSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_response_size_bytes",
		Help:    "Size of HTTP responses in bytes.",
		Buckets: respSizeBuckets,
	}, []string{"method", "path"})

	// httpRejections counts requests refused by middleware, by error code.
	httpRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_rejections_total",
		Help: "Requests refused by middleware before reaching a handler.",
	}, []string{"reason"})

	// idemReplays counts submits answered from a stored idempotent result.
	idemReplays = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_idempotent_replays_total",
		Help: "Requests recognised as replays of a completed operation.",
	}, []string{"scope"})
)

// reject counts the refusal under code and aborts with the standard error
// envelope.
func reject(c *gin.Context, status int, code, msg string) {
	httpRejections.WithLabelValues(code).Inc()
	c.AbortWithStatusJSON(status, gin.H{
		"request_id": c.Writer.Header().Get(requestIDHeader),
		"code":       code,
		"message":    msg,
	})
}

// Metrics records count, latency and response size per route template, and
// the number of requests in flight. Mount /metrics next to it:
//
//	r.Use(middleware.Metrics())
//	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		httpInflight.Inc()
		defer httpInflight.Dec()
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = unmatchedPath
		}
		method := c.Request.Method

		httpReqs.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpLat.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		if size := c.Writer.Size(); size >= 0 {
			httpRespSize.WithLabelValues(method, path).Observe(float64(size))
		}
	}
}

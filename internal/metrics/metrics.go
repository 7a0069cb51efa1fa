package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	initOnce sync.Once

	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fieldservice",
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "fieldservice",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	thumbnails = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fieldservice",
		Name:      "thumbnails_total",
		Help:      "Video thumbnail attempts by outcome.",
	}, []string{"status"})

	notifications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fieldservice",
		Name:      "notifications_total",
		Help:      "Upload notifications by outcome.",
	}, []string{"status"})

	uploadedFiles = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fieldservice",
		Name:      "media_files_stored_total",
		Help:      "Media files stored by kind.",
	}, []string{"kind"})
)

// InitMetrics registers the collectors with the default registry. Safe to call repeatedly.
func InitMetrics() {
	initOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, thumbnails, notifications, uploadedFiles)
	})
}

// Middleware records request counts and latencies per route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// ObserveThumbnail counts a thumbnail outcome.
func ObserveThumbnail(status string) {
	thumbnails.WithLabelValues(status).Inc()
}

// ObserveNotification counts a notification outcome.
func ObserveNotification(status string) {
	notifications.WithLabelValues(status).Inc()
}

// ObserveStoredFile counts a stored media file by kind.
func ObserveStoredFile(kind string) {
	uploadedFiles.WithLabelValues(kind).Inc()
}

// Register attaches the Prometheus metrics endpoint to the router.
func Register(router *gin.Engine, path string) {
	InitMetrics()
	router.GET(path, gin.WrapH(promhttp.Handler()))
}

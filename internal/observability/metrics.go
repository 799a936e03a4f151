package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Counters are enumerated per store rather than derived from schema
// reflection, so the metric surface is fixed and visible here.
var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archive_http_requests_total",
			Help: "Total number of HTTP requests processed by the archive service.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "archive_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	archiveRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archive_runs_total",
			Help: "Total number of archival runs by outcome.",
		},
		[]string{"status"},
	)
	archiveRunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "archive_run_duration_seconds",
			Help:    "Archival run wall-clock durations in seconds.",
			Buckets: prometheus.DefBuckets,
		},
	)
	archivedMessagesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "archive_messages_archived_total",
			Help: "Total number of rows written to the archive store.",
		},
	)
	purgedLiveMessagesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "archive_live_messages_purged_total",
			Help: "Total number of rows deleted from the live message store by archival runs.",
		},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "archive_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		archiveRunsTotal,
		archiveRunDuration,
		archivedMessagesTotal,
		purgedLiveMessagesTotal,
		amqpPublishErrorsTotal,
	)
}

func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func ObserveArchiveRun(status string, duration time.Duration) {
	archiveRunsTotal.WithLabelValues(status).Inc()
	archiveRunDuration.Observe(duration.Seconds())
}

func AddArchivedMessages(n int) {
	archivedMessagesTotal.Add(float64(n))
}

func AddPurgedLiveMessages(n int) {
	purgedLiveMessagesTotal.Add(float64(n))
}

func IncAMQPPublishError() {
	amqpPublishErrorsTotal.Inc()
}

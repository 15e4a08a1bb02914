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

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	uploadedBytesTotal  prometheus.Counter
	uploadJobsTotal     *prometheus.CounterVec
)

// InitMetrics registers the service collectors. Safe to call more than once.
func InitMetrics() {
	initOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "teamfiles_http_requests_total",
			Help: "Total HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"})

		httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "teamfiles_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"})

		uploadedBytesTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "teamfiles_uploaded_bytes_total",
			Help: "Total bytes accepted by completed upload jobs.",
		})

		uploadJobsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "teamfiles_upload_jobs_total",
			Help: "Upload job outcomes.",
		}, []string{"outcome"})

		prometheus.MustRegister(httpRequestsTotal, httpRequestDuration, uploadedBytesTotal, uploadJobsTotal)
	})
}

// Middleware records request counters and latency.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		if httpRequestsTotal != nil {
			httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		}
		if httpRequestDuration != nil {
			httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		}
	}
}

// ObserveUpload accounts one finished upload job.
func ObserveUpload(bytes int64, ok bool) {
	if uploadedBytesTotal == nil || uploadJobsTotal == nil {
		return
	}
	outcome := "success"
	if !ok {
		outcome = "failure"
	} else {
		uploadedBytesTotal.Add(float64(bytes))
	}
	uploadJobsTotal.WithLabelValues(outcome).Inc()
}

// Register attaches the Prometheus metrics endpoint to the router.
func Register(router *gin.Engine, path string) {
	router.GET(path, gin.WrapH(promhttp.Handler()))
}

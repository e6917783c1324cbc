package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

var (
	once sync.Once

	// HTTPRequests counts console requests by route and status.
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "console",
		Name:      "requests_total",
		Help:      "Console HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})

	// HTTPDuration observes console request latency.
	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "console",
		Name:      "request_duration_seconds",
		Help:      "Console HTTP request latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	// GatewayRequests counts backend calls by method and outcome.
	GatewayRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "gateway",
		Name:      "requests_total",
		Help:      "Backend API calls by method and outcome",
	}, []string{"method", "outcome"})

	// GatewayDuration observes backend call latency, excluding refresh calls.
	GatewayDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "gateway",
		Name:      "request_duration_seconds",
		Help:      "Backend API call latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})

	// TokenRefreshes counts refresh attempts by result.
	TokenRefreshes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "gateway",
		Name:      "token_refreshes_total",
		Help:      "Access token refresh attempts by result",
	}, []string{"result"})

	// ForcedLogouts counts sessions cleared after a failed refresh.
	ForcedLogouts = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "gateway",
		Name:      "forced_logouts_total",
		Help:      "Sessions cleared because the access token could not be refreshed",
	})

	// AdvisoryRedirects counts role-mismatch navigations after a 403.
	AdvisoryRedirects = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "gateway",
		Name:      "advisory_redirects_total",
		Help:      "Navigations to the home route after a 403 on a role namespace",
	}, []string{"namespace"})

	// ReportArchives counts report uploads to object storage by result.
	ReportArchives = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "report",
		Name:      "archives_total",
		Help:      "Report exports archived to object storage by result",
	}, []string{"result"})
)

// InitMetrics registers every collector with the default registerer. Safe to
// call more than once.
func InitMetrics() {
	once.Do(func() {
		prometheus.MustRegister(
			HTTPRequests,
			HTTPDuration,
			GatewayRequests,
			GatewayDuration,
			TokenRefreshes,
			ForcedLogouts,
			AdvisoryRedirects,
			ReportArchives,
		)
	})
}

// Middleware records request count and latency for the console router.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		HTTPRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// Register attaches the Prometheus metrics endpoint to the router.
func Register(router *gin.Engine, path string) {
	router.GET(path, gin.WrapH(promhttp.Handler()))
}

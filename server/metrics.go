package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/fioncat/gbrowse/handler"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gbrowse_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gbrowse_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	dispatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gbrowse_dispatch_total",
			Help: "Total number of file dispatches by handler kind and result",
		},
		[]string{"kind", "result"},
	)

	listingEntries = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gbrowse_listing_entries",
			Help:    "Number of entries in a directory listing",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	authAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gbrowse_auth_attempts_total",
			Help: "Total authentication attempts",
		},
		[]string{"result"},
	)
)

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

func recordDispatch(kind handler.Kind, content *handler.Content) {
	dispatchTotal.WithLabelValues(kind.String(), content.Kind.String()).Inc()
}

func recordListing(n int) {
	listingEntries.Observe(float64(n))
}

func recordAuthAttempt(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	authAttemptsTotal.WithLabelValues(result).Inc()
}

// metricsMiddleware labels requests with the matched route pattern rather
// than the raw path, which would be unbounded.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(sw.status)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

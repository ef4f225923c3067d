package v1

import (
	"net/http"
	"strconv"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tinoosan/networth/internal/finance"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "networth",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "status"},
	)
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "networth",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "status"},
	)
	snapshotsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "networth",
			Name:      "snapshots_created_total",
			Help:      "Snapshots created, idempotent replays excluded",
		},
	)
	accountClassificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "networth",
			Name:      "account_classifications_total",
			Help:      "Ingested accounts by the rule that classified them (category, type or balance)",
		},
		[]string{"source"},
	)
)

func metricsHandler() http.Handler {
	return promhttp.Handler()
}

func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		status := strconv.Itoa(ww.Status())
		httpRequestsTotal.WithLabelValues(r.Method, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, status).Observe(time.Since(start).Seconds())
	})
}

// classificationObserver counts how each ingested account was classified. Anything but
// "category" is a fallback.
type classificationObserver struct{}

func (classificationObserver) ObserveClassification(source finance.ClassificationSource) {
	accountClassificationsTotal.WithLabelValues(string(source)).Inc()
}

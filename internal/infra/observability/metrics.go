package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"

	"github.com/clubbook/members-book-go/internal/domain"
)

// Metrics holds all Prometheus metrics for the members book.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	externalErrors  *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	fallbacks       *prometheus.CounterVec
	approvals       *prometheus.CounterVec
	requestsTotal   *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mb_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mb_external_errors_total",
				Help: "Total errors from the members API.",
			},
			[]string{"service"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mb_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mb_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		fallbacks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mb_mock_fallbacks_total",
				Help: "Total reads served from the local dataset after an API failure.",
			},
			[]string{"operation"},
		),
		approvals: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mb_approvals_total",
				Help: "Total approval workflow events.",
			},
			[]string{"event"},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mb_requests_total",
				Help: "Total requests processed.",
			},
			[]string{"status"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrFallback records a read answered from the local dataset.
func (m *Metrics) IncrFallback(operation string) {
	m.fallbacks.WithLabelValues(operation).Inc()
}

// IncrApproval records an approval workflow event: submitted, approved
// or rejected.
func (m *Metrics) IncrApproval(event string) {
	m.approvals.WithLabelValues(event).Inc()
}

// IncrRequest increments the request counter with a status label.
func (m *Metrics) IncrRequest(status string) {
	m.requestsTotal.WithLabelValues(status).Inc()
}

// MetricsMiddleware counts every handled request as success (2xx/3xx)
// or error (4xx/5xx).
func MetricsMiddleware(m *Metrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			if ww.Status() >= 400 {
				m.IncrRequest("error")
			} else {
				m.IncrRequest("success")
			}
		})
	}
}

// UsageSnapshot renders the cumulative counters as dashboard cards for
// the admin metrics endpoint.
func (m *Metrics) UsageSnapshot() []domain.SystemMetric {
	success := getCounterValue(m.requestsTotal, "success")
	errors := getCounterValue(m.requestsTotal, "error")
	total := success + errors

	fallbacks := getCounterValue(m.fallbacks, "list_members") +
		getCounterValue(m.fallbacks, "list_users") +
		getCounterValue(m.fallbacks, "system_metrics") +
		getCounterValue(m.fallbacks, "list_rooms")

	submitted := getCounterValue(m.approvals, "submitted")
	decided := getCounterValue(m.approvals, "approved") + getCounterValue(m.approvals, "rejected")

	errTrend := domain.TrendStable
	if errors > 0 {
		errTrend = domain.TrendUp
	}

	return []domain.SystemMetric{
		{ID: "requests", Title: "Requisições Processadas", Value: fmt.Sprintf("%.0f", total), Change: "", Trend: domain.TrendStable, Icon: "pulse"},
		{ID: "errors", Title: "Erros", Value: fmt.Sprintf("%.0f", errors), Change: "", Trend: errTrend, Icon: "alert-circle"},
		{ID: "fallbacks", Title: "Leituras Offline", Value: fmt.Sprintf("%.0f", fallbacks), Change: "", Trend: domain.TrendStable, Icon: "cloud-offline"},
		{ID: "approvals", Title: "Aprovações Pendentes", Value: fmt.Sprintf("%.0f", submitted-decided), Change: "", Trend: domain.TrendStable, Icon: "hourglass"},
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}

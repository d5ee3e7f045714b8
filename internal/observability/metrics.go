// Package observability holds the Prometheus metrics of the generator and
// the viewer API. Every method is safe on a nil *Metrics, which records
// nothing.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels of a generation.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics collects the Prometheus metrics of the application.
type Metrics struct {
	registry *prometheus.Registry
	handler  http.Handler

	generations        *prometheus.CounterVec
	generationDuration *prometheus.HistogramVec
	factRecords        *prometheus.CounterVec

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter
}

// NewMetrics creates a registry with every metric registered.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	generations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pnl_generations_total",
		Help: "Workbook generations by report, detail level and outcome.",
	}, []string{"report", "detail", "outcome"})
	generationDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pnl_generation_duration_seconds",
		Help:    "Duration of one workbook generation.",
		Buckets: prometheus.DefBuckets,
	}, []string{"report", "detail"})
	factRecords := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pnl_fact_records_total",
		Help: "Fact records read by report.",
	}, []string{"report"})

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pnl_http_requests_total",
		Help: "Viewer HTTP requests by route and status.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pnl_http_request_duration_seconds",
		Help:    "Viewer HTTP request duration by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	hits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pnl_snapshot_cache_hits_total",
		Help: "Workbook snapshot cache hits.",
	})
	misses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pnl_snapshot_cache_misses_total",
		Help: "Workbook snapshot cache misses.",
	})

	registry.MustRegister(generations, generationDuration, factRecords, requests, duration, hits, misses)

	return &Metrics{
		registry:           registry,
		handler:            promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		generations:        generations,
		generationDuration: generationDuration,
		factRecords:        factRecords,
		requestsTotal:      requests,
		requestDuration:    duration,
		cacheHits:          hits,
		cacheMisses:        misses,
	}
}

// Handler returns the /metrics handler.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registerer exposes the registry for additional collectors.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

// Gatherer exposes the registry for reading.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	if m == nil {
		return prometheus.DefaultGatherer
	}
	return m.registry
}

// ObserveGeneration records one finished generation.
func (m *Metrics) ObserveGeneration(report, detail string, records int, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	m.generations.WithLabelValues(report, detail, outcome).Inc()
	m.generationDuration.WithLabelValues(report, detail).Observe(elapsed.Seconds())
	if records > 0 {
		m.factRecords.WithLabelValues(report).Add(float64(records))
	}
}

// CacheHit records a snapshot cache hit.
func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}

// CacheMiss records a snapshot cache miss.
func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.cacheMisses.Inc()
}

// Middleware records request count and duration per chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}

// Package metrics exposes Prometheus collectors for the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "luckylogic"

// Metrics holds the service collectors on a private registry.
// It satisfies engine.Recorder.
type Metrics struct {
	Registry *prometheus.Registry

	linesGenerated *prometheus.CounterVec
	drawFetches    *prometheus.CounterVec
	ticketsChecked prometheus.Counter
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	jobRuns        *prometheus.CounterVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		linesGenerated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "generator",
				Name:      "lines_total",
				Help:      "Total number of lines generated.",
			},
			[]string{"strategy"},
		),
		drawFetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "draws",
				Name:      "fetches_total",
				Help:      "Draw history loads by outcome.",
			},
			[]string{"outcome"},
		),
		ticketsChecked: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "tickets",
				Name:      "checked_total",
				Help:      "Total number of tickets checked against a draw result.",
			},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests handled.",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
			},
			[]string{"method", "route"},
		),
		jobRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "scheduler",
				Name:      "job_runs_total",
				Help:      "Scheduled job runs by job and success.",
			},
			[]string{"job", "success"},
		),
	}
	m.Registry.MustRegister(
		m.linesGenerated,
		m.drawFetches,
		m.ticketsChecked,
		m.httpRequests,
		m.httpDuration,
		m.jobRuns,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
	return m
}

// Handler exposes the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func (m *Metrics) DrawFetch(outcome string) {
	m.drawFetches.WithLabelValues(outcome).Inc()
}

func (m *Metrics) LinesGenerated(strategy string, n int) {
	m.linesGenerated.WithLabelValues(strategy).Add(float64(n))
}

func (m *Metrics) TicketsChecked(n int) {
	m.ticketsChecked.Add(float64(n))
}

// JobRun records one scheduler job execution.
func (m *Metrics) JobRun(job string, success bool) {
	m.jobRuns.WithLabelValues(job, strconv.FormatBool(success)).Inc()
}

// Instrument records request counts and latency labelled by chi route pattern.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

package metric

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "foteam"

// Registry holds all application metrics.
//
// All recording methods are safe on a nil *Registry, so components can be
// constructed without metrics in tests and tools.
type Registry struct {
	registry *prometheus.Registry

	// Store metrics
	SessionReads    *prometheus.CounterVec
	SessionWrites   *prometheus.CounterVec
	SessionDestroys prometheus.Counter
	SessionTouches  *prometheus.CounterVec
	GCRuns          prometheus.Counter
	GCDeleted       prometheus.Counter
	StoreDuration   *prometheus.HistogramVec

	// Request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

var (
	globalOnce sync.Once
	global     *Registry
)

// NewRegistry creates a new metrics registry with Go runtime and process
// collectors already registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Registry{
		registry: reg,
		SessionReads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "reads_total",
			Help:      "Session reads by resulting state (fresh, active, expired)",
		}, []string{"state"}),
		SessionWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "writes_total",
			Help:      "Session writes by result (ok, suppressed, error)",
		}, []string{"result"}),
		SessionDestroys: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "destroys_total",
			Help:      "Session records destroyed",
		}),
		SessionTouches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "touches_total",
			Help:      "Session touches by result (ok, missing, error)",
		}, []string{"result"}),
		GCRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "gc_runs_total",
			Help:      "Garbage collection sweeps over the session directory",
		}),
		GCDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "gc_deleted_total",
			Help:      "Session records deleted by garbage collection",
		}),
		StoreDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "store_duration_seconds",
			Help:      "Latency of session store operations",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		}, []string{"op"}),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status",
		}, []string{"method", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}

	reg.MustRegister(
		r.SessionReads,
		r.SessionWrites,
		r.SessionDestroys,
		r.SessionTouches,
		r.GCRuns,
		r.GCDeleted,
		r.StoreDuration,
		r.RequestsTotal,
		r.RequestDuration,
	)
	return r
}

// Global returns the process-wide registry.
func Global() *Registry {
	globalOnce.Do(func() {
		global = NewRegistry()
	})
	return global
}

// Handler returns an HTTP handler for the global registry.
func Handler() http.Handler {
	return Global().Handler()
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// MustRegister registers additional collectors (see Collector).
func (r *Registry) MustRegister(cs ...prometheus.Collector) {
	r.registry.MustRegister(cs...)
}

// RecordRead counts a read that produced the given state.
func (r *Registry) RecordRead(state string) {
	if r == nil {
		return
	}
	r.SessionReads.WithLabelValues(state).Inc()
}

// RecordWrite counts a write outcome.
func (r *Registry) RecordWrite(result string) {
	if r == nil {
		return
	}
	r.SessionWrites.WithLabelValues(result).Inc()
}

// IncDestroy counts a destroyed record.
func (r *Registry) IncDestroy() {
	if r == nil {
		return
	}
	r.SessionDestroys.Inc()
}

// RecordTouch counts a touch outcome.
func (r *Registry) RecordTouch(result string) {
	if r == nil {
		return
	}
	r.SessionTouches.WithLabelValues(result).Inc()
}

// RecordGC counts one sweep and the records it removed.
func (r *Registry) RecordGC(deleted int) {
	if r == nil {
		return
	}
	r.GCRuns.Inc()
	r.GCDeleted.Add(float64(deleted))
}

// ObserveStoreDuration records the latency of one store operation.
func (r *Registry) ObserveStoreDuration(op string, seconds float64) {
	if r == nil {
		return
	}
	r.StoreDuration.WithLabelValues(op).Observe(seconds)
}

// RecordRequest counts an HTTP request.
func (r *Registry) RecordRequest(method, status string) {
	if r == nil {
		return
	}
	r.RequestsTotal.WithLabelValues(method, status).Inc()
}

// ObserveRequestDuration records HTTP request latency.
func (r *Registry) ObserveRequestDuration(method string, seconds float64) {
	if r == nil {
		return
	}
	r.RequestDuration.WithLabelValues(method).Observe(seconds)
}

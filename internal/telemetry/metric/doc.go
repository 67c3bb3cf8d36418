// Package metric provides Prometheus metrics for the session engine.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: Prometheus registry, store/request metrics and HTTP handler
//   - collector.go: Custom collector reporting the record files on disk
//
// Metrics include:
//
//   - Store operation counters (reads by state, writes by result, destroys, touches)
//   - Garbage collection runs and deleted records
//   - Store operation and HTTP request latency histograms
//
// Metrics are exposed at /metrics in Prometheus format.
package metric

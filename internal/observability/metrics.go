// Package observability exposes the Prometheus metrics of the inventory
// service. Every recording method is safe on a nil *Metrics.
package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "steelrolls"

// Metrics groups the collectors registered by NewMetrics.
type Metrics struct {
	rollsAdded       prometheus.Counter
	rollsDeleted     prometheus.Counter
	statsDuration    *prometheus.HistogramVec
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	reportsGenerated *prometheus.CounterVec
	storeMaintenance *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg. Tests pass a fresh
// prometheus.NewRegistry() to stay isolated from the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// rollsAdded counts rolls accepted into stock.
		rollsAdded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "inventory",
			Name:      "rolls_added_total",
			Help:      "Total rolls added to stock",
		}),

		// rollsDeleted counts soft deletions.
		rollsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "inventory",
			Name:      "rolls_deleted_total",
			Help:      "Total rolls removed from stock",
		}),

		// statsDuration measures statistics computations.
		// Labels: operation (statistics, daily)
		statsDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "statistics",
			Name:      "duration_seconds",
			Help:      "Time spent computing statistics in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation"}),

		// httpRequests counts API requests.
		// Labels: method, route (the gin route template), status
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by route and status",
		}, []string{"method", "route", "status"}),

		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),

		// reportsGenerated counts scheduled report outcomes.
		// Labels: sink (store, sheets, webhook), outcome (success, error)
		reportsGenerated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "reporting",
			Name:      "deliveries_total",
			Help:      "Report deliveries by sink and outcome",
		}, []string{"sink", "outcome"}),

		storeMaintenance: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "storage",
			Name:      "maintenance_runs_total",
			Help:      "Storage maintenance runs by outcome",
		}, []string{"outcome"}),
	}
}

// RollAdded records one added roll.
func (m *Metrics) RollAdded() {
	if m == nil {
		return
	}
	m.rollsAdded.Inc()
}

// RollDeleted records one soft deletion.
func (m *Metrics) RollDeleted() {
	if m == nil {
		return
	}
	m.rollsDeleted.Inc()
}

// ObserveStatistics records how long a statistics operation took.
func (m *Metrics) ObserveStatistics(operation string, d time.Duration) {
	if m == nil {
		return
	}
	m.statsDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// ObserveRequest records a completed HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ReportDelivered records the outcome of delivering a report to sink.
func (m *Metrics) ReportDelivered(sink string, err error) {
	if m == nil {
		return
	}
	m.reportsGenerated.WithLabelValues(sink, outcome(err)).Inc()
}

// MaintenanceRun records a storage maintenance pass.
func (m *Metrics) MaintenanceRun(err error) {
	if m == nil {
		return
	}
	m.storeMaintenance.WithLabelValues(outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"time"
)

const namespace = "gke_metrics_exporter"

// Recorder collects the outcome of exporter runs.
// All methods are safe to call on a nil *Recorder, which records nothing.
type Recorder struct {
	registry *prometheus.Registry

	namespaces    prometheus.Gauge
	rowsWritten   *prometheus.CounterVec
	skipped       *prometheus.CounterVec
	writeFailures *prometheus.CounterVec
	runDuration   prometheus.Gauge
	lastSuccess   prometheus.Gauge
	runs          *prometheus.CounterVec
}

// NewRecorder creates a Recorder with its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		namespaces: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "namespaces_discovered",
			Help:      "Number of namespaces discovered by the last run.",
		}),
		rowsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_written_total",
			Help:      "Number of rows written to the warehouse.",
		}, []string{"metric"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "metrics_skipped_total",
			Help:      "Number of metric queries that returned no data.",
		}, []string{"metric"}),
		writeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "write_failures_total",
			Help:      "Number of batches the warehouse rejected.",
		}, []string{"metric"}),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_duration_seconds",
			Help:      "Duration of the last run.",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Number of runs by result.",
		}, []string{"result"}),
	}

	r.registry.MustRegister(
		r.namespaces, r.rowsWritten, r.skipped, r.writeFailures, r.runDuration, r.lastSuccess, r.runs)

	return r
}

// Gatherer returns the registry of the collected metrics.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	if r == nil {
		return prometheus.NewRegistry()
	}

	return r.registry
}

// NamespacesDiscovered records the number of namespaces found by discovery.
func (r *Recorder) NamespacesDiscovered(n int) {
	if r == nil {
		return
	}

	r.namespaces.Set(float64(n))
}

// RowsWritten counts n rows of metric committed to the warehouse.
func (r *Recorder) RowsWritten(metric string, n int) {
	if r == nil {
		return
	}

	r.rowsWritten.WithLabelValues(metric).Add(float64(n))
}

// MetricSkipped counts a query of metric that returned no data.
func (r *Recorder) MetricSkipped(metric string) {
	if r == nil {
		return
	}

	r.skipped.WithLabelValues(metric).Inc()
}

// WriteFailed counts a rejected batch of metric.
func (r *Recorder) WriteFailed(metric string) {
	if r == nil {
		return
	}

	r.writeFailures.WithLabelValues(metric).Inc()
}

// RunFinished records a run that started at start and ended now with err.
func (r *Recorder) RunFinished(start time.Time, err error) {
	if r == nil {
		return
	}

	now := time.Now()
	r.runDuration.Set(now.Sub(start).Seconds())

	if err != nil {
		r.runs.WithLabelValues("failure").Inc()

		return
	}

	r.runs.WithLabelValues("success").Inc()
	r.lastSuccess.Set(float64(now.Unix()))
}

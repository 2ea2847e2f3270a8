package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	cycles        *prometheus.CounterVec
	cycleDuration *prometheus.HistogramVec
	tasks         *prometheus.CounterVec
	progress      *prometheus.GaugeVec
	signals       *prometheus.GaugeVec
	errorsTotal   *prometheus.CounterVec
	latency       *prometheus.HistogramVec
}

// New creates a recorder registered with the default Prometheus registry.
func New() *Recorder {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a recorder registered with reg.
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		cycles: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flowscan_cycles_total",
				Help: "Scan cycles by mode and outcome",
			},
			[]string{"mode", "status"},
		),
		cycleDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "flowscan_cycle_duration_seconds",
				Help:    "Wall time of a scan cycle",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
			},
			[]string{"mode"},
		),
		tasks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flowscan_tasks_total",
				Help: "Per-symbol tasks by mode and outcome",
			},
			[]string{"mode", "status"},
		),
		progress: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "flowscan_scan_progress_ratio",
				Help: "Finished tasks over universe size in the running cycle",
			},
			[]string{"mode"},
		),
		signals: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "flowscan_signals",
				Help: "Signals produced by the last cycle",
			},
			[]string{"mode", "kind"},
		),
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flowscan_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "flowscan_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordCycle records one finished or aborted cycle.
func (r *Recorder) RecordCycle(mode string, seconds float64, err error) {
	r.cycles.WithLabelValues(mode, status(err == nil)).Inc()
	r.cycleDuration.WithLabelValues(mode).Observe(seconds)
}

// RecordTask records the outcome of one per-symbol task.
func (r *Recorder) RecordTask(mode string, ok bool) {
	r.tasks.WithLabelValues(mode, status(ok)).Inc()
}

func (r *Recorder) RecordProgress(mode string, done, total int) {
	if total <= 0 {
		r.progress.WithLabelValues(mode).Set(0)
		return
	}
	r.progress.WithLabelValues(mode).Set(float64(done) / float64(total))
}

func (r *Recorder) RecordSignals(mode, kind string, n int) {
	r.signals.WithLabelValues(mode, kind).Set(float64(n))
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

func status(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}

package replicate

import "github.com/prometheus/client_golang/prometheus"

// Metrics tracks replication-engine Prometheus metrics, all under the
// replicate_ prefix.
type Metrics struct {
	TasksTotal  *prometheus.CounterVec
	QueueDepth  prometheus.Gauge
	Replicated  prometheus.Gauge
	Invalidated *prometheus.CounterVec
}

// NewMetrics creates and registers replication metrics against reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TasksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "replicate_tasks_total",
				Help: "Total replication tasks processed by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		QueueDepth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "replicate_queue_depth",
				Help: "Current number of queued replication tasks",
			},
		),
		Replicated: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "replicate_files_replicated",
				Help: "Current number of files with more than one replica",
			},
		),
		Invalidated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "replicate_invalidations_total",
				Help: "Total secondary replicas invalidated on exclusive lock",
			},
			[]string{"reason"},
		),
	}

	reg.MustRegister(m.TasksTotal, m.QueueDepth, m.Replicated, m.Invalidated)
	return m
}

func (m *Metrics) recordTask(k Kind, outcome string) {
	if m == nil {
		return
	}
	m.TasksTotal.WithLabelValues(k.String(), outcome).Inc()
}

func (m *Metrics) setQueueDepth(n int) {
	if m == nil {
		return
	}
	m.QueueDepth.Set(float64(n))
}

// NullMetrics returns nil, a valid no-op Metrics receiver.
func NullMetrics() *Metrics { return nil }

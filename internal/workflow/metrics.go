package workflow

import (
	"github.com/prometheus/client_golang/prometheus"

	"loom/internal/session"
)

// Metrics tracks engine activity. All methods are nil-safe so the engine can
// run without a registry wired in.
type Metrics struct {
	stageExecutions *prometheus.CounterVec
	stageRetries    *prometheus.CounterVec
	stageDuration   *prometheus.HistogramVec
	runsCompleted   prometheus.Counter
	runsFailed      prometheus.Counter
}

// NewMetrics registers the engine collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		stageExecutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loom_stage_executions_total",
				Help: "Stage executions by stage and outcome.",
			},
			[]string{"stage", "outcome"},
		),
		stageRetries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loom_stage_retries_total",
				Help: "Stage retries by stage.",
			},
			[]string{"stage"},
		),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "loom_stage_duration_seconds",
				Help:    "Stage execution duration.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		runsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "loom_runs_completed_total",
			Help: "Runs that delivered a learning package.",
		}),
		runsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "loom_runs_failed_total",
			Help: "Runs that ended without a learning package.",
		}),
	}
	reg.MustRegister(m.stageExecutions, m.stageRetries, m.stageDuration, m.runsCompleted, m.runsFailed)
	return m
}

func (m *Metrics) observeStage(stage session.Stage, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.stageExecutions.WithLabelValues(string(stage), outcome).Inc()
	m.stageDuration.WithLabelValues(string(stage)).Observe(seconds)
}

func (m *Metrics) observeRetry(stage session.Stage) {
	if m == nil {
		return
	}
	m.stageRetries.WithLabelValues(string(stage)).Inc()
}

func (m *Metrics) observeRunEnd(completed bool) {
	if m == nil {
		return
	}
	if completed {
		m.runsCompleted.Inc()
		return
	}
	m.runsFailed.Inc()
}

package core

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records import activity. A nil *Metrics records nothing.
type Metrics struct {
	rows           *prometheus.CounterVec
	imports        *prometheus.CounterVec
	commitDuration prometheus.Histogram
}

// NewMetrics registers the import collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stockimport",
			Name:      "rows_total",
			Help:      "Committed import rows by outcome.",
		}, []string{"outcome"}),
		imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stockimport",
			Name:      "imports_total",
			Help:      "Imports by final status.",
		}, []string{"status"}),
		commitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "stockimport",
			Name:      "commit_duration_seconds",
			Help:      "Time spent committing one import.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.rows, m.imports, m.commitDuration)
	return m
}

// ObserveCommit records a committed import's outcomes.
func (m *Metrics) ObserveCommit(res Result, took time.Duration) {
	if m == nil {
		return
	}
	for _, o := range res.Outcomes {
		m.rows.WithLabelValues(string(o.Tag)).Inc()
	}
	m.imports.WithLabelValues(string(PhaseCommitted)).Inc()
	m.commitDuration.Observe(took.Seconds())
}

// ObserveAbort records an import cancelled at a gate.
func (m *Metrics) ObserveAbort() {
	if m == nil {
		return
	}
	m.imports.WithLabelValues(string(PhaseAborted)).Inc()
}

// ObserveFailure records an import that stopped with a pipeline-level error.
func (m *Metrics) ObserveFailure() {
	if m == nil {
		return
	}
	m.imports.WithLabelValues("failed").Inc()
}

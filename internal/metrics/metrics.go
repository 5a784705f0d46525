// Package metrics exposes Prometheus instrumentation for scoring requests.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/danielpatrickdp/quantscore/internal/eval"
)

const namespace = "quantscore"

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Metrics holds the scorer's collectors.
//
// Thread Safety: safe for concurrent use.
type Metrics struct {
	EvaluationsTotal  *prometheus.CounterVec
	FailuresTotal     *prometheus.CounterVec
	EvaluationSeconds *prometheus.HistogramVec
}

// New registers the collectors on reg. Pass prometheus.NewRegistry() in tests
// to avoid clashing with the global registry.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		EvaluationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "evaluations_total",
				Help:      "Scoring and format-check requests by task and outcome",
			},
			[]string{"task", "outcome"},
		),
		FailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "failures_total",
				Help:      "Rejected requests by error kind",
			},
			[]string{"kind"},
		),
		EvaluationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "evaluation_seconds",
				Help:      "Time spent validating and scoring a submission",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
			},
			[]string{"task"},
		),
	}
}

// Observe records one request for taskName that started at start and ended
// with err. A nil receiver is a no-op.
func (m *Metrics) Observe(taskName string, start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
		m.FailuresTotal.WithLabelValues(eval.ErrorKind(err)).Inc()
	}
	m.EvaluationsTotal.WithLabelValues(taskName, outcome).Inc()
	m.EvaluationSeconds.WithLabelValues(taskName).Observe(time.Since(start).Seconds())
}

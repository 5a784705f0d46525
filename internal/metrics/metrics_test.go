package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/quantscore/internal/task"
	"github.com/danielpatrickdp/quantscore/internal/validate"
)

func newTestMetrics(t *testing.T) (*Metrics, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return New(reg), reg
}

func TestObserve_Success(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.Observe("T1A", time.Now(), nil)
	m.Observe("T1A", time.Now(), nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.EvaluationsTotal.WithLabelValues("T1A", OutcomeSuccess)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.EvaluationsTotal.WithLabelValues("T1A", OutcomeError)))
}

func TestObserve_ErrorKinds(t *testing.T) {
	m, _ := newTestMetrics(t)

	sumErr := fmt.Errorf("check_sum: %w", &validate.PrevalenceSumError{ID: 3, Sum: 1.2, Tolerance: 1e-3})
	m.Observe("T2A", time.Now(), sumErr)
	m.Observe("nope", time.Now(), &task.UnknownTaskError{Name: "nope"})
	m.Observe("T2A", time.Now(), errors.New("disk on fire"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.EvaluationsTotal.WithLabelValues("T2A", OutcomeError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FailuresTotal.WithLabelValues("PrevalenceSumError")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FailuresTotal.WithLabelValues("UnknownTask")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FailuresTotal.WithLabelValues("Internal")))
}

func TestObserve_HistogramCollected(t *testing.T) {
	m, reg := newTestMetrics(t)

	m.Observe("T1B", time.Now().Add(-5*time.Millisecond), nil)

	families, err := reg.Gather()
	require.NoError(t, err)
	var found bool
	for _, f := range families {
		if f.GetName() == "quantscore_evaluation_seconds" {
			found = true
			require.Len(t, f.GetMetric(), 1)
			assert.Equal(t, uint64(1), f.GetMetric()[0].GetHistogram().GetSampleCount())
		}
	}
	assert.True(t, found, "histogram not registered")
}

func TestObserve_NilReceiver(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() { m.Observe("T1A", time.Now(), nil) })
}

func TestNew_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}

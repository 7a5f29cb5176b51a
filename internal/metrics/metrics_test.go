package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordGeneration(t *testing.T) {
	m, err := New(prometheus.NewRegistry())
	require.NoError(t, err)

	m.RecordGeneration("PREMIUM", OutcomeSuccess)
	m.RecordGeneration("PREMIUM", OutcomeSuccess)
	m.RecordGeneration("BASIC", OutcomeQuota)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.generations.WithLabelValues("PREMIUM", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.generations.WithLabelValues("BASIC", OutcomeQuota)))
}

func TestNewReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := New(reg)
	require.NoError(t, err)
	second, err := New(reg)
	require.NoError(t, err)

	first.RecordReminder(nil)
	second.RecordReminder(errors.New("blocked"))

	assert.Equal(t, 1.0, testutil.ToFloat64(first.remindersSent.WithLabelValues("sent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(first.remindersSent.WithLabelValues("failed")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordGeneration("BASIC", OutcomeSuccess)
		m.ObserveModel("gpt-4o", time.Second)
		m.ObservePlanTasks(12)
		m.RecordHTTP("/api/tasks", 200, time.Millisecond)
		m.RecordReminder(nil)
	})
}

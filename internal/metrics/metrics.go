// Package metrics exports plan generation, HTTP and reminder telemetry to
// Prometheus.
package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "weddingplanner"

// Generation outcomes used as the outcome label.
const (
	OutcomeSuccess    = "success"
	OutcomeQuota      = "quota_exceeded"
	OutcomeUpstream   = "upstream_error"
	OutcomeMalformed  = "malformed_output"
	OutcomePersisting = "persistence_error"
	OutcomeRejected   = "rejected"
)

// Metrics holds the collectors of the service. A nil *Metrics records
// nothing.
type Metrics struct {
	generations   *prometheus.CounterVec
	modelLatency  *prometheus.HistogramVec
	planTasks     prometheus.Histogram
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	remindersSent *prometheus.CounterVec
}

// New creates the collectors and registers them with reg, or with the
// default registerer when reg is nil. Collectors that are already
// registered are reused.
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plan_generations_total",
			Help:      "Plan generation attempts by tier and outcome.",
		}, []string{"tier", "outcome"}),
		modelLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "model_request_duration_seconds",
			Help:      "Latency of completion requests to the language model.",
			Buckets:   []float64{1, 2.5, 5, 10, 20, 30, 45, 60, 90, 120},
		}, []string{"model"}),
		planTasks: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "plan_tasks",
			Help:      "Number of tasks in generated plans.",
			Buckets:   prometheus.LinearBuckets(5, 5, 8),
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		remindersSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_sent_total",
			Help:      "Telegram task reminders by result.",
		}, []string{"result"}),
	}

	var err error
	if m.generations, err = register(reg, m.generations); err != nil {
		return nil, err
	}
	if m.modelLatency, err = register(reg, m.modelLatency); err != nil {
		return nil, err
	}
	if m.planTasks, err = register(reg, m.planTasks); err != nil {
		return nil, err
	}
	if m.httpRequests, err = register(reg, m.httpRequests); err != nil {
		return nil, err
	}
	if m.httpDuration, err = register(reg, m.httpDuration); err != nil {
		return nil, err
	}
	if m.remindersSent, err = register(reg, m.remindersSent); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, fmt.Errorf("register metric: %w", err)
	}
	return c, nil
}

// RecordGeneration counts one generation attempt.
func (m *Metrics) RecordGeneration(tier, outcome string) {
	if m == nil {
		return
	}
	m.generations.WithLabelValues(tier, outcome).Inc()
}

// ObserveModel records the latency of one model call.
func (m *Metrics) ObserveModel(model string, d time.Duration) {
	if m == nil {
		return
	}
	m.modelLatency.WithLabelValues(model).Observe(d.Seconds())
}

// ObservePlanTasks records the size of a stored plan.
func (m *Metrics) ObservePlanTasks(n int) {
	if m == nil {
		return
	}
	m.planTasks.Observe(float64(n))
}

// RecordHTTP records one served request.
func (m *Metrics) RecordHTTP(route string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, fmt.Sprintf("%d", code)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(d.Seconds())
}

// RecordReminder counts one reminder delivery attempt.
func (m *Metrics) RecordReminder(err error) {
	if m == nil {
		return
	}
	result := "sent"
	if err != nil {
		result = "failed"
	}
	m.remindersSent.WithLabelValues(result).Inc()
}

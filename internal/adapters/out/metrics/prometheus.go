// Package metrics exports workflow observations as Prometheus series.
package metrics

import (
	"time"

	"pizzaworkflow/internal/core/domain/model/workflow"
	"pizzaworkflow/internal/core/ports"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pizzaworkflow"

var _ ports.Metrics = (*Prometheus)(nil)

type Prometheus struct {
	transitions   *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	stageErrors   *prometheus.CounterVec
	notifications *prometheus.CounterVec
}

// NewPrometheus registers the workflow collectors with registerer.
func NewPrometheus(registerer prometheus.Registerer) (*Prometheus, error) {
	m := &Prometheus{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Workflow instance state transitions.",
		}, []string{"from", "to"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Time spent in each processing stage.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10},
		}, []string{"stage"}),
		stageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_failures_total",
			Help:      "Processing stages that ended in failure.",
		}, []string{"stage"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Order notifications published, by result.",
		}, []string{"topic", "result"}),
	}

	for _, c := range []prometheus.Collector{m.transitions, m.stageDuration, m.stageErrors, m.notifications} {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Prometheus) TransitionObserved(from, to workflow.State) {
	m.transitions.WithLabelValues(from.String(), to.String()).Inc()
}

func (m *Prometheus) StageObserved(stage string, duration time.Duration, err error) {
	m.stageDuration.WithLabelValues(stage).Observe(duration.Seconds())
	if err != nil {
		m.stageErrors.WithLabelValues(stage).Inc()
	}
}

func (m *Prometheus) NotificationPublished(topic string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.notifications.WithLabelValues(topic, result).Inc()
}

package ports

import (
	"time"

	"pizzaworkflow/internal/core/domain/model/workflow"
)

// Metrics receives workflow observations.
type Metrics interface {
	TransitionObserved(from, to workflow.State)
	StageObserved(stage string, duration time.Duration, err error)
	NotificationPublished(topic string, err error)
}

// NopMetrics discards every observation.
type NopMetrics struct{}

func (NopMetrics) TransitionObserved(workflow.State, workflow.State) {}

func (NopMetrics) StageObserved(string, time.Duration, error) {}

func (NopMetrics) NotificationPublished(string, error) {}

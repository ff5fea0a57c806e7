package ports

import (
	"context"

	"pizzaworkflow/internal/core/domain/model/order"
	"pizzaworkflow/internal/core/domain/model/workflow"
)

// WorkflowEngine is the durable execution surface used by the use cases.
// All operations on one instance are serialized by the engine.
type WorkflowEngine interface {
	// Start creates the instance for the order and begins validation. For an
	// existing instance it returns the current status unchanged.
	Start(ctx context.Context, o order.Order) (workflow.StatusReport, error)

	// RaiseEvent delivers a named external event with a JSON payload.
	// Only workflow.ValidationCompleteEvent is understood.
	RaiseEvent(ctx context.Context, instanceID, eventName string, payload []byte) error

	// SignalValidation delivers a decoded ValidationComplete decision.
	SignalValidation(ctx context.Context, instanceID string, decision workflow.Decision) error

	GetStatus(ctx context.Context, instanceID string) (workflow.StatusReport, error)
	Pause(ctx context.Context, instanceID string) error
	Resume(ctx context.Context, instanceID string) error
	Terminate(ctx context.Context, instanceID, reason string) error
}

// WorkflowMaintenance is driven by background jobs rather than callers.
type WorkflowMaintenance interface {
	// Recover re-drives persisted instances that have no live runner and
	// returns how many were picked up.
	Recover(ctx context.Context) (int, error)

	// ExpireStale ends instances that waited for validation past the
	// configured timeout and returns how many expired.
	ExpireStale(ctx context.Context) (int, error)
}

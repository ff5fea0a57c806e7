package ports

import (
	"context"

	"pizzaworkflow/internal/core/domain/model/workflow"
)

// InstanceRepository persists workflow instances. Instances are never
// deleted; terminal instances stay readable.
type InstanceRepository interface {
	// Get loads an instance by id. Returns *errs.ObjectNotFoundError when
	// no instance exists.
	Get(ctx context.Context, instanceID string) (*workflow.Instance, error)

	// Save creates or replaces the instance record.
	Save(ctx context.Context, instance *workflow.Instance) error

	// ListByState returns every instance currently in one of states.
	// Used by crash recovery and validation expiry.
	ListByState(ctx context.Context, states ...workflow.State) ([]*workflow.Instance, error)
}

package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"pizzaworkflow/internal/core/domain/model/workflow"
	"pizzaworkflow/internal/core/ports"
	"pizzaworkflow/internal/pkg/errs"
)

var _ ports.InstanceRepository = (*InstanceRepository)(nil)

// InstanceRepository keeps snapshots rather than live pointers, so callers
// never share an Instance across goroutines.
type InstanceRepository struct {
	mu        sync.RWMutex
	snapshots map[string]workflow.Snapshot
}

func NewInstanceRepository() *InstanceRepository {
	return &InstanceRepository{snapshots: make(map[string]workflow.Snapshot)}
}

func (r *InstanceRepository) Get(_ context.Context, instanceID string) (*workflow.Instance, error) {
	r.mu.RLock()
	snapshot, ok := r.snapshots[instanceID]
	r.mu.RUnlock()

	if !ok {
		return nil, errs.NewObjectNotFoundError("instance_id", instanceID)
	}
	return workflow.RestoreInstance(snapshot)
}

func (r *InstanceRepository) Save(_ context.Context, instance *workflow.Instance) error {
	if err := instance.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots[instance.ID()] = instance.Snapshot()
	return nil
}

func (r *InstanceRepository) ListByState(_ context.Context, states ...workflow.State) ([]*workflow.Instance, error) {
	r.mu.RLock()
	matched := make([]workflow.Snapshot, 0)
	for _, snapshot := range r.snapshots {
		if slices.Contains(states, snapshot.State) {
			matched = append(matched, snapshot)
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	instances := make([]*workflow.Instance, 0, len(matched))
	for _, snapshot := range matched {
		instance, err := workflow.RestoreInstance(snapshot)
		if err != nil {
			return nil, err
		}
		instances = append(instances, instance)
	}
	return instances, nil
}

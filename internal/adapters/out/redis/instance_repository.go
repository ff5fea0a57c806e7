package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"pizzaworkflow/internal/core/domain/model/workflow"
	"pizzaworkflow/internal/core/ports"
	"pizzaworkflow/internal/pkg/errs"

	goredis "github.com/redis/go-redis/v9"
)

const instanceStore = "workflow_instances"

var _ ports.InstanceRepository = (*InstanceRepository)(nil)

type InstanceRepository struct {
	client goredis.Cmdable
}

func NewInstanceRepository(client goredis.Cmdable) *InstanceRepository {
	return &InstanceRepository{client: client}
}

func (r *InstanceRepository) Get(ctx context.Context, instanceID string) (*workflow.Instance, error) {
	data, err := r.client.Get(ctx, instanceKey(instanceID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, errs.NewObjectNotFoundError("instance_id", instanceID)
	}
	if err != nil {
		return nil, errs.NewStoreUnavailableError(instanceStore, instanceID, err)
	}
	return decodeInstance(data)
}

// Save writes the snapshot and moves the id into the Set of its current
// state in one transaction.
func (r *InstanceRepository) Save(ctx context.Context, instance *workflow.Instance) error {
	if err := instance.Validate(); err != nil {
		return err
	}
	snapshot := instance.Snapshot()
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode instance %s: %w", snapshot.ID, err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, instanceKey(snapshot.ID), data, 0)
	for _, state := range workflow.AllStates() {
		if state != snapshot.State {
			pipe.SRem(ctx, stateIndexKey(state.String()), snapshot.ID)
		}
	}
	pipe.SAdd(ctx, stateIndexKey(snapshot.State.String()), snapshot.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return errs.NewStoreUnavailableError(instanceStore, snapshot.ID, err)
	}
	return nil
}

func (r *InstanceRepository) ListByState(ctx context.Context, states ...workflow.State) ([]*workflow.Instance, error) {
	var ids []string
	for _, state := range states {
		members, err := r.client.SMembers(ctx, stateIndexKey(state.String())).Result()
		if err != nil {
			return nil, errs.NewStoreUnavailableError(instanceStore, stateIndexKey(state.String()), err)
		}
		ids = append(ids, members...)
	}
	sort.Strings(ids)

	instances := make([]*workflow.Instance, 0, len(ids))
	for _, id := range ids {
		instance, err := r.Get(ctx, id)
		if errors.Is(err, errs.ErrObjectNotFound) {
			// index entry outlived its snapshot
			continue
		}
		if err != nil {
			return nil, err
		}
		instances = append(instances, instance)
	}
	return instances, nil
}

func decodeInstance(data []byte) (*workflow.Instance, error) {
	var snapshot workflow.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, errs.NewValueIsInvalidErrorWithCause("instance", err)
	}
	return workflow.RestoreInstance(snapshot)
}

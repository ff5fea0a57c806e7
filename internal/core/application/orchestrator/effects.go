package orchestrator

import (
	"context"

	"pizzaworkflow/internal/core/domain/model/order"
	"pizzaworkflow/internal/core/domain/model/workflow"
)

// commit writes the order-side effects of entering the instance's current
// state, saves the instance and starts a runner when the state needs one.
// Callers hold the instance lock. recorded is the history length before the
// transition.
func (e *Engine) commit(ctx context.Context, instance *workflow.Instance, before workflow.State, recorded int) error {
	if err := e.applyEffects(ctx, instance, before); err != nil {
		return err
	}
	if err := e.instances.Save(ctx, instance); err != nil {
		return err
	}

	history := instance.History()
	for _, t := range history[min(recorded, len(history)):] {
		if t.From != t.To {
			e.metrics.TransitionObserved(t.From, t.To)
			e.logger.InfoContext(ctx, "transition",
				"instance_id", instance.ID(),
				"from", t.From.String(),
				"to", t.To.String(),
				"reason", t.Reason,
			)
		}
	}

	switch instance.State() {
	case workflow.Validating, workflow.Processing:
		e.spawn(instance.ID())
	}
	return nil
}

func (e *Engine) applyEffects(ctx context.Context, instance *workflow.Instance, before workflow.State) error {
	after := instance.State()
	if after == before {
		return nil
	}

	switch after {
	case workflow.Rejected:
		return e.recordStatus(ctx, instance, order.Rejected, true)
	case workflow.Terminated:
		return e.recordStatus(ctx, instance, order.Terminated, true)
	case workflow.Expired:
		return e.recordStatus(ctx, instance, order.Expired, true)
	case workflow.Paused:
		return e.recordStatus(ctx, instance, order.Paused, false)
	case workflow.Validating, workflow.WaitingForValidation, workflow.Processing:
		if before == workflow.Paused {
			return e.recordStatus(ctx, instance, e.resumedStatus(instance), false)
		}
	}
	return nil
}

// resumedStatus is the status of the last completed stage, or created when
// no stage has run yet.
func (e *Engine) resumedStatus(instance *workflow.Instance) order.Status {
	if done := instance.StageIndex(); done > 0 {
		return e.pipeline.Stages()[done-1].Name
	}
	return order.Created
}

func (e *Engine) recordStatus(ctx context.Context, instance *workflow.Instance, status order.Status, publish bool) error {
	stored, err := e.orders.Upsert(ctx, instance.Order().StatusUpdate(status))
	if err != nil {
		return err
	}
	if !publish {
		return nil
	}
	return e.publisher.Publish(ctx, stored)
}

// recordFailure stores and publishes a failed order once.
func (e *Engine) recordFailure(ctx context.Context, instance *workflow.Instance, reason string) error {
	stored, err := e.orders.Upsert(ctx, instance.Order().StatusUpdate(order.Failed).WithFailure(reason))
	if err != nil {
		return err
	}
	return e.publisher.Publish(ctx, stored)
}

package orchestrator

import (
	"context"
	"errors"

	"pizzaworkflow/internal/core/application/pipeline"
	"pizzaworkflow/internal/core/domain/model/order"
	"pizzaworkflow/internal/core/domain/model/workflow"
	"pizzaworkflow/internal/pkg/errs"
)

// runner is the goroutine driving one instance through Validating and
// Processing. At most one runner is registered per instance; it only
// unregisters while holding the instance lock.
type runner struct {
	cancel context.CancelFunc
}

func (e *Engine) spawn(instanceID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}
	if _, running := e.runners[instanceID]; running {
		return
	}

	ctx, cancel := context.WithCancel(e.baseCtx)
	r := &runner{cancel: cancel}
	e.runners[instanceID] = r
	e.inflight.Add(1)
	go e.drive(ctx, instanceID, r)
}

// unregister must be called with the instance lock held.
func (e *Engine) unregister(instanceID string, r *runner) {
	e.mu.Lock()
	if e.runners[instanceID] == r {
		delete(e.runners, instanceID)
	}
	e.mu.Unlock()
	r.cancel()
}

func (e *Engine) cancelRunner(instanceID string) {
	e.mu.Lock()
	r, ok := e.runners[instanceID]
	e.mu.Unlock()
	if ok {
		r.cancel()
	}
}

func (e *Engine) isClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

func (e *Engine) hasRunner(instanceID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.runners[instanceID]
	return ok
}

func (e *Engine) drive(ctx context.Context, instanceID string, r *runner) {
	defer e.inflight.Done()

	for {
		instance, ok := e.next(ctx, instanceID, r)
		if !ok {
			return
		}

		var err error
		switch instance.State() {
		case workflow.Validating:
			err = e.runValidation(ctx, instance)
		case workflow.Processing:
			err = e.runPipeline(ctx, instance)
		}
		if err != nil {
			e.logger.ErrorContext(ctx, "runner stopped", "instance_id", instanceID, "error", err)
			unlock := e.locks.Lock(instanceID)
			e.unregister(instanceID, r)
			unlock()
			return
		}
	}
}

// next decides under the lock whether the runner has more work. It returns
// false after unregistering the runner.
func (e *Engine) next(ctx context.Context, instanceID string, r *runner) (*workflow.Instance, bool) {
	unlock := e.locks.Lock(instanceID)
	defer unlock()

	persistCtx := context.WithoutCancel(ctx)
	instance, err := e.instances.Get(persistCtx, instanceID)
	if err != nil {
		e.logger.ErrorContext(ctx, "loading instance", "instance_id", instanceID, "error", err)
		e.unregister(instanceID, r)
		return nil, false
	}

	if instance.State() == workflow.Terminated {
		e.reassertTerminated(persistCtx, instance)
	}

	switch {
	case ctx.Err() != nil:
	case instance.State() == workflow.Validating, instance.State() == workflow.Processing:
		return instance, true
	}
	e.unregister(instanceID, r)
	return nil, false
}

func (e *Engine) runValidation(ctx context.Context, snapshot *workflow.Instance) error {
	activityErr := e.validation(ctx, snapshot.Order())

	instanceID := snapshot.ID()
	unlock := e.locks.Lock(instanceID)
	defer unlock()

	persistCtx := context.WithoutCancel(ctx)
	instance, err := e.instances.Get(persistCtx, instanceID)
	if err != nil {
		return err
	}
	before := instance.State()
	recorded := len(instance.History())
	now := e.now()

	if activityErr != nil {
		if ctx.Err() != nil || instance.State().IsTerminal() {
			return nil
		}
		reason := "validation activity: " + activityErr.Error()
		if err = instance.Fail(reason, now); err != nil {
			return nil
		}
		if err = e.recordFailure(persistCtx, instance, reason); err != nil {
			e.logger.ErrorContext(ctx, "recording failed order", "instance_id", instanceID, "error", err)
		}
		return e.commit(persistCtx, instance, before, recorded)
	}

	if err = instance.ValidationRequested(now); err != nil {
		// terminated while the activity ran
		return nil
	}
	return e.commit(persistCtx, instance, before, recorded)
}

func (e *Engine) runPipeline(ctx context.Context, snapshot *workflow.Instance) error {
	instanceID := snapshot.ID()
	outcome, err := e.pipeline.Run(ctx, snapshot.Order(), snapshot.StageIndex(), e.gate(instanceID))
	if err != nil {
		return err
	}
	if outcome.Result == pipeline.Halted {
		return nil
	}

	unlock := e.locks.Lock(instanceID)
	defer unlock()

	persistCtx := context.WithoutCancel(ctx)
	instance, err := e.instances.Get(persistCtx, instanceID)
	if err != nil {
		return err
	}
	before := instance.State()
	recorded := len(instance.History())

	switch outcome.Result {
	case pipeline.Completed:
		// refused when paused after the last stage; Resume re-drives it
		if err = instance.Confirm(e.now()); err != nil {
			return nil
		}
	case pipeline.Failed:
		if err = instance.Fail(outcome.Failure, e.now()); err != nil {
			return nil
		}
	}
	return e.commit(persistCtx, instance, before, recorded)
}

// gate records each completed stage and stops the pipeline when the
// instance was paused or ended meanwhile.
func (e *Engine) gate(instanceID string) pipeline.Gate {
	return func(ctx context.Context, index int) (bool, error) {
		unlock := e.locks.Lock(instanceID)
		defer unlock()

		persistCtx := context.WithoutCancel(ctx)
		instance, err := e.instances.Get(persistCtx, instanceID)
		if err != nil {
			return false, err
		}
		if instance.State().IsTerminal() {
			return false, nil
		}

		if err = instance.CompleteStage(index, e.now()); err != nil {
			return false, err
		}
		if err = e.instances.Save(persistCtx, instance); err != nil {
			return false, err
		}

		if instance.State() == workflow.Paused {
			e.reassert(persistCtx, instance, order.Paused)
			return false, nil
		}
		return ctx.Err() == nil, nil
	}
}

// reassertTerminated repairs the order after a stage that was in flight
// during Terminate overwrote its status. The terminated document is
// published again so subscribers end on it too.
func (e *Engine) reassertTerminated(ctx context.Context, instance *workflow.Instance) {
	current, err := e.orders.Get(ctx, instance.OrderID())
	switch {
	case err == nil && current.Status() == order.Terminated:
		return
	case err != nil && !errors.Is(err, errs.ErrObjectNotFound):
		e.logger.ErrorContext(ctx, "loading order", "instance_id", instance.ID(), "error", err)
		return
	}

	if err = e.recordStatus(ctx, instance, order.Terminated, true); err != nil {
		e.logger.ErrorContext(ctx, "reasserting terminated order", "instance_id", instance.ID(), "error", err)
	}
}

// reassert rewrites a status that a concurrently running stage overwrote.
func (e *Engine) reassert(ctx context.Context, instance *workflow.Instance, status order.Status) {
	if err := e.recordStatus(ctx, instance, status, false); err != nil && !errors.Is(err, context.Canceled) {
		e.logger.ErrorContext(ctx, "reasserting order status", "instance_id", instance.ID(), "status", status.String(), "error", err)
	}
}

package orchestrator

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"pizzaworkflow/internal/core/domain/model/workflow"
	"pizzaworkflow/internal/pkg/errs"

	"golang.org/x/sync/errgroup"
)

// Recover starts runners for persisted instances that are Validating or
// Processing but have no live runner, for example after a restart. A
// recovered pipeline continues at the first stage that did not complete.
func (e *Engine) Recover(ctx context.Context) (int, error) {
	instances, err := e.instances.ListByState(ctx, workflow.Validating, workflow.Processing)
	if err != nil {
		return 0, err
	}

	recovered := 0
	for _, instance := range instances {
		if e.hasRunner(instance.ID()) {
			continue
		}
		e.spawn(instance.ID())
		recovered++
		e.logger.InfoContext(ctx, "instance recovered",
			"instance_id", instance.ID(),
			"state", instance.State().String(),
			"stage", instance.StageIndex(),
		)
	}
	return recovered, nil
}

// ExpireStale moves instances that waited for their decision longer than
// the validation timeout to Expired. It does nothing when no timeout is
// configured.
func (e *Engine) ExpireStale(ctx context.Context) (int, error) {
	if e.validationTimeout <= 0 {
		return 0, nil
	}

	waiting, err := e.instances.ListByState(ctx, workflow.WaitingForValidation)
	if err != nil {
		return 0, err
	}

	var expired atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.expiryWorkers)
	for _, candidate := range waiting {
		deadline, ok := candidate.ValidationDeadline(e.validationTimeout)
		if !ok || e.now().Before(deadline) {
			continue
		}

		instanceID := candidate.ID()
		g.Go(func() error {
			err := e.transition(gctx, instanceID, func(instance *workflow.Instance, now time.Time) error {
				current, ok := instance.ValidationDeadline(e.validationTimeout)
				if !ok || now.Before(current) {
					return errs.NewInvalidTransitionError("expire", instance.State().String())
				}
				return instance.Expire(now)
			})
			switch {
			case err == nil:
				expired.Add(1)
				return nil
			case errors.Is(err, errs.ErrInvalidTransition):
				// decided or ended since it was listed
				return nil
			default:
				return err
			}
		})
	}

	err = g.Wait()
	return int(expired.Load()), err
}

// Shutdown stops every runner and waits for them to exit. Instances keep
// their persisted state and are picked up by Recover on the next start.
func (e *Engine) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
	e.stopAll()

	done := make(chan struct{})
	go func() {
		e.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		e.logger.InfoContext(ctx, "orchestrator stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Package orchestrator is the durable workflow engine for pizza orders.
//
// Every transition loads the instance from the repository, applies one pure
// method of workflow.Instance, performs the order-side effects of the new
// state and saves the instance, all under a per-instance lock. Long-running
// work (the validation activity and the processing pipeline) happens on a
// runner goroutine outside the lock; it re-enters the lock at every stage
// boundary, which is where Pause and Terminate take effect.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"pizzaworkflow/internal/core/application/notification"
	"pizzaworkflow/internal/core/application/pipeline"
	"pizzaworkflow/internal/core/domain/model/order"
	"pizzaworkflow/internal/core/domain/model/workflow"
	"pizzaworkflow/internal/core/ports"
	"pizzaworkflow/internal/pkg/errs"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// WorkflowName identifies the pizza order workflow in traces and logs.
const WorkflowName = "pizza_workflow"

var ErrEngineIsShutDown = errors.New("workflow engine is shut down")

// OrderStore is the part of the order store the engine writes through.
type OrderStore interface {
	Upsert(ctx context.Context, update order.Order) (order.Order, error)
	Get(ctx context.Context, orderID string) (order.Order, error)
}

type Dependencies struct {
	Instances ports.InstanceRepository
	Orders    OrderStore
	Publisher notification.Publisher
	Pipeline  *pipeline.Pipeline
	// Validation defaults to nothing when nil; wire RecordPendingValidation
	// to persist the validation record.
	Validation ValidationActivity
}

type Engine struct {
	instances  ports.InstanceRepository
	orders     OrderStore
	publisher  notification.Publisher
	pipeline   *pipeline.Pipeline
	validation ValidationActivity

	validationTimeout time.Duration
	expiryWorkers     int
	now               func() time.Time
	metrics           ports.Metrics
	tracer            trace.Tracer
	logger            *slog.Logger

	locks *keyedMutex

	mu       sync.Mutex
	runners  map[string]*runner
	closed   bool
	baseCtx  context.Context
	stopAll  context.CancelFunc
	inflight sync.WaitGroup
}

var (
	_ ports.WorkflowEngine      = (*Engine)(nil)
	_ ports.WorkflowMaintenance = (*Engine)(nil)
)

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithValidationTimeout bounds the wait for ValidationComplete. Zero keeps
// the wait unbounded.
func WithValidationTimeout(timeout time.Duration) Option {
	return func(e *Engine) { e.validationTimeout = timeout }
}

func WithMetrics(metrics ports.Metrics) Option {
	return func(e *Engine) { e.metrics = metrics }
}

func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) { e.tracer = tracer }
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

func New(deps Dependencies, opts ...Option) (*Engine, error) {
	if deps.Instances == nil {
		return nil, errs.NewValueIsRequiredError("instances")
	}
	if deps.Orders == nil {
		return nil, errs.NewValueIsRequiredError("orders")
	}
	if deps.Publisher == nil {
		return nil, errs.NewValueIsRequiredError("publisher")
	}
	if deps.Pipeline == nil {
		return nil, errs.NewValueIsRequiredError("pipeline")
	}

	validation := deps.Validation
	if validation == nil {
		validation = func(context.Context, order.Order) error { return nil }
	}

	baseCtx, stopAll := context.WithCancel(context.Background())
	e := &Engine{
		instances:     deps.Instances,
		orders:        deps.Orders,
		publisher:     deps.Publisher,
		pipeline:      deps.Pipeline,
		validation:    validation,
		expiryWorkers: 8,
		now:           func() time.Time { return time.Now().UTC() },
		metrics:       ports.NopMetrics{},
		tracer:        otel.Tracer("pizzaworkflow/orchestrator"),
		logger:        slog.Default(),
		locks:         newKeyedMutex(),
		runners:       make(map[string]*runner),
		baseCtx:       baseCtx,
		stopAll:       stopAll,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component", "orchestrator", "workflow", WorkflowName)
	return e, nil
}

// Start creates the instance for o and begins validation. Starting an order
// that already has an instance returns that instance's status unchanged.
func (e *Engine) Start(ctx context.Context, o order.Order) (report workflow.StatusReport, err error) {
	if err = o.Validate(); err != nil {
		return workflow.StatusReport{}, err
	}
	if e.isClosed() {
		return workflow.StatusReport{}, ErrEngineIsShutDown
	}
	id := workflow.InstanceID(o.ID())
	ctx, end := e.span(ctx, "start", id)
	defer func() { end(err) }()

	unlock := e.locks.Lock(id)
	defer unlock()

	existing, err := e.instances.Get(ctx, id)
	switch {
	case err == nil:
		e.logger.InfoContext(ctx, "instance already started", "instance_id", id, "state", existing.State().String())
		return existing.Report(), nil
	case !errors.Is(err, errs.ErrObjectNotFound):
		return workflow.StatusReport{}, err
	}

	now := e.now()
	instance, err := workflow.NewInstance(o, e.pipeline.StageCount(), now)
	if err != nil {
		return workflow.StatusReport{}, err
	}
	if err = instance.Begin(now); err != nil {
		return workflow.StatusReport{}, err
	}

	if _, err = e.orders.Upsert(ctx, o.WithStatus(order.Created)); err != nil {
		return workflow.StatusReport{}, err
	}
	if err = e.commit(ctx, instance, workflow.NotStarted, 0); err != nil {
		return workflow.StatusReport{}, err
	}

	e.logger.InfoContext(ctx, "instance started", "instance_id", id, "order_id", o.ID())
	return instance.Report(), nil
}

// RaiseEvent decodes a named event and delivers it. Only
// ValidationComplete is known.
func (e *Engine) RaiseEvent(ctx context.Context, instanceID, eventName string, payload []byte) error {
	if eventName != workflow.ValidationCompleteEvent {
		return errs.NewValueIsInvalidErrorWithCause("event_name", fmt.Errorf("unknown event %q", eventName))
	}

	orderID, ok := workflow.OrderIDFromInstance(instanceID)
	if !ok {
		return errs.NewValueIsInvalidErrorWithCause("instance_id",
			fmt.Errorf("%q is not a %s instance", instanceID, WorkflowName))
	}

	var decision workflow.Decision
	if err := json.Unmarshal(payload, &decision); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("payload", err)
	}
	// the recorded decision always names its order
	if decision.OrderID == "" {
		decision.OrderID = orderID
	}
	return e.SignalValidation(ctx, instanceID, decision)
}

// SignalValidation applies a decision to a waiting instance, or buffers it
// while the instance has not reached WaitingForValidation yet.
func (e *Engine) SignalValidation(ctx context.Context, instanceID string, decision workflow.Decision) (err error) {
	ctx, end := e.span(ctx, "signal_validation", instanceID)
	defer func() { end(err) }()

	return e.transition(ctx, instanceID, func(instance *workflow.Instance, now time.Time) error {
		applied, deliverErr := instance.Deliver(decision, now)
		if deliverErr == nil && !applied {
			e.logger.InfoContext(ctx, "decision buffered", "instance_id", instanceID, "state", instance.State().String())
		}
		return deliverErr
	})
}

func (e *Engine) GetStatus(ctx context.Context, instanceID string) (workflow.StatusReport, error) {
	if instanceID == "" {
		return workflow.StatusReport{}, errs.NewValueIsRequiredError("instance_id")
	}

	instance, err := e.instances.Get(ctx, instanceID)
	if err != nil {
		return workflow.StatusReport{}, err
	}
	return instance.Report(), nil
}

// Pause takes effect at once for the instance record; a stage already in
// flight finishes and is counted.
func (e *Engine) Pause(ctx context.Context, instanceID string) (err error) {
	ctx, end := e.span(ctx, "pause", instanceID)
	defer func() { end(err) }()

	return e.transition(ctx, instanceID, func(instance *workflow.Instance, now time.Time) error {
		return instance.Pause(now)
	})
}

// Resume continues a paused instance at the first stage that has not
// completed.
func (e *Engine) Resume(ctx context.Context, instanceID string) (err error) {
	ctx, end := e.span(ctx, "resume", instanceID)
	defer func() { end(err) }()

	return e.transition(ctx, instanceID, func(instance *workflow.Instance, now time.Time) error {
		return instance.Resume(now)
	})
}

// Terminate ends the instance and cancels its runner. Stored orders and
// published notifications are left as they are.
func (e *Engine) Terminate(ctx context.Context, instanceID, reason string) (err error) {
	ctx, end := e.span(ctx, "terminate", instanceID)
	defer func() { end(err) }()

	return e.transition(ctx, instanceID, func(instance *workflow.Instance, now time.Time) error {
		if terminateErr := instance.Terminate(reason, now); terminateErr != nil {
			return terminateErr
		}
		e.cancelRunner(instanceID)
		return nil
	})
}

// transition runs apply on the stored instance under its lock and commits
// the result. On error nothing is saved.
func (e *Engine) transition(
	ctx context.Context,
	instanceID string,
	apply func(instance *workflow.Instance, now time.Time) error,
) error {
	if instanceID == "" {
		return errs.NewValueIsRequiredError("instance_id")
	}

	unlock := e.locks.Lock(instanceID)
	defer unlock()

	instance, err := e.instances.Get(ctx, instanceID)
	if err != nil {
		return err
	}

	before := instance.State()
	recorded := len(instance.History())
	if err = apply(instance, e.now()); err != nil {
		return err
	}
	return e.commit(ctx, instance, before, recorded)
}

func (e *Engine) span(ctx context.Context, operation, instanceID string) (context.Context, func(error)) {
	ctx, span := e.tracer.Start(ctx, "orchestrator."+operation, trace.WithAttributes(
		attribute.String("workflow", WorkflowName),
		attribute.String("instance_id", instanceID),
	))
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

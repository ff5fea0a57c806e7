// Package pipeline runs the ordered preparation stages of a validated order.
// Each stage stores the new status, publishes the order document and then
// performs its work. A failing stage marks the order failed, publishes it
// once and stops; nothing is retried or compensated.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"pizzaworkflow/internal/core/application/notification"
	"pizzaworkflow/internal/core/domain/model/order"
	"pizzaworkflow/internal/core/ports"
	"pizzaworkflow/internal/pkg/errs"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Upserter is the part of the order store the pipeline writes through.
type Upserter interface {
	Upsert(ctx context.Context, update order.Order) (order.Order, error)
}

// Gate is consulted after stage index completes. Returning false halts the
// run without failing it; an error aborts the run and is returned as is.
type Gate func(ctx context.Context, index int) (proceed bool, err error)

type Result int

const (
	// Completed means every stage ran.
	Completed Result = iota
	// Failed means a stage failed and the order was marked failed.
	Failed
	// Halted means the gate stopped the run or ctx was cancelled.
	Halted
)

func (r Result) String() string {
	switch r {
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	case Halted:
		return "halted"
	default:
		return fmt.Sprintf("Result(%d)", int(r))
	}
}

type Outcome struct {
	Result Result
	// Order is the last document written by the run.
	Order order.Order
	// Next is the index of the first stage that did not complete.
	Next    int
	Failure string
}

type Pipeline struct {
	store     Upserter
	publisher notification.Publisher
	stages    []Stage
	work      Work
	metrics   ports.Metrics
	tracer    trace.Tracer
	logger    *slog.Logger
}

type Option func(*Pipeline)

// WithWork replaces the stage work (Sleep by default).
func WithWork(work Work) Option {
	return func(p *Pipeline) { p.work = work }
}

func WithMetrics(metrics ports.Metrics) Option {
	return func(p *Pipeline) { p.metrics = metrics }
}

func WithTracer(tracer trace.Tracer) Option {
	return func(p *Pipeline) { p.tracer = tracer }
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

func New(store Upserter, publisher notification.Publisher, stages []Stage, opts ...Option) (*Pipeline, error) {
	if store == nil {
		return nil, errs.NewValueIsRequiredError("store")
	}
	if publisher == nil {
		return nil, errs.NewValueIsRequiredError("publisher")
	}
	if len(stages) == 0 {
		return nil, errs.NewValueIsRequiredError("stages")
	}

	p := &Pipeline{
		store:     store,
		publisher: publisher,
		stages:    append([]Stage(nil), stages...),
		work:      Sleep,
		metrics:   ports.NopMetrics{},
		tracer:    otel.Tracer("pizzaworkflow/pipeline"),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("component", "pipeline")
	return p, nil
}

func (p *Pipeline) StageCount() int {
	return len(p.stages)
}

// Stages returns a copy of the configured stage list.
func (p *Pipeline) Stages() []Stage {
	return append([]Stage(nil), p.stages...)
}

// Run executes stages from index from onwards. Stages before from are
// assumed done and are neither stored nor published again.
func (p *Pipeline) Run(ctx context.Context, o order.Order, from int, gate Gate) (Outcome, error) {
	if err := o.Validate(); err != nil {
		return Outcome{}, err
	}
	if from < 0 || from > len(p.stages) {
		return Outcome{}, errs.NewValueIsInvalidErrorWithCause(
			"from",
			fmt.Errorf("stage %d outside [0, %d]", from, len(p.stages)),
		)
	}

	current := o
	for i := from; i < len(p.stages); i++ {
		if ctx.Err() != nil {
			return Outcome{Result: Halted, Order: current, Next: i}, nil
		}

		stored, err := p.runStage(ctx, i, current)
		if err != nil {
			if ctx.Err() != nil {
				return Outcome{Result: Halted, Order: stored, Next: i}, nil
			}
			return p.fail(ctx, stored, i, err), nil
		}
		current = stored

		if gate == nil {
			continue
		}
		proceed, err := gate(ctx, i)
		if err != nil {
			return Outcome{Result: Halted, Order: current, Next: i + 1}, err
		}
		if !proceed {
			return Outcome{Result: Halted, Order: current, Next: i + 1}, nil
		}
	}

	return Outcome{Result: Completed, Order: current, Next: len(p.stages)}, nil
}

func (p *Pipeline) runStage(ctx context.Context, index int, current order.Order) (order.Order, error) {
	stage := p.stages[index]
	ctx, span := p.tracer.Start(ctx, "pipeline.stage", trace.WithAttributes(
		attribute.String("order_id", current.ID()),
		attribute.String("stage", stage.Name.String()),
		attribute.Int("stage_index", index),
	))
	defer span.End()

	started := time.Now()
	stored, err := p.executeStage(ctx, stage, current)
	p.metrics.StageObserved(stage.Name.String(), time.Since(started), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return stored, err
	}

	p.logger.InfoContext(ctx, "stage completed", "order_id", current.ID(), "stage", stage.Name.String(), "stage_index", index)
	return stored, nil
}

func (p *Pipeline) executeStage(ctx context.Context, stage Stage, current order.Order) (order.Order, error) {
	next := current.WithStatus(stage.Name)

	stored, err := p.store.Upsert(ctx, next)
	if err != nil {
		return next, err
	}
	// a stage cancelled during its write must not announce its status
	// after the instance ended
	if err = ctx.Err(); err != nil {
		return stored, err
	}
	if err = p.publisher.Publish(ctx, stored); err != nil {
		return stored, err
	}
	if err = p.work(ctx, stage, stored); err != nil {
		return stored, err
	}
	return stored, nil
}

// fail records the failure on the order and publishes it once. Errors while
// recording are logged only: the failure itself is the outcome.
func (p *Pipeline) fail(ctx context.Context, current order.Order, index int, cause error) Outcome {
	reason := fmt.Sprintf("stage %s: %s", p.stages[index].Name, cause)
	failed := current.WithFailure(reason)

	if stored, err := p.store.Upsert(ctx, failed); err != nil {
		p.logger.ErrorContext(ctx, "recording failed order", "order_id", current.ID(), "error", err)
	} else {
		failed = stored
	}
	if err := p.publisher.Publish(ctx, failed); err != nil && !errors.Is(err, context.Canceled) {
		p.logger.ErrorContext(ctx, "publishing failed order", "order_id", current.ID(), "error", err)
	}

	p.logger.WarnContext(ctx, "stage failed", "order_id", current.ID(), "stage_index", index, "error", cause)
	return Outcome{Result: Failed, Order: failed, Next: index, Failure: reason}
}

package pipeline

import (
	"context"
	"time"

	"pizzaworkflow/internal/core/domain/model/order"
)

// Stage is one preparation step. Its name is the order status written when
// the stage starts.
type Stage struct {
	Name     order.Status
	Duration time.Duration
}

// Nominal stage durations before scaling.
const (
	ValidatingDuration = time.Second
	ProcessingDuration = 2 * time.Second
	ConfirmedDuration  = time.Second
)

// DefaultStages returns validating, processing and confirmed with their
// nominal durations multiplied by scale. A scale of 0 makes every stage
// instantaneous.
func DefaultStages(scale float64) []Stage {
	if scale < 0 {
		scale = 0
	}
	scaled := func(d time.Duration) time.Duration {
		return time.Duration(float64(d) * scale)
	}

	return []Stage{
		{Name: order.Validating, Duration: scaled(ValidatingDuration)},
		{Name: order.Processing, Duration: scaled(ProcessingDuration)},
		{Name: order.Confirmed, Duration: scaled(ConfirmedDuration)},
	}
}

// Work performs a stage after its status has been stored and published.
type Work func(ctx context.Context, stage Stage, o order.Order) error

// Sleep is the default Work: it blocks for the stage duration or until ctx
// is done.
func Sleep(ctx context.Context, stage Stage, _ order.Order) error {
	if stage.Duration <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(stage.Duration)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Package notification publishes the current order document on every
// stage change.
package notification

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"pizzaworkflow/internal/core/domain/model/order"
	"pizzaworkflow/internal/core/ports"
	"pizzaworkflow/internal/pkg/errs"
)

// Publisher is what the pipeline and orchestrator need from a Notifier.
type Publisher interface {
	Publish(ctx context.Context, o order.Order) error
}

type Notifier struct {
	bus     ports.NotificationBus
	topic   string
	metrics ports.Metrics
	logger  *slog.Logger
}

var _ Publisher = (*Notifier)(nil)

func NewNotifier(bus ports.NotificationBus, topic string, metrics ports.Metrics, logger *slog.Logger) (*Notifier, error) {
	if bus == nil {
		return nil, errs.NewValueIsRequiredError("bus")
	}
	if topic == "" {
		return nil, errs.NewValueIsRequiredError("topic")
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Notifier{
		bus:     bus,
		topic:   topic,
		metrics: metrics,
		logger:  logger.With("component", "notifier"),
	}, nil
}

// Publish sends the full order document keyed by order id.
func (n *Notifier) Publish(ctx context.Context, o order.Order) error {
	if err := o.Validate(); err != nil {
		return err
	}

	payload, err := json.Marshal(o)
	if err != nil {
		return errs.NewValueIsInvalidErrorWithCause("order", err)
	}

	err = n.bus.Publish(ctx, n.topic, o.ID(), payload)
	n.metrics.NotificationPublished(n.topic, err)
	if err != nil {
		n.logger.ErrorContext(ctx, "publish failed", "order_id", o.ID(), "status", o.Status().String(), "error", err)
		if errors.Is(err, errs.ErrBusUnavailable) {
			return err
		}
		return errs.NewBusUnavailableError(n.topic, err)
	}

	n.logger.InfoContext(ctx, "order published", "order_id", o.ID(), "status", o.Status().String())
	return nil
}

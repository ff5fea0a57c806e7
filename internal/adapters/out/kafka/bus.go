// Package kafka publishes order notifications to Kafka topics.
package kafka

import (
	"context"
	"log/slog"

	"pizzaworkflow/internal/core/ports"
	"pizzaworkflow/internal/pkg/errs"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
)

var _ ports.NotificationBus = (*Bus)(nil)

// MessageWriter is the part of *kafka.Writer the bus needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type Bus struct {
	writer MessageWriter
	logger *slog.Logger
}

// NewWriter builds a writer with no fixed topic so every message names its
// own. Messages with the same key land on the same partition.
func NewWriter(brokers []string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
}

func NewBus(writer MessageWriter, logger *slog.Logger) *Bus {
	return &Bus{writer: writer, logger: logger.With("component", "KafkaBus")}
}

func (b *Bus) Publish(ctx context.Context, topic, key string, payload []byte) error {
	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: payload,
	}
	carrier := headerCarrier(msg.Headers)
	otel.GetTextMapPropagator().Inject(ctx, &carrier)
	msg.Headers = carrier

	if err := b.writer.WriteMessages(ctx, msg); err != nil {
		b.logger.ErrorContext(ctx, "Failed to write message", "topic", topic, "key", key, "error", err)
		return errs.NewBusUnavailableError(topic, err)
	}
	return nil
}

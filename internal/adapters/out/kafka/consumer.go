package kafka

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
)

// MessageReader is the part of *kafka.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// HandleFunc processes one message payload.
type HandleFunc func(ctx context.Context, payload []byte) error

// Consumer feeds messages of one topic to a HandleFunc and commits each
// offset after the handler returns. A failing handler is logged and the
// message skipped; order documents merge idempotently, so the next update
// for the same order repairs the projection.
type Consumer struct {
	reader     MessageReader
	handle     HandleFunc
	retryDelay time.Duration
	logger     *slog.Logger
}

func NewReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: groupID,
	})
}

func NewConsumer(reader MessageReader, handle HandleFunc, logger *slog.Logger) *Consumer {
	return &Consumer{
		reader:     reader,
		handle:     handle,
		retryDelay: time.Second,
		logger:     logger.With("component", "KafkaConsumer"),
	}
}

// Run consumes until ctx is cancelled, then closes the reader.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.InfoContext(ctx, "Consumer started")
	defer func() {
		if err := c.reader.Close(); err != nil {
			c.logger.Error("Failed to close reader", "error", err)
		}
		c.logger.Info("Consumer stopped")
	}()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			c.logger.ErrorContext(ctx, "Failed to fetch message", "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(c.retryDelay):
			}
			continue
		}

		carrier := headerCarrier(msg.Headers)
		msgCtx := otel.GetTextMapPropagator().Extract(ctx, &carrier)
		if err := c.handle(msgCtx, msg.Value); err != nil {
			c.logger.ErrorContext(msgCtx, "Failed to handle message",
				"topic", msg.Topic, "key", string(msg.Key), "offset", msg.Offset, "error", err)
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.logger.ErrorContext(ctx, "Failed to commit message", "offset", msg.Offset, "error", err)
		}
	}
}

package memory

import (
	"bytes"
	"context"
	"sync"
	"time"

	"pizzaworkflow/internal/core/ports"

	"github.com/google/uuid"
)

var _ ports.NotificationBus = (*Bus)(nil)

// Message is one published notification.
type Message struct {
	ID          uuid.UUID
	Topic       string
	Key         string
	Payload     []byte
	PublishedAt time.Time
}

// Handler consumes messages delivered to a subscription.
type Handler func(ctx context.Context, msg Message) error

// Bus is an in-process pub/sub. Publish delivers to subscribers
// synchronously and records every message for inspection.
type Bus struct {
	mu          sync.RWMutex
	messages    []Message
	subscribers map[string][]Handler
}

func NewBus() *Bus {
	return &Bus{subscribers: make(map[string][]Handler)}
}

// Subscribe registers handler for topic. Handler errors are returned to the
// publisher.
func (b *Bus) Subscribe(topic string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[topic] = append(b.subscribers[topic], handler)
}

func (b *Bus) Publish(ctx context.Context, topic, key string, payload []byte) error {
	msg := Message{
		ID:          uuid.New(),
		Topic:       topic,
		Key:         key,
		Payload:     bytes.Clone(payload),
		PublishedAt: time.Now().UTC(),
	}

	b.mu.Lock()
	b.messages = append(b.messages, msg)
	handlers := append([]Handler(nil), b.subscribers[topic]...)
	b.mu.Unlock()

	for _, handler := range handlers {
		if err := handler(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

// Messages returns the messages published to topic, oldest first.
func (b *Bus) Messages(topic string) []Message {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Message, 0, len(b.messages))
	for _, msg := range b.messages {
		if msg.Topic == topic {
			out = append(out, msg)
		}
	}
	return out
}

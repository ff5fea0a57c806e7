package ports

import "context"

// NotificationBus publishes stage-change notifications.
// Delivery is at-least-once; subscribers must tolerate duplicates.
type NotificationBus interface {
	// Publish sends payload to topic. key is used for partitioning where the
	// backend supports it (the order id).
	Publish(ctx context.Context, topic, key string, payload []byte) error
}

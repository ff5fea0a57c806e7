package workflow

import "strings"

// InstanceIDPrefix is prepended to an order id to form its instance id.
const InstanceIDPrefix = "pizza-order-"

// ValidationCompleteEvent is the external event carrying a Decision.
const ValidationCompleteEvent = "ValidationComplete"

// InstanceID derives the workflow instance id for an order. The mapping is
// one to one, so the same order can never start two instances.
func InstanceID(orderID string) string {
	return InstanceIDPrefix + orderID
}

// OrderIDFromInstance reverses InstanceID.
func OrderIDFromInstance(instanceID string) (string, bool) {
	orderID, ok := strings.CutPrefix(instanceID, InstanceIDPrefix)
	if !ok || orderID == "" {
		return "", false
	}
	return orderID, true
}

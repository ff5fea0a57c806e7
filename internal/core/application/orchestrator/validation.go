package orchestrator

import (
	"context"
	"encoding/json"

	"pizzaworkflow/internal/core/domain/model/order"
	"pizzaworkflow/internal/core/ports"
)

// ValidationActivity runs when an instance enters Validating. It only
// requests validation; the decision arrives later as a ValidationComplete
// event.
type ValidationActivity func(ctx context.Context, o order.Order) error

const validationKeyPrefix = "validation_"

// PendingValidationStatus is stored on the validation record.
const PendingValidationStatus = "pending_validation"

// ValidationKey returns the state store key of an order's validation record.
func ValidationKey(orderID string) string {
	return validationKeyPrefix + orderID
}

type validationRecord struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

// RecordPendingValidation returns the default activity: it writes
// {order_id, status: "pending_validation"} under validation_<OrderId>.
func RecordPendingValidation(state ports.StateStore, storeName string) ValidationActivity {
	return func(ctx context.Context, o order.Order) error {
		data, err := json.Marshal(validationRecord{OrderID: o.ID(), Status: PendingValidationStatus})
		if err != nil {
			return err
		}
		return state.Set(ctx, storeName, ValidationKey(o.ID()), data)
	}
}

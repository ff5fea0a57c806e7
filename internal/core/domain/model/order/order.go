package order

import (
	"encoding/json"
	"errors"
	"strings"

	"pizzaworkflow/internal/pkg/errs"
)

var ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

// Order is the customer order document. It is a value type: every With*
// method returns a modified copy and leaves the receiver untouched.
//
// Descriptive fields are optional so that a partial update can tell "absent"
// apart from "empty"; see Merge.
type Order struct { //nolint:recvcheck // UnmarshalJSON needs a pointer receiver
	id        string
	customer  *string
	pizzaType *string
	size      *string
	status    Status
	failure   *string

	isConstructed bool
}

// NewOrder creates an order with the given id and no other fields set.
func NewOrder(id string) (Order, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Order{}, errs.NewValueIsRequiredError("order_id")
	}
	return Order{id: id, isConstructed: true}, nil
}

// Validate ensures the order was built through NewOrder or FromDocument.
func (o Order) Validate() error {
	if !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

func (o Order) ID() string { return o.id }

func (o Order) Customer() (string, bool) { return deref(o.customer) }

func (o Order) PizzaType() (string, bool) { return deref(o.pizzaType) }

func (o Order) Size() (string, bool) { return deref(o.size) }

func (o Order) Status() Status { return o.status }

// FailureReason returns the error message recorded with a failed order.
func (o Order) FailureReason() (string, bool) { return deref(o.failure) }

func (o Order) WithCustomer(customer string) Order {
	o.customer = &customer
	return o
}

func (o Order) WithPizzaType(pizzaType string) Order {
	o.pizzaType = &pizzaType
	return o
}

func (o Order) WithSize(size string) Order {
	o.size = &size
	return o
}

// WithStatus sets the status and clears any failure reason.
func (o Order) WithStatus(status Status) Order {
	o.status = status
	o.failure = nil
	return o
}

// WithFailure marks the order failed with the given reason.
func (o Order) WithFailure(reason string) Order {
	o.status = Failed
	o.failure = &reason
	return o
}

// StatusUpdate returns a partial update that carries only the id and the
// given status, suitable for Merge.
func (o Order) StatusUpdate(status Status) Order {
	return Order{id: o.id, status: status, isConstructed: o.isConstructed}
}

// Merge combines the stored document (receiver) with an incoming update.
// Descriptive fields present on the update win; absent ones fall back to the
// stored value. Status and failure reason always come from the update.
// The id is never changed.
func (o Order) Merge(update Order) Order {
	merged := o
	if !merged.isConstructed {
		merged.id = update.id
		merged.isConstructed = update.isConstructed
	}
	if update.customer != nil {
		merged.customer = update.customer
	}
	if update.pizzaType != nil {
		merged.pizzaType = update.pizzaType
	}
	if update.size != nil {
		merged.size = update.size
	}
	merged.status = update.status
	merged.failure = update.failure
	return merged
}

// Equal compares two orders field by field.
func (o Order) Equal(other Order) bool {
	return o.id == other.id &&
		ptrEqual(o.customer, other.customer) &&
		ptrEqual(o.pizzaType, other.pizzaType) &&
		ptrEqual(o.size, other.size) &&
		o.status == other.status &&
		ptrEqual(o.failure, other.failure)
}

func (o Order) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Document())
}

func (o *Order) UnmarshalJSON(data []byte) error {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	restored, err := FromDocument(doc)
	if err != nil {
		return err
	}
	*o = restored
	return nil
}

func deref(p *string) (string, bool) {
	if p == nil {
		return "", false
	}
	return *p, true
}

func ptrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

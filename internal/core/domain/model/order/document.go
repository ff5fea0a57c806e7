package order

// Document is the wire and storage shape of an Order. Absent optional
// fields are omitted rather than written as empty strings.
type Document struct {
	OrderID   string  `json:"order_id"`
	Customer  *string `json:"customer,omitempty"`
	PizzaType *string `json:"pizza_type,omitempty"`
	Size      *string `json:"size,omitempty"`
	Status    string  `json:"status,omitempty"`
	Error     *string `json:"error,omitempty"`
}

func (o Order) Document() Document {
	return Document{
		OrderID:   o.id,
		Customer:  clone(o.customer),
		PizzaType: clone(o.pizzaType),
		Size:      clone(o.size),
		Status:    string(o.status),
		Error:     clone(o.failure),
	}
}

// FromDocument restores an Order from its stored form. An empty status is
// accepted so that stored partial updates round-trip; any other value must
// be a known Status.
func FromDocument(doc Document) (Order, error) {
	o, err := NewOrder(doc.OrderID)
	if err != nil {
		return Order{}, err
	}

	status := Status(doc.Status)
	if status != Unknown {
		if err = status.Validate(); err != nil {
			return Order{}, err
		}
	}

	o.customer = clone(doc.Customer)
	o.pizzaType = clone(doc.PizzaType)
	o.size = clone(doc.Size)
	o.status = status
	o.failure = clone(doc.Error)
	return o, nil
}

func clone(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

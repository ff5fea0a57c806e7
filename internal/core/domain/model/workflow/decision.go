package workflow

// Decision is the payload of a ValidationComplete event.
type Decision struct {
	OrderID  string `json:"order_id,omitempty"`
	Approved bool   `json:"approved"`
	Reason   string `json:"reason,omitempty"`
}

// Outcome names the decision for responses and history entries.
func (d Decision) Outcome() string {
	if d.Approved {
		return "approved"
	}
	return "rejected"
}

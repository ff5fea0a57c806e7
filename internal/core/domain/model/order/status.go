package order

import (
	"fmt"

	"pizzaworkflow/internal/pkg/errs"
)

// Status is the authoritative lifecycle label stored on the order document.
type Status string

const (
	// Unknown is the zero value; an update without a status clears it.
	Unknown Status = ""

	Created    Status = "created"
	Validating Status = "validating"
	Processing Status = "processing"
	Confirmed  Status = "confirmed"
	Rejected   Status = "rejected"
	Failed     Status = "failed"
	Paused     Status = "paused"
	Terminated Status = "terminated"

	// Expired is written when a validation deadline is configured and passes.
	Expired Status = "expired"
)

func validStatuses() map[Status]struct{} {
	return map[Status]struct{}{
		Created:    {},
		Validating: {},
		Processing: {},
		Confirmed:  {},
		Rejected:   {},
		Failed:     {},
		Paused:     {},
		Terminated: {},
		Expired:    {},
	}
}

// Validate reports whether s is one of the known statuses. Unknown is rejected.
func (s Status) Validate() error {
	if _, ok := validStatuses()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", string(s)))
	}
	return nil
}

func (s Status) String() string {
	if s == Unknown {
		return "unknown"
	}
	return string(s)
}

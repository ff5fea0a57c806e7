package workflow

import (
	"fmt"
	"slices"

	"pizzaworkflow/internal/pkg/errs"
)

// State is the orchestration state of an Instance.
type State string

const (
	NotStarted           State = "NotStarted"
	Validating           State = "Validating"
	WaitingForValidation State = "WaitingForValidation"
	Processing           State = "Processing"
	Paused               State = "Paused"
	Confirmed            State = "Confirmed"
	Rejected             State = "Rejected"
	Failed               State = "Failed"
	Terminated           State = "Terminated"
	Expired              State = "Expired"
)

// AllStates lists every State in lifecycle order.
func AllStates() []State {
	return []State{
		NotStarted, Validating, WaitingForValidation, Processing, Paused,
		Confirmed, Rejected, Failed, Terminated, Expired,
	}
}

func (s State) String() string { return string(s) }

// IsTerminal reports whether no event or control operation may change s.
func (s State) IsTerminal() bool {
	switch s {
	case Confirmed, Rejected, Failed, Terminated, Expired:
		return true
	default:
		return false
	}
}

// IsPausable reports whether Pause is accepted from s.
func (s State) IsPausable() bool {
	return s == Validating || s == WaitingForValidation || s == Processing
}

func (s State) Validate() error {
	if slices.Contains(AllStates(), s) {
		return nil
	}
	return errs.NewValueIsInvalidErrorWithCause("state", fmt.Errorf("%q is not a workflow state", string(s)))
}

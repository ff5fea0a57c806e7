package errs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValueIsRequired   = errors.New("value is required")
	ErrValueIsInvalid    = errors.New("value is invalid")
	ErrObjectNotFound    = errors.New("object not found")
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrTerminalState     = errors.New("instance is in a terminal state")
	ErrStoreUnavailable  = errors.New("store is unavailable")
	ErrBusUnavailable    = errors.New("notification bus is unavailable")
)

// sanitize keeps error messages on a single line.
func sanitize(v any) string {
	s := fmt.Sprintf("%s", v)
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
}

func withCause(msg string, cause error) string {
	if cause == nil {
		return msg
	}
	return fmt.Sprintf("%s (cause: %s)", msg, sanitize(cause.Error()))
}

// ValueIsRequiredError reports a missing mandatory input value.
type ValueIsRequiredError struct {
	ParamName string
	Cause     error
}

func NewValueIsRequiredError(paramName string) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName}
}

func NewValueIsRequiredErrorWithCause(paramName string, cause error) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsRequiredError) Error() string {
	return withCause(fmt.Sprintf("%s: %s", ErrValueIsRequired, sanitize(e.ParamName)), e.Cause)
}

func (e *ValueIsRequiredError) Unwrap() error {
	return ErrValueIsRequired
}

// ValueIsInvalidError reports an input value that is present but unusable.
type ValueIsInvalidError struct {
	ParamName string
	Cause     error
}

func NewValueIsInvalidError(paramName string) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName}
}

func NewValueIsInvalidErrorWithCause(paramName string, cause error) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsInvalidError) Error() string {
	return withCause(fmt.Sprintf("%s: %s", ErrValueIsInvalid, sanitize(e.ParamName)), e.Cause)
}

func (e *ValueIsInvalidError) Unwrap() error {
	return ErrValueIsInvalid
}

// ObjectNotFoundError reports a lookup that found nothing.
type ObjectNotFoundError struct {
	ParamName string
	ID        any
	Cause     error
}

func NewObjectNotFoundError(paramName string, id any) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id}
}

func NewObjectNotFoundErrorWithCause(paramName string, id any, cause error) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id, Cause: cause}
}

func (e *ObjectNotFoundError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", ErrObjectNotFound, sanitize(e.ID))
	}
	return withCause(
		fmt.Sprintf("%s: param is: %s, ID is: %s", ErrObjectNotFound, sanitize(e.ParamName), sanitize(e.ID)),
		e.Cause,
	)
}

func (e *ObjectNotFoundError) Unwrap() error {
	return ErrObjectNotFound
}

// InvalidTransitionError reports an event or control operation that the
// instance cannot accept in its current state. The instance is left unchanged.
type InvalidTransitionError struct {
	Action string
	State  string
}

func NewInvalidTransitionError(action, state string) *InvalidTransitionError {
	return &InvalidTransitionError{Action: action, State: state}
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: cannot %s while %s", ErrInvalidTransition, sanitize(e.Action), sanitize(e.State))
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// TerminalStateError reports an operation attempted on a finished instance.
// It matches both ErrTerminalState and ErrInvalidTransition.
type TerminalStateError struct {
	Action string
	State  string
}

func NewTerminalStateError(action, state string) *TerminalStateError {
	return &TerminalStateError{Action: action, State: state}
}

func (e *TerminalStateError) Error() string {
	return fmt.Sprintf("%s: cannot %s while %s", ErrTerminalState, sanitize(e.Action), sanitize(e.State))
}

func (e *TerminalStateError) Unwrap() error {
	return ErrTerminalState
}

func (e *TerminalStateError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// StoreUnavailableError wraps a failure of the persistent store.
type StoreUnavailableError struct {
	Store string
	Key   string
	Cause error
}

func NewStoreUnavailableError(store, key string, cause error) *StoreUnavailableError {
	return &StoreUnavailableError{Store: store, Key: key, Cause: cause}
}

func (e *StoreUnavailableError) Error() string {
	return withCause(fmt.Sprintf("%s: %s/%s", ErrStoreUnavailable, sanitize(e.Store), sanitize(e.Key)), e.Cause)
}

func (e *StoreUnavailableError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrStoreUnavailable}
	}
	return []error{ErrStoreUnavailable, e.Cause}
}

// BusUnavailableError wraps a failure of the notification bus.
type BusUnavailableError struct {
	Topic string
	Cause error
}

func NewBusUnavailableError(topic string, cause error) *BusUnavailableError {
	return &BusUnavailableError{Topic: topic, Cause: cause}
}

func (e *BusUnavailableError) Error() string {
	return withCause(fmt.Sprintf("%s: %s", ErrBusUnavailable, sanitize(e.Topic)), e.Cause)
}

func (e *BusUnavailableError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrBusUnavailable}
	}
	return []error{ErrBusUnavailable, e.Cause}
}

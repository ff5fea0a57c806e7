// Package errs provides standardized error types for the pizza workflow service.
// It implements a consistent pattern for error creation, formatting, and unwrapping
// that is used throughout the application.
//
// The package includes error types for the failure classes the service reports:
//   - ValueIsRequiredError, ValueIsInvalidError: malformed input to a public operation
//   - ObjectNotFoundError: a referenced order or workflow instance does not exist
//   - InvalidTransitionError: an event or control operation does not fit the current state
//   - TerminalStateError: a control operation on an instance that already finished
//   - StoreUnavailableError, BusUnavailableError: a collaborator could not be reached
//
// Each error type follows a consistent pattern:
//   - A sentinel error variable (e.g., ErrValueIsRequired)
//   - A struct type with fields for error details
//   - Constructor functions with and without cause
//   - Error() method for formatting the error message
//   - Unwrap() method for error wrapping/unwrapping support
//
// Callers classify errors with errors.Is against the sentinels; the transport
// layer maps each sentinel to a response code.
package errs

// Package workflow models one durable execution of the pizza order workflow.
//
// An Instance is the persisted record the orchestrator mutates: its State,
// the index of the next processing stage to run, a decision buffered while
// the instance is not yet waiting for one, and an append-only history of
// transitions. Every mutation is a pure method taking the current time; the
// orchestrator loads an Instance, applies one method, and saves it back, so
// the state machine is testable without any engine plumbing.
//
// State transitions:
//
//	NotStarted ──> Validating ──> WaitingForValidation ──┬──> Processing ──> Confirmed
//	                   │                  │              └──> Rejected
//	                   │                  └──> Expired (only with a validation deadline)
//	                   └─────────────────────────────────────> Failed (also from Processing)
//
//	Validating, WaitingForValidation, Processing ──> Paused ──> (back to where it was)
//	any non-terminal state ──> Terminated
//
// Confirmed, Rejected, Failed, Terminated and Expired are terminal.
package workflow

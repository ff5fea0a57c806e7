// Package memory provides in-process implementations of the state store,
// instance repository and notification bus. They back the default
// single-process deployment and the orchestration tests.
package memory

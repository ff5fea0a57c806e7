// Package queries contains read-only operations: workflow status and the
// stored order document. Queries never change state and are safe to call
// for instances in any state, terminal ones included.
package queries

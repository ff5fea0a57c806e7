// Package commands contains the operations that change workflow state:
// starting an order, submitting a validation decision, pausing, resuming and
// cancelling. Each command is built through its constructor, which validates
// the input, and is executed by a handler backed by the workflow engine.
package commands

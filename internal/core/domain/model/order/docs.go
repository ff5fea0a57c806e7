// Package order provides the Order document tracked by the pizza workflow.
//
// An Order is identified by an immutable order id and carries optional
// descriptive fields (customer, pizza type, size), a Status, and a failure
// reason that is only meaningful when the status is Failed.
//
// Orders are persisted as whole documents and updated by merging: a partial
// update overwrites every descriptive field it carries and inherits the rest
// from the stored document, while Status and the failure reason are always
// taken from the update. Applying the same update twice yields the same
// document; updates that interleave are last-write-wins.
package order

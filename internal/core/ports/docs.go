// Package ports defines the contracts between the workflow core and its
// collaborators: the persistent key-value store, the notification bus, the
// instance repository, the durable engine surface and metrics.
package ports

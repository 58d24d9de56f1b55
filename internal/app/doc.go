// Package app wires the configuration, supervisor and coordinator into a
// runnable conductor instance.
//
// New builds the catalog of worker targets from a validated config and
// constructs the coordinator on top of an exec supervisor. Run starts the
// auto-start services in declaration order and then blocks, watching the
// config file for changes, until the context is cancelled. Shutdown
// drains the running services respecting their needs edges: services are
// stopped as they become stoppable until nothing is left.
package app

// Package coordinator implements the service lifecycle coordinator for
// conductor.
//
// The coordinator owns all bookkeeping about which service instances are
// running and decides, on every start, stop and exit event, what has to
// happen next. It does not run processes itself; spawning and terminating
// is delegated to a supervisor implementation.
//
// # Request Loop
//
// All state lives behind a single goroutine. Public methods package their
// arguments into a request, submit it to the loop and wait for the reply.
// Termination notifications from the supervisor arrive on the same loop
// through an internal exit channel, so requests and exit events are
// serialized against each other and no further locking is needed.
//
// # Starting
//
// Start resolves the transitive needs of the requested service and starts
// every dependency before its dependents. Already running instances are
// skipped. When a spawn fails, the walk halts and the error is returned;
// dependencies that were started up to that point keep running.
//
// # Stopping
//
// Stop refuses to terminate a service that other running services still
// need, reporting which ones. CanStop answers the same question without
// side effects.
//
// # Failure Propagation
//
// When an instance exits, the coordinator looks up which services depend
// on it. With StopDependents enabled, running dependents are terminated
// deepest first with the original exit reason as the cause. With
// RestartDependents enabled, an instance whose restart policy covers the
// exit reason is started again, which also brings back cascade-stopped
// dependents.
//
// # Events
//
// Subscribe returns a channel of state transitions (running, stopped).
// Delivery is best effort; slow subscribers miss events rather than
// blocking the loop.
package coordinator

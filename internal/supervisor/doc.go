// Package supervisor defines the contract between the coordinator and
// whatever actually runs service instances, plus two implementations.
//
// A Supervisor spawns an instance for a spec, terminates instances on
// request and hands out one-shot termination watches. Handles are opaque;
// the coordinator never inspects them beyond their instance id. A
// supervisor may decline a spec by returning a nil handle without error,
// which lets purely declarative services participate in the needs graph
// without a running instance behind them.
//
// # Implementations
//
// Exec runs each instance as an operating system process. Termination
// sends SIGTERM and escalates to SIGKILL after a grace period.
//
// Inproc runs instances as goroutines inside the conductor process and is
// mainly useful for embedding and tests. Targets must implement Runner to
// be accepted.
//
// Both report a termination reason to watchers exactly once. A reason
// requested through Terminate wins over whatever the instance itself
// produces while winding down, so cascading stops report their real cause.
package supervisor

// Package registry tracks the currently running service instances.
//
// Each entry binds a spec to the supervisor handle of its live instance
// and to the watch token for its termination notification. Lookups work
// in both directions: by spec identity for start and stop requests, and
// by token when an exit notification arrives.
//
// The registry does no locking. It is owned by the coordinator loop and
// must only be touched from there.
package registry

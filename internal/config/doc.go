// Package config provides configuration management for conductor.
//
// Configuration is a single YAML file declaring the coordinator options
// and the service catalog: one entry per service with its command, needs
// edges, restart policy and auto-start flag. Load reads and validates a
// file; Parse does the same for raw bytes.
//
// # Validation
//
// Validate rejects structural problems early: empty or duplicate service
// ids, missing commands, unknown restart policies and needs edges that
// point at undeclared services. Cycles are not checked here, the resolver
// detects them with the offending path when a start is attempted.
//
// # Watching
//
// Watch observes a config file for changes and invokes a callback after a
// short debounce. Editors that replace files via rename are handled by
// watching the containing directory.
package config

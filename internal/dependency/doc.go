// Package dependency resolves the needs graph between service specs.
//
// Services declare their needs through the optional interfaces in the
// spec package. This package walks those declarations on demand; there is
// no materialized graph structure, the edges are recomputed from the
// targets every time a question is asked. That keeps the resolver correct
// for parametric services whose needs depend on their start arguments.
//
// # Operations
//
// Dependencies returns the transitive needs of a spec in start order,
// ending with the spec itself. Every need appears before anything that
// needs it.
//
// Dependents answers the reverse question against a universe of running
// specs: which of them reach the given spec through needs edges. The
// result begins with the spec itself and ends with the deepest dependent,
// so cascade stops walk it back to front.
//
// DirectNeeds and DirectNeededBy expose the single-hop versions of both
// walks.
//
// # Cycles
//
// A needs cycle is reported as a cyclic dependency error carrying the
// offending path. Detection happens during the walk; there is no separate
// validation pass.
package dependency

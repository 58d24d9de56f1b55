// Package api defines the error types shared across conductor's packages.
//
// Callers classify failures through the Is* predicates rather than by
// matching error strings. Each error type carries enough structure for a
// caller to react programmatically: the missing service id, the ids still
// needing a service, the cycle path, or the rejected input.
package api

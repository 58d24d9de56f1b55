// Package spec defines the canonical description of a service instance
// and the normalization rules that produce it.
//
// Callers refer to services in three shapes: a bare Target, a Ref pairing
// a target with one start argument, or a full Spec. Normalize folds all
// three into a Spec with defaults applied, so the rest of the system only
// ever handles one representation.
//
// Two specs denote the same instance when their Keys match. The key is
// the service id plus a canonical rendering of the bound arguments, which
// is what lets the same target run as several distinct instances when
// started with different arguments.
package spec

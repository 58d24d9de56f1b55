package supervisor

import (
	"context"

	"conductor/internal/spec"
)

// ExitReason classifies why an instance terminated. The two named reasons
// are the non-failure exits; anything else counts as abnormal.
type ExitReason string

const (
	// ExitNormal means the worker ran to completion on its own.
	ExitNormal ExitReason = "normal"
	// ExitShutdown means the worker was asked to stop.
	ExitShutdown ExitReason = "shutdown"
)

// Abnormal reports whether the reason should trigger transient restarts.
func (r ExitReason) Abnormal() bool {
	return r != ExitNormal && r != ExitShutdown
}

// Token identifies a single termination watch. It stays valid until the
// one-shot notification for its instance has been delivered.
type Token string

// Handle is an opaque reference to a running worker instance. Handles are
// owned by the supervisor that produced them; callers only terminate or
// observe them.
type Handle interface {
	InstanceID() string
}

// Liveness is the result of probing a handle.
type Liveness int

const (
	LivenessAlive Liveness = iota
	LivenessWindingDown
	LivenessGone
)

// Supervisor is the external process supervisor the coordinator delegates
// to. Implementations must be safe for concurrent use.
type Supervisor interface {
	// Spawn starts a worker for the spec. A (nil, nil) return means the
	// supervisor declined without error; the caller records nothing.
	Spawn(ctx context.Context, s spec.Spec) (Handle, error)

	// Terminate synchronously requests termination of the instance,
	// recording reason as the cause reported to watchers. Terminating a
	// handle that is already gone returns a not found error.
	Terminate(ctx context.Context, h Handle, reason ExitReason) error

	// Watch subscribes to a one-shot termination notification for the
	// instance. The reason is delivered on the returned channel exactly
	// once, after which the token is dead.
	Watch(h Handle) (Token, <-chan ExitReason)
}

// Prober is an optional interface for supervisors that can answer
// synchronous liveness questions about a handle.
type Prober interface {
	Probe(h Handle) Liveness
}

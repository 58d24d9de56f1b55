package spec

import (
	"fmt"
	"strings"

	"conductor/internal/api"
)

// RestartPolicy controls what the coordinator does when an instance of a
// service terminates.
type RestartPolicy string

const (
	// RestartTransient restarts the service only when it terminated
	// abnormally. This is the default.
	RestartTransient RestartPolicy = "transient"
	// RestartTemporary never restarts the service.
	RestartTemporary RestartPolicy = "temporary"
	// RestartPermanent restarts the service on any termination.
	RestartPermanent RestartPolicy = "permanent"
)

// Target is implemented by service definitions. The coordinator only ever
// needs a stable name from the target itself; how an instance is actually
// started is the supervisor's business.
type Target interface {
	ServiceName() string
}

// NeedsProvider is an optional interface for targets whose needs do not
// depend on start arguments.
type NeedsProvider interface {
	Needs() []interface{}
}

// ArgNeedsProvider is an optional interface for targets whose needs are a
// function of the start argument. When a spec carries an argument and the
// target implements both this and NeedsProvider, this one wins.
type ArgNeedsProvider interface {
	NeedsFor(arg interface{}) []interface{}
}

// Ref pairs a target with a single opaque start argument. It is one of the
// three input shapes accepted by Normalize.
type Ref struct {
	Target Target
	Arg    interface{}
}

// Start describes how to launch one instance: the target plus its bound
// argument list.
type Start struct {
	Target Target
	Args   []interface{}
}

// Spec is the normalized description of one service instance. Two specs
// that would start the same way compare equal via Key.
type Spec struct {
	ID      string
	Start   Start
	Restart RestartPolicy
}

// Normalize canonicalizes a service reference into a Spec. It accepts a
// bare Target, a Ref (target plus one argument), or a pre-built Spec
// (by value or pointer). Anything else is rejected with a bad-spec error.
func Normalize(input interface{}) (Spec, error) {
	switch v := input.(type) {
	case Spec:
		return fill(v)
	case *Spec:
		if v == nil {
			return Spec{}, api.NewBadSpecError(nil)
		}
		return fill(*v)
	case Ref:
		if v.Target == nil {
			return Spec{}, api.NewBadSpecError(v)
		}
		return Spec{
			ID:      v.Target.ServiceName(),
			Start:   Start{Target: v.Target, Args: []interface{}{v.Arg}},
			Restart: RestartTransient,
		}, nil
	case Target:
		if v == nil {
			return Spec{}, api.NewBadSpecError(nil)
		}
		return Spec{
			ID:      v.ServiceName(),
			Start:   Start{Target: v},
			Restart: RestartTransient,
		}, nil
	default:
		return Spec{}, api.NewBadSpecError(input)
	}
}

func fill(s Spec) (Spec, error) {
	if s.Start.Target == nil {
		return Spec{}, api.NewBadSpecError(s)
	}
	if s.ID == "" {
		s.ID = s.Start.Target.ServiceName()
	}
	if s.Restart == "" {
		s.Restart = RestartTransient
	}
	return s, nil
}

// Key returns a stable fingerprint of the spec's identity: the id plus a
// canonical rendering of the bound arguments. Specs with equal keys denote
// the same instance and share a registry slot. Nested specs, refs and
// targets render by identity (id or name), everything else by value.
func (s Spec) Key() string {
	if len(s.Start.Args) == 0 {
		return s.ID
	}
	args := make([]string, len(s.Start.Args))
	for i, a := range s.Start.Args {
		args[i] = renderArg(a)
	}
	return fmt.Sprintf("%s(%s)", s.ID, strings.Join(args, ","))
}

func renderArg(v interface{}) string {
	switch x := v.(type) {
	case Spec:
		return x.Key()
	case *Spec:
		if x == nil {
			return "<nil>"
		}
		return x.Key()
	case Ref:
		if n, err := Normalize(x); err == nil {
			return n.Key()
		}
		return "<bad ref>"
	case Target:
		return x.ServiceName()
	case []interface{}:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = renderArg(e)
		}
		return "[" + strings.Join(parts, ",") + "]"
	default:
		return fmt.Sprintf("%#v", v)
	}
}

// Equal reports whether two specs denote the same instance.
func (s Spec) Equal(other Spec) bool {
	return s.Key() == other.Key()
}

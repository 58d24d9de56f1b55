package registry

import (
	"conductor/internal/spec"
	"conductor/internal/supervisor"
)

// entry holds everything the coordinator tracks for one running instance.
type entry struct {
	spec   spec.Spec
	handle supervisor.Handle
	token  supervisor.Token
}

// Registry is the in-memory mapping between specs and their live
// instances, with an inverse index from watch token to spec. It is not
// safe for concurrent use; the coordinator is its sole owner and mutator.
type Registry struct {
	bySpec  map[string]*entry
	byToken map[supervisor.Token]*entry
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		bySpec:  make(map[string]*entry),
		byToken: make(map[supervisor.Token]*entry),
	}
}

// Insert records a running instance under its spec and watch token,
// replacing any previous entry for the same spec.
func (r *Registry) Insert(s spec.Spec, h supervisor.Handle, token supervisor.Token) {
	if prev, ok := r.bySpec[s.Key()]; ok {
		delete(r.byToken, prev.token)
	}
	e := &entry{spec: s, handle: h, token: token}
	r.bySpec[s.Key()] = e
	r.byToken[token] = e
}

// RemoveBySpec drops the entry for s and returns its handle, if any.
func (r *Registry) RemoveBySpec(s spec.Spec) (supervisor.Handle, bool) {
	e, ok := r.bySpec[s.Key()]
	if !ok {
		return nil, false
	}
	delete(r.bySpec, s.Key())
	delete(r.byToken, e.token)
	return e.handle, true
}

// RemoveByToken drops the entry watched by token and returns its spec, if
// any. This is the lookup path for termination events.
func (r *Registry) RemoveByToken(token supervisor.Token) (spec.Spec, bool) {
	e, ok := r.byToken[token]
	if !ok {
		return spec.Spec{}, false
	}
	delete(r.byToken, token)
	delete(r.bySpec, e.spec.Key())
	return e.spec, true
}

// HandleOf returns the instance handle for s, if running.
func (r *Registry) HandleOf(s spec.Spec) (supervisor.Handle, bool) {
	e, ok := r.bySpec[s.Key()]
	if !ok {
		return nil, false
	}
	return e.handle, true
}

// SpecOf returns the spec watched by token without removing it.
func (r *Registry) SpecOf(token supervisor.Token) (spec.Spec, bool) {
	e, ok := r.byToken[token]
	if !ok {
		return spec.Spec{}, false
	}
	return e.spec, true
}

// Contains reports whether s currently has a live instance.
func (r *Registry) Contains(s spec.Spec) bool {
	_, ok := r.bySpec[s.Key()]
	return ok
}

// Specs returns the specs of all running instances. Order is unspecified.
func (r *Registry) Specs() []spec.Spec {
	specs := make([]spec.Spec, 0, len(r.bySpec))
	for _, e := range r.bySpec {
		specs = append(specs, e.spec)
	}
	return specs
}

// Len returns the number of running instances.
func (r *Registry) Len() int {
	return len(r.bySpec)
}

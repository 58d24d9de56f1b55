package dependency

import (
	"conductor/internal/api"
	"conductor/internal/spec"
)

// mark is the traversal state of a node during the depth-first walk.
type mark int

const (
	unseen mark = iota
	visiting
	visited
)

// Dependencies returns all transitive needs of s, including s itself, in
// start order: for every pair (a before b), b has no path to a. A cycle
// anywhere in the traversed subgraph aborts the whole walk with a cyclic
// dependency error.
func Dependencies(s spec.Spec) ([]spec.Spec, error) {
	w := newWalker(func(n spec.Spec) ([]spec.Spec, error) {
		return DirectNeeds(n)
	})
	if err := w.visit(s); err != nil {
		return nil, err
	}
	return w.order, nil
}

// Dependents returns all transitive dependents of s within universe,
// including s itself. The output is the symmetric analogue of
// Dependencies: s first, deepest dependents last. Callers stopping a
// subtree walk it in reverse.
func Dependents(s spec.Spec, universe []spec.Spec) ([]spec.Spec, error) {
	w := newWalker(func(n spec.Spec) ([]spec.Spec, error) {
		return DirectNeededBy(n, universe)
	})
	if err := w.visit(s); err != nil {
		return nil, err
	}
	// The walk appends children before parents; for the reverse edge
	// direction that puts the deepest dependents first and s last, so
	// flip it to read dependency-order out.
	for i, j := 0, len(w.order)-1; i < j; i, j = i+1, j-1 {
		w.order[i], w.order[j] = w.order[j], w.order[i]
	}
	return w.order, nil
}

// DirectNeeds returns the canonical direct needs of a single spec. The
// target's NeedsFor(arg) is preferred over Needs() when the spec carries
// start arguments; a target declaring neither has no needs. Every element
// is re-normalized, so targets may return bare targets, refs, or specs.
func DirectNeeds(s spec.Spec) ([]spec.Spec, error) {
	raw := rawNeeds(s)
	if len(raw) == 0 {
		return nil, nil
	}
	needs := make([]spec.Spec, 0, len(raw))
	for _, item := range raw {
		n, err := spec.Normalize(item)
		if err != nil {
			return nil, err
		}
		needs = append(needs, n)
	}
	return needs, nil
}

func rawNeeds(s spec.Spec) []interface{} {
	if len(s.Start.Args) > 0 {
		if p, ok := s.Start.Target.(spec.ArgNeedsProvider); ok {
			return p.NeedsFor(s.Start.Args[0])
		}
	}
	if p, ok := s.Start.Target.(spec.NeedsProvider); ok {
		return p.Needs()
	}
	return nil
}

// DirectNeededBy returns the specs in universe whose direct needs contain
// s, in universe order.
func DirectNeededBy(s spec.Spec, universe []spec.Spec) ([]spec.Spec, error) {
	key := s.Key()
	var dependents []spec.Spec
	for _, candidate := range universe {
		if candidate.Key() == key {
			continue
		}
		needs, err := DirectNeeds(candidate)
		if err != nil {
			return nil, err
		}
		for _, n := range needs {
			if n.Key() == key {
				dependents = append(dependents, candidate)
				break
			}
		}
	}
	return dependents, nil
}

// walker runs the shared three-mark depth-first traversal. children yields
// the adjacent nodes for the chosen edge direction.
type walker struct {
	children func(spec.Spec) ([]spec.Spec, error)
	marks    map[string]mark
	order    []spec.Spec
	stack    []string
}

func newWalker(children func(spec.Spec) ([]spec.Spec, error)) *walker {
	return &walker{
		children: children,
		marks:    make(map[string]mark),
	}
}

func (w *walker) visit(s spec.Spec) error {
	key := s.Key()
	switch w.marks[key] {
	case visited:
		return nil
	case visiting:
		return api.NewCyclicError(append(append([]string{}, w.stack...), s.ID))
	}
	w.marks[key] = visiting
	w.stack = append(w.stack, s.ID)

	children, err := w.children(s)
	if err != nil {
		return err
	}
	for _, child := range children {
		if err := w.visit(child); err != nil {
			return err
		}
	}

	w.stack = w.stack[:len(w.stack)-1]
	w.marks[key] = visited
	w.order = append(w.order, s)
	return nil
}

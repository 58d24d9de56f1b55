package dependency

import (
	"testing"

	"conductor/internal/api"
	"conductor/internal/spec"
)

// staticService is a test target with a fixed needs list. The list is
// late-bound through a function so that cyclic graphs can be declared.
type staticService struct {
	name  string
	needs func() []interface{}
}

func (s *staticService) ServiceName() string { return s.name }

func (s *staticService) Needs() []interface{} {
	if s.needs == nil {
		return nil
	}
	return s.needs()
}

// parametricService derives its needs from the start argument.
type parametricService struct {
	name string
}

func (s *parametricService) ServiceName() string { return s.name }

func (s *parametricService) NeedsFor(arg interface{}) []interface{} {
	needs, _ := arg.([]interface{})
	return needs
}

// testGraph builds the fixture graph
// A->{B,C}, B->{}, C->{B,D}, D->{E}, E->{}, F->{G}, G->{F}.
func testGraph() map[string]*staticService {
	services := map[string]*staticService{}
	for _, name := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		services[name] = &staticService{name: name}
	}
	link := func(name string, needs ...string) {
		services[name].needs = func() []interface{} {
			out := make([]interface{}, len(needs))
			for i, n := range needs {
				out[i] = services[n]
			}
			return out
		}
	}
	link("A", "B", "C")
	link("C", "B", "D")
	link("D", "E")
	link("F", "G")
	link("G", "F")
	return services
}

func ids(specs []spec.Spec) []string {
	out := make([]string, len(specs))
	for i, s := range specs {
		out[i] = s.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestDependenciesOrder(t *testing.T) {
	services := testGraph()

	tests := []struct {
		name string
		root string
		want []string
	}{
		{name: "full graph from A", root: "A", want: []string{"B", "E", "D", "C", "A"}},
		{name: "chain from C", root: "C", want: []string{"B", "E", "D", "C"}},
		{name: "chain from D", root: "D", want: []string{"E", "D"}},
		{name: "leaf", root: "B", want: []string{"B"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := spec.Normalize(services[tt.root])
			if err != nil {
				t.Fatalf("Normalize(%s): %v", tt.root, err)
			}
			order, err := Dependencies(s)
			if err != nil {
				t.Fatalf("Dependencies(%s): %v", tt.root, err)
			}
			if got := ids(order); !equalIDs(got, tt.want) {
				t.Errorf("Dependencies(%s) = %v, want %v", tt.root, got, tt.want)
			}
		})
	}
}

func TestDependenciesCycle(t *testing.T) {
	services := testGraph()

	s, err := spec.Normalize(services["F"])
	if err != nil {
		t.Fatalf("Normalize(F): %v", err)
	}
	if _, err := Dependencies(s); !api.IsCyclic(err) {
		t.Errorf("Dependencies(F) error = %v, want cyclic dependency", err)
	}
}

func TestDependenciesDynamicNeeds(t *testing.T) {
	services := testGraph()
	h := &parametricService{name: "H"}

	inner := spec.Ref{Target: h, Arg: []interface{}{services["E"]}}
	s, err := spec.Normalize(inner)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	order, err := Dependencies(s)
	if err != nil {
		t.Fatalf("Dependencies: %v", err)
	}
	if got := ids(order); !equalIDs(got, []string{"E", "H"}) {
		t.Errorf("Dependencies(H[E]) = %v, want [E H]", got)
	}

	outer, err := spec.Normalize(spec.Ref{Target: h, Arg: []interface{}{inner}})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	order, err = Dependencies(outer)
	if err != nil {
		t.Fatalf("Dependencies: %v", err)
	}
	if got := ids(order); !equalIDs(got, []string{"E", "H", "H"}) {
		t.Errorf("Dependencies(H[H[E]]) = %v, want [E H H]", got)
	}
	if order[1].Key() == order[2].Key() {
		t.Errorf("parametric instances must have distinct keys, both were %s", order[1].Key())
	}
	if order[1].Key() != s.Key() {
		t.Errorf("inner instance key = %s, want %s", order[1].Key(), s.Key())
	}
}

func TestDirectNeeds(t *testing.T) {
	services := testGraph()

	s, err := spec.Normalize(services["C"])
	if err != nil {
		t.Fatalf("Normalize(C): %v", err)
	}
	needs, err := DirectNeeds(s)
	if err != nil {
		t.Fatalf("DirectNeeds(C): %v", err)
	}
	if got := ids(needs); !equalIDs(got, []string{"B", "D"}) {
		t.Errorf("DirectNeeds(C) = %v, want [B D]", got)
	}

	leaf, err := spec.Normalize(services["E"])
	if err != nil {
		t.Fatalf("Normalize(E): %v", err)
	}
	needs, err = DirectNeeds(leaf)
	if err != nil {
		t.Fatalf("DirectNeeds(E): %v", err)
	}
	if len(needs) != 0 {
		t.Errorf("DirectNeeds(E) = %v, want empty", ids(needs))
	}
}

func TestDependents(t *testing.T) {
	services := testGraph()

	universe := make([]spec.Spec, 0, 5)
	for _, name := range []string{"A", "B", "C", "D", "E"} {
		s, err := spec.Normalize(services[name])
		if err != nil {
			t.Fatalf("Normalize(%s): %v", name, err)
		}
		universe = append(universe, s)
	}

	tests := []struct {
		name string
		root string
		want []string
	}{
		{name: "shared leaf", root: "B", want: []string{"B", "C", "A"}},
		{name: "deep leaf", root: "E", want: []string{"E", "D", "C", "A"}},
		{name: "top", root: "A", want: []string{"A"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := spec.Normalize(services[tt.root])
			if err != nil {
				t.Fatalf("Normalize(%s): %v", tt.root, err)
			}
			order, err := Dependents(s, universe)
			if err != nil {
				t.Fatalf("Dependents(%s): %v", tt.root, err)
			}
			if got := ids(order); !equalIDs(got, tt.want) {
				t.Errorf("Dependents(%s) = %v, want %v", tt.root, got, tt.want)
			}
		})
	}
}

func TestDirectNeededBy(t *testing.T) {
	services := testGraph()

	universe := make([]spec.Spec, 0, 5)
	for _, name := range []string{"A", "B", "C", "D", "E"} {
		s, err := spec.Normalize(services[name])
		if err != nil {
			t.Fatalf("Normalize(%s): %v", name, err)
		}
		universe = append(universe, s)
	}

	b, _ := spec.Normalize(services["B"])
	dependents, err := DirectNeededBy(b, universe)
	if err != nil {
		t.Fatalf("DirectNeededBy(B): %v", err)
	}
	if got := ids(dependents); !equalIDs(got, []string{"A", "C"}) {
		t.Errorf("DirectNeededBy(B) = %v, want [A C]", got)
	}

	a, _ := spec.Normalize(services["A"])
	dependents, err = DirectNeededBy(a, universe)
	if err != nil {
		t.Fatalf("DirectNeededBy(A): %v", err)
	}
	if len(dependents) != 0 {
		t.Errorf("DirectNeededBy(A) = %v, want empty", ids(dependents))
	}
}

func TestDependentsOutsideUniverse(t *testing.T) {
	services := testGraph()

	// Only B and C are tracked; A is not running, so it must not appear.
	var universe []spec.Spec
	for _, name := range []string{"B", "C"} {
		s, err := spec.Normalize(services[name])
		if err != nil {
			t.Fatalf("Normalize(%s): %v", name, err)
		}
		universe = append(universe, s)
	}

	b, _ := spec.Normalize(services["B"])
	order, err := Dependents(b, universe)
	if err != nil {
		t.Fatalf("Dependents(B): %v", err)
	}
	if got := ids(order); !equalIDs(got, []string{"B", "C"}) {
		t.Errorf("Dependents(B) = %v, want [B C]", got)
	}
}

package container

import "sync"

// DependencyGraph records who contains whom and who must be destroyed
// before whom. Destruction walks it: first everything that depends on a
// name, then the name itself, then everything the name contains.
//
// The containment map and the dependency pair are synchronized
// independently of the singleton cache; graph edges only have to be
// consistent by the time destruction starts.
type DependencyGraph struct {
	containedMu sync.Mutex
	contained   map[string]map[string]struct{} // outer → inner names

	depMu        sync.Mutex
	dependents   map[string]map[string]struct{} // name → names depending on it
	dependencies map[string]map[string]struct{} // name → names it depends on
}

// NewDependencyGraph creates an empty graph.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		contained:    make(map[string]map[string]struct{}),
		dependents:   make(map[string]map[string]struct{}),
		dependencies: make(map[string]map[string]struct{}),
	}
}

// RecordContainment registers inner as contained by outer, e.g. an inner
// component whose construction nests inside outer's. The outer component
// is also registered as dependent on inner, so it is destroyed first.
func (g *DependencyGraph) RecordContainment(inner, outer string) {
	g.containedMu.Lock()
	addEdge(g.contained, outer, inner)
	g.containedMu.Unlock()

	g.RecordDependency(inner, outer)
}

// RecordDependency registers dependent as depending on name: dependent is
// destroyed strictly before name.
func (g *DependencyGraph) RecordDependency(name, dependent string) {
	g.depMu.Lock()
	defer g.depMu.Unlock()
	addEdge(g.dependents, name, dependent)
	addEdge(g.dependencies, dependent, name)
}

// DependentsOf returns a snapshot of the names depending on name.
// Empty slice when none are recorded.
func (g *DependencyGraph) DependentsOf(name string) []string {
	g.depMu.Lock()
	defer g.depMu.Unlock()
	return keys(g.dependents[name])
}

// DependenciesOf returns a snapshot of the names that name depends on.
func (g *DependencyGraph) DependenciesOf(name string) []string {
	g.depMu.Lock()
	defer g.depMu.Unlock()
	return keys(g.dependencies[name])
}

// ContainedBy returns a snapshot of the names contained by outer.
func (g *DependencyGraph) ContainedBy(outer string) []string {
	g.containedMu.Lock()
	defer g.containedMu.Unlock()
	return keys(g.contained[outer])
}

// HasDependents reports whether anything depends on name.
func (g *DependencyGraph) HasDependents(name string) bool {
	g.depMu.Lock()
	defer g.depMu.Unlock()
	return len(g.dependents[name]) > 0
}

// takeDependents removes and returns the dependents entry for name.
// Popping before recursing is what keeps destruction terminating on
// mutually dependent components.
func (g *DependencyGraph) takeDependents(name string) []string {
	g.depMu.Lock()
	defer g.depMu.Unlock()
	out := keys(g.dependents[name])
	delete(g.dependents, name)
	return out
}

// takeContained removes and returns the containment entry for outer.
func (g *DependencyGraph) takeContained(outer string) []string {
	g.containedMu.Lock()
	defer g.containedMu.Unlock()
	out := keys(g.contained[outer])
	delete(g.contained, outer)
	return out
}

// Forget removes name as a key from every map and scrubs it out of every
// other entry's value set. Entries left empty are dropped so the maps do
// not accumulate garbage keys.
func (g *DependencyGraph) Forget(name string) {
	g.containedMu.Lock()
	delete(g.contained, name)
	scrub(g.contained, name)
	g.containedMu.Unlock()

	g.depMu.Lock()
	delete(g.dependents, name)
	scrub(g.dependents, name)
	delete(g.dependencies, name)
	scrub(g.dependencies, name)
	g.depMu.Unlock()
}

// Reset drops every recorded edge.
func (g *DependencyGraph) Reset() {
	g.containedMu.Lock()
	g.contained = make(map[string]map[string]struct{})
	g.containedMu.Unlock()

	g.depMu.Lock()
	g.dependents = make(map[string]map[string]struct{})
	g.dependencies = make(map[string]map[string]struct{})
	g.depMu.Unlock()
}

func addEdge(m map[string]map[string]struct{}, key, val string) {
	set, ok := m[key]
	if !ok {
		set = make(map[string]struct{})
		m[key] = set
	}
	set[val] = struct{}{}
}

func scrub(m map[string]map[string]struct{}, name string) {
	for key, set := range m {
		delete(set, name)
		if len(set) == 0 {
			delete(m, key)
		}
	}
}

func keys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}

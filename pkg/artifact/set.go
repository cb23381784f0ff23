package artifact

import (
	"github.com/matzehuels/depot/pkg/dag"
)

// Common group types.
const (
	GroupCompile     = "compile"
	GroupCompileOnly = "compile-only"
	GroupRun         = "run"
	GroupTestCompile = "test-compile"
	GroupTestRun     = "test-run"
)

// Group is a named partition of a dependency set, such as "compile" or
// "run".
type Group struct {
	Type string
	Refs []Ref
}

// Set holds the dependency groups declared by one artifact, in declaration
// order, plus the graph built from them once resolution has run.
type Set struct {
	Groups []*Group

	graph *Graph
}

// NewSet creates an empty dependency set.
func NewSet() *Set { return &Set{} }

// Group returns the group of the given type, creating it at the end of the
// declaration order if needed.
func (s *Set) Group(typ string) *Group {
	if g, ok := s.Lookup(typ); ok {
		return g
	}
	g := &Group{Type: typ}
	s.Groups = append(s.Groups, g)
	return g
}

// Lookup returns the group of the given type if it was declared.
func (s *Set) Lookup(typ string) (*Group, bool) {
	for _, g := range s.Groups {
		if g.Type == typ {
			return g, true
		}
	}
	return nil, false
}

// Add appends refs to the group of the given type.
func (s *Set) Add(typ string, refs ...Ref) {
	g := s.Group(typ)
	g.Refs = append(g.Refs, refs...)
}

// Refs returns every reference of every group in declaration order.
func (s *Set) Refs() []Ref {
	var out []Ref
	for _, g := range s.Groups {
		out = append(out, g.Refs...)
	}
	return out
}

// Empty reports whether no references are declared.
func (s *Set) Empty() bool {
	if s == nil {
		return true
	}
	for _, g := range s.Groups {
		if len(g.Refs) > 0 {
			return false
		}
	}
	return true
}

// HasIntegrations reports whether any reference requests an integration
// build.
func (s *Set) HasIntegrations() bool {
	if s == nil {
		return false
	}
	for _, g := range s.Groups {
		for _, r := range g.Refs {
			if r.IsIntegration() {
				return true
			}
		}
	}
	return false
}

// Graph returns the graph attached by the last resolution, or nil.
func (s *Set) Graph() *Graph { return s.graph }

// SetGraph attaches g so later operations can reuse it.
func (s *Set) SetGraph(g *Graph) { s.graph = g }

// Metadata is the per-artifact descriptor stored next to every published
// file: the compatibility policy of the artifact and its own dependencies.
type Metadata struct {
	Compatibility string
	Dependencies  *Set
}

// Link is the value carried by every graph edge from a dependent to one of
// its dependencies.
type Link struct {
	DependentVersion             string
	DependencyVersion            string
	DependencyIntegrationVersion string
	GroupType                    string
	Compatibility                string
}

// Ref rebuilds the dependency reference described by the link.
func (l Link) Ref(id Identity) Ref {
	return Ref{
		Identity:           id,
		Version:            l.DependencyVersion,
		IntegrationVersion: l.DependencyIntegrationVersion,
		Compatibility:      l.Compatibility,
	}
}

// Graph links artifact identities through version-carrying edges.
type Graph = dag.Graph[Identity, Link]

// NewGraph creates an empty artifact graph.
func NewGraph() *Graph { return dag.New[Identity, Link]() }

// ProjectRoot is the synthetic identity standing for the project whose
// dependencies are being resolved.
var ProjectRoot = Identity{
	Group:   "__PROJECT__",
	Project: "__PROJECT__",
	Name:    "__PROJECT__",
	Type:    "__PROJECT__",
}

// ProjectVersion is the version of the synthetic [ProjectRoot].
const ProjectVersion = "0.0"

// ProjectRef returns the synthetic root reference.
func ProjectRef() Ref { return Ref{Identity: ProjectRoot, Version: ProjectVersion} }

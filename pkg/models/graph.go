package models

import "strings"

// TypeID is the identity of a declared component type, e.g. "example.com/game/stats.Manager".
// Two components are the same component iff their TypeIDs are equal.
type TypeID string

// ShortName returns the part of the identity after the last dot.
func (id TypeID) ShortName() string {
	s := string(id)
	if i := strings.LastIndex(s, "."); i >= 0 && i < len(s)-1 {
		return s[i+1:]
	}
	return s
}

// Node is a graph vertex for one declared component.
type Node struct {
	ID          TypeID   `json:"id" yaml:"id"`
	DisplayName string   `json:"display_name" yaml:"display_name"`
	Tags        Tag      `json:"tags" yaml:"tags"`
	Comment     string   `json:"comment,omitempty" yaml:"comment,omitempty"`
	Exposed     []string `json:"exposed,omitempty" yaml:"exposed,omitempty"`
}

// EdgeKey identifies the directed edge From -> To.
type EdgeKey struct {
	From TypeID
	To   TypeID
}

// String renders the key as "from->to".
func (k EdgeKey) String() string {
	return string(k.From) + "->" + string(k.To)
}

// Reverse returns the key of the opposite edge.
func (k EdgeKey) Reverse() EdgeKey {
	return EdgeKey{From: k.To, To: k.From}
}

// IssueKind classifies a detected architectural problem.
type IssueKind string

const (
	IssueCycle            IssueKind = "cycle"
	IssueMutualDependency IssueKind = "mutual_dependency"
)

// Issue is one detected problem, ready for a problems listing.
type Issue struct {
	Kind    IssueKind `json:"kind" yaml:"kind"`
	Title   string    `json:"title" yaml:"title"`
	Details string    `json:"details" yaml:"details"`
	Path    []TypeID  `json:"path" yaml:"path"`
}

// Graph is the component dependency graph produced by one build.
// It is populated by the builder and treated as read-only once published.
type Graph struct {
	Nodes       []*Node
	Issues      []Issue
	CyclicEdges map[EdgeKey]bool

	index    map[TypeID]*Node
	outgoing map[TypeID][]TypeID
	incoming map[TypeID][]TypeID
	uses     map[EdgeKey][]string
	edges    int
}

// NewGraph creates a graph over nodes. Later duplicates of an ID are ignored.
func NewGraph(nodes []*Node) *Graph {
	g := &Graph{
		Nodes:       make([]*Node, 0, len(nodes)),
		CyclicEdges: make(map[EdgeKey]bool),
		index:       make(map[TypeID]*Node, len(nodes)),
		outgoing:    make(map[TypeID][]TypeID),
		incoming:    make(map[TypeID][]TypeID),
		uses:        make(map[EdgeKey][]string),
	}
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if _, exists := g.index[n.ID]; exists {
			continue
		}
		g.index[n.ID] = n
		g.Nodes = append(g.Nodes, n)
	}
	return g
}

// Node returns the node for id, or nil when id is not part of the graph.
func (g *Graph) Node(id TypeID) *Node {
	return g.index[id]
}

// HasNode reports whether id is a node of the graph.
func (g *Graph) HasNode(id TypeID) bool {
	_, ok := g.index[id]
	return ok
}

// AddEdge records from -> to, merging uses into any existing edge.
// Self edges and edges touching unknown nodes are ignored; the return value
// reports whether a new logical edge was created.
func (g *Graph) AddEdge(from, to TypeID, uses []string) bool {
	if from == to || !g.HasNode(from) || !g.HasNode(to) {
		return false
	}
	key := EdgeKey{From: from, To: to}
	existing, exists := g.uses[key]
	if exists {
		g.uses[key] = appendUnique(existing, uses)
		return false
	}
	g.uses[key] = appendUnique(make([]string, 0, len(uses)), uses)
	g.outgoing[from] = append(g.outgoing[from], to)
	g.incoming[to] = append(g.incoming[to], from)
	g.edges++
	return true
}

// HasEdge reports whether from -> to exists.
func (g *Graph) HasEdge(from, to TypeID) bool {
	_, ok := g.uses[EdgeKey{From: from, To: to}]
	return ok
}

// Targets returns the dependencies of id in insertion order.
func (g *Graph) Targets(id TypeID) []TypeID {
	return g.outgoing[id]
}

// Sources returns the consumers of id in insertion order.
func (g *Graph) Sources(id TypeID) []TypeID {
	return g.incoming[id]
}

// Uses returns the declared uses of from -> to. Both directions of a logical
// edge share this list.
func (g *Graph) Uses(from, to TypeID) []string {
	return g.uses[EdgeKey{From: from, To: to}]
}

// EdgeCount returns the number of logical edges.
func (g *Graph) EdgeCount() int {
	return g.edges
}

// Edges returns every edge in node order, then insertion order of targets.
func (g *Graph) Edges() []EdgeKey {
	keys := make([]EdgeKey, 0, g.edges)
	for _, n := range g.Nodes {
		for _, to := range g.outgoing[n.ID] {
			keys = append(keys, EdgeKey{From: n.ID, To: to})
		}
	}
	return keys
}

// IsCyclic reports whether from -> to takes part in a detected cycle.
func (g *Graph) IsCyclic(from, to TypeID) bool {
	return g.CyclicEdges[EdgeKey{From: from, To: to}]
}

// DisplayName returns the node's display name, falling back to the short type name.
func (g *Graph) DisplayName(id TypeID) string {
	if n := g.index[id]; n != nil && n.DisplayName != "" {
		return n.DisplayName
	}
	return id.ShortName()
}

// IssuesOfKind returns the issues of the given kind in report order.
func (g *Graph) IssuesOfKind(kind IssueKind) []Issue {
	var out []Issue
	for _, issue := range g.Issues {
		if issue.Kind == kind {
			out = append(out, issue)
		}
	}
	return out
}

func appendUnique(dst []string, values []string) []string {
	for _, v := range values {
		found := false
		for _, d := range dst {
			if d == v {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, v)
		}
	}
	return dst
}

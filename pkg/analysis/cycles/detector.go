package cycles

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/smith-xyz/golang-component-map/pkg/models"
	"github.com/smith-xyz/golang-component-map/pkg/utils"
)

// DFS colors
const (
	unvisited = 0
	onStack   = 1
	finished  = 2
)

// Detector finds mutual dependencies and elementary cycles in a component graph
type Detector struct {
	logger *slog.Logger
}

// NewDetector creates a new cycle detector
func NewDetector(logger *slog.Logger) *Detector {
	if logger == nil {
		logger = utils.DiscardLogger()
	}
	return &Detector{logger: logger}
}

// Detect replaces g.Issues and g.CyclicEdges with freshly detected ones.
// Mutual dependency issues come first, then cycle issues in DFS order.
// Two-node cycles are already reported as mutual dependencies, so they only
// mark their edges cyclic.
func (d *Detector) Detect(g *models.Graph) {
	g.Issues = nil
	g.CyclicEdges = make(map[models.EdgeKey]bool)

	mutual := d.detectMutual(g)
	cyclic := d.detectCycles(g)

	g.Issues = append(g.Issues, mutual...)
	g.Issues = append(g.Issues, cyclic...)

	d.logger.Debug("Detection completed",
		"mutual", len(mutual),
		"cycles", len(cyclic),
		"cyclic_edges", len(g.CyclicEdges))
}

func (d *Detector) detectMutual(g *models.Graph) []models.Issue {
	var issues []models.Issue
	reported := make(map[models.EdgeKey]bool)

	for _, n := range g.Nodes {
		for _, target := range g.Targets(n.ID) {
			key := models.EdgeKey{From: n.ID, To: target}
			if reported[key] || !g.HasEdge(target, n.ID) {
				continue
			}
			reported[key] = true
			reported[key.Reverse()] = true
			g.CyclicEdges[key] = true
			g.CyclicEdges[key.Reverse()] = true

			a, b := g.DisplayName(n.ID), g.DisplayName(target)
			issues = append(issues, models.Issue{
				Kind:    models.IssueMutualDependency,
				Title:   fmt.Sprintf("Mutual dependency (%s ↔ %s)", a, b),
				Details: fmt.Sprintf("%s ↔ %s", a, b),
				Path:    []models.TypeID{n.ID, target},
			})
		}
	}
	return issues
}

type cycleSearch struct {
	g          *models.Graph
	color      map[models.TypeID]int
	stack      []models.TypeID
	signatures map[string]bool
	issues     []models.Issue
}

func (d *Detector) detectCycles(g *models.Graph) []models.Issue {
	s := &cycleSearch{
		g:          g,
		color:      make(map[models.TypeID]int, len(g.Nodes)),
		signatures: make(map[string]bool),
	}
	for _, n := range g.Nodes {
		if s.color[n.ID] == unvisited {
			s.visit(n.ID)
		}
	}
	return s.issues
}

func (s *cycleSearch) visit(id models.TypeID) {
	s.color[id] = onStack
	s.stack = append(s.stack, id)

	for _, next := range s.g.Targets(id) {
		switch s.color[next] {
		case unvisited:
			s.visit(next)
		case onStack:
			s.record(s.extract(next))
		}
	}

	s.stack = s.stack[:len(s.stack)-1]
	s.color[id] = finished
}

// extract returns the cycle closed by a back edge to entry: the stack from
// entry up to the top, followed by entry again.
func (s *cycleSearch) extract(entry models.TypeID) []models.TypeID {
	var reversed []models.TypeID
	for i := len(s.stack) - 1; i >= 0; i-- {
		reversed = append(reversed, s.stack[i])
		if s.stack[i] == entry {
			break
		}
	}

	cycle := make([]models.TypeID, 0, len(reversed)+1)
	for i := len(reversed) - 1; i >= 0; i-- {
		cycle = append(cycle, reversed[i])
	}
	return append(cycle, entry)
}

func (s *cycleSearch) record(cycle []models.TypeID) {
	signature := Signature(cycle)
	if s.signatures[signature] {
		return
	}
	s.signatures[signature] = true

	for i := 0; i+1 < len(cycle); i++ {
		s.g.CyclicEdges[models.EdgeKey{From: cycle[i], To: cycle[i+1]}] = true
	}

	if len(cycle) <= 3 {
		return
	}

	names := make([]string, len(cycle))
	for i, id := range cycle {
		names[i] = s.g.DisplayName(id)
	}
	s.issues = append(s.issues, models.Issue{
		Kind:    models.IssueCycle,
		Title:   "Cycle detected",
		Details: strings.Join(names, " → "),
		Path:    cycle,
	})
}

// Signature joins the identities of a closed cycle with "->". Rotations of the
// same cycle produce different signatures.
func Signature(cycle []models.TypeID) string {
	parts := make([]string, len(cycle))
	for i, id := range cycle {
		parts[i] = string(id)
	}
	return strings.Join(parts, "->")
}

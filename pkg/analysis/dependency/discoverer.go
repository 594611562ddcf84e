package dependency

import (
	"log/slog"
	"strings"

	"github.com/smith-xyz/golang-component-map/pkg/component"
	"github.com/smith-xyz/golang-component-map/pkg/models"
	"github.com/smith-xyz/golang-component-map/pkg/utils"
)

// Result is the deduplicated edge set found by one discovery pass.
type Result struct {
	// Edges in discovery order: consumers in node order, then targets in node order.
	Edges []models.EdgeKey
	// Uses holds the declared uses of each edge; structural-only edges map to an empty list.
	Uses map[models.EdgeKey][]string
}

// Apply adds the discovered edges to g.
func (r *Result) Apply(g *models.Graph) {
	for _, key := range r.Edges {
		g.AddEdge(key.From, key.To, r.Uses[key])
	}
}

// Discoverer finds component dependencies from declared dependencies and
// from the types of directly declared members.
type Discoverer struct {
	logger *slog.Logger
	types  component.TypeSystem
}

// NewDiscoverer creates a new dependency discoverer. With a nil type system
// only declared dependencies are discovered.
func NewDiscoverer(logger *slog.Logger, types component.TypeSystem) *Discoverer {
	if logger == nil {
		logger = utils.DiscardLogger()
	}
	return &Discoverer{
		logger: logger,
		types:  types,
	}
}

// Discover evaluates every ordered pair of distinct nodes.
func (d *Discoverer) Discover(nodes []*models.Node, descriptors []*component.Descriptor) *Result {
	result := &Result{Uses: make(map[models.EdgeKey][]string)}

	byID := make(map[models.TypeID]*component.Descriptor, len(descriptors))
	for _, desc := range descriptors {
		if desc == nil {
			continue
		}
		if _, exists := byID[desc.ID]; !exists {
			byID[desc.ID] = desc
		}
	}

	isNode := make(map[models.TypeID]bool, len(nodes))
	for _, n := range nodes {
		isNode[n.ID] = true
	}

	for _, consumer := range nodes {
		desc := byID[consumer.ID]
		if desc == nil {
			continue
		}
		for _, dep := range desc.Depends {
			if !isNode[dep.Target] {
				d.logger.Debug("Dropping declared dependency on non-node", "consumer", consumer.ID, "target", dep.Target)
			}
		}

		for _, target := range nodes {
			if target.ID == consumer.ID {
				continue
			}

			declared, uses := declaredUses(desc, target.ID)
			if !declared && !d.structural(desc, target.ID) {
				continue
			}

			key := models.EdgeKey{From: consumer.ID, To: target.ID}
			if _, exists := result.Uses[key]; exists {
				continue
			}
			result.Edges = append(result.Edges, key)
			result.Uses[key] = uses
		}
	}

	d.logger.Debug("Discovered dependencies", "nodes", len(nodes), "edges", len(result.Edges))
	return result
}

// declaredUses unions the uses of every declared dependency of desc on target.
func declaredUses(desc *component.Descriptor, target models.TypeID) (bool, []string) {
	found := false
	uses := []string{}
	for _, dep := range desc.Depends {
		if dep.Target != target {
			continue
		}
		found = true
		for _, use := range dep.Uses {
			if use = strings.TrimSpace(use); use != "" {
				uses = append(uses, use)
			}
		}
	}
	return found, utils.DedupStrings(uses)
}

// structural reports whether any directly declared member of desc refers to target.
func (d *Discoverer) structural(desc *component.Descriptor, target models.TypeID) bool {
	if d.types == nil {
		return false
	}
	for _, member := range desc.Members {
		if member.Type == nil {
			continue
		}
		if member.Special && member.Kind == component.MemberMethodParam {
			continue
		}
		if d.types.AssignableTo(member.Type, target) {
			return true
		}
	}
	return false
}

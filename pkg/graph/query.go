package graph

import (
	"errors"
	"fmt"
	"sort"

	"github.com/smith-xyz/golang-component-map/pkg/models"
)

// ErrNodeNotFound is returned by neighbor queries for identities that are not graph nodes.
var ErrNodeNotFound = errors.New("node not found")

// Link is one neighbor of a node together with the uses of the connecting edge.
type Link struct {
	Node *models.Node
	Uses []string
	// Cyclic marks the connecting edge as part of a detected cycle.
	Cyclic bool
}

// Roots returns the entry points of the graph, sorted by identity.
// Forward roots have no consumers; reverse roots have no dependencies. Only
// nodes matching filter qualify, and when none of them is a root every
// matching node is returned instead.
func Roots(g *models.Graph, reverse bool, filter models.Tag) []*models.Node {
	if g == nil {
		return []*models.Node{}
	}

	var filtered, roots []*models.Node
	for _, n := range g.Nodes {
		if !n.Tags.Matches(filter) {
			continue
		}
		filtered = append(filtered, n)

		var degree int
		if reverse {
			degree = len(g.Targets(n.ID))
		} else {
			degree = len(g.Sources(n.ID))
		}
		if degree == 0 {
			roots = append(roots, n)
		}
	}

	if len(roots) == 0 {
		roots = filtered
	}
	result := append([]*models.Node{}, roots...)
	sortByID(result)
	return result
}

// Neighbors returns the dependencies of id (or its consumers when reverse),
// sorted by identity.
func Neighbors(g *models.Graph, id models.TypeID, reverse bool) ([]Link, error) {
	if g == nil || !g.HasNode(id) {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}

	var ids []models.TypeID
	if reverse {
		ids = g.Sources(id)
	} else {
		ids = g.Targets(id)
	}

	links := make([]Link, 0, len(ids))
	for _, other := range ids {
		from, to := id, other
		if reverse {
			from, to = other, id
		}
		links = append(links, Link{
			Node:   g.Node(other),
			Uses:   g.Uses(from, to),
			Cyclic: g.IsCyclic(from, to),
		})
	}
	sort.SliceStable(links, func(i, j int) bool {
		return links[i].Node.ID < links[j].Node.ID
	})
	return links, nil
}

// Consumers returns the nodes depending on id, sorted by display name.
func Consumers(g *models.Graph, id models.TypeID) ([]Link, error) {
	links, err := Neighbors(g, id, true)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(links, func(i, j int) bool {
		a, b := links[i].Node, links[j].Node
		if a.DisplayName != b.DisplayName {
			return a.DisplayName < b.DisplayName
		}
		return a.ID < b.ID
	})
	return links, nil
}

func sortByID(nodes []*models.Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].ID < nodes[j].ID
	})
}

package output

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/smith-xyz/golang-component-map/pkg/models"
)

// MermaidExporter writes a flowchart. Edges that take part in a cycle are drawn red.
type MermaidExporter struct{}

// Export implements Exporter. The tag filter restricts the nodes drawn; edges
// are drawn when both ends are.
func (e *MermaidExporter) Export(w io.Writer, g *models.Graph, opts Options) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("flowchart LR\n")

	if g != nil {
		ids := make(map[models.TypeID]string)
		sorted := append([]*models.Node{}, g.Nodes...)
		sortNodesByID(sorted)
		for i, n := range sorted {
			if !n.Tags.Matches(opts.Filter) {
				continue
			}
			ids[n.ID] = "n" + strconv.Itoa(i)
			fmt.Fprintf(bw, "  %s[\"%s\"]\n", ids[n.ID], escapeLabel(nodeLabel(n)))
		}

		var cyclic []int
		edge := 0
		for _, n := range sorted {
			from, ok := ids[n.ID]
			if !ok {
				continue
			}
			targets := append([]models.TypeID{}, g.Targets(n.ID)...)
			sortIDs(targets)
			for _, target := range targets {
				to, ok := ids[target]
				if !ok {
					continue
				}
				if uses := g.Uses(n.ID, target); len(uses) > 0 {
					fmt.Fprintf(bw, "  %s -->|\"%s\"| %s\n", from, escapeLabel(strings.Join(uses, ", ")), to)
				} else {
					fmt.Fprintf(bw, "  %s --> %s\n", from, to)
				}
				if g.IsCyclic(n.ID, target) {
					cyclic = append(cyclic, edge)
				}
				edge++
			}
		}

		if len(cyclic) > 0 {
			parts := make([]string, len(cyclic))
			for i, idx := range cyclic {
				parts[i] = strconv.Itoa(idx)
			}
			fmt.Fprintf(bw, "  linkStyle %s stroke:#E74C3C,stroke-width:2px;\n", strings.Join(parts, ","))
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write mermaid: %w", err)
	}
	return nil
}

func nodeLabel(n *models.Node) string {
	if n.Tags == models.TagNone {
		return n.DisplayName
	}
	return n.DisplayName + " [" + n.Tags.String() + "]"
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, `"`, "#quot;")
}

func sortIDs(ids []models.TypeID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

package output

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/smith-xyz/golang-component-map/pkg/graph"
	"github.com/smith-xyz/golang-component-map/pkg/models"
)

// DefaultTitle heads markdown exports when no title is configured.
const DefaultTitle = "Component Map"

// MarkdownExporter writes the graph as nested markdown lists, one per root.
// Within a root's list every node is written once.
type MarkdownExporter struct{}

// Export implements Exporter.
func (e *MarkdownExporter) Export(w io.Writer, g *models.Graph, opts Options) error {
	title := opts.Title
	if title == "" {
		title = DefaultTitle
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# %s\n\n", title)

	if g != nil {
		for _, root := range graph.Roots(g, opts.Reverse, opts.Filter) {
			e.writeNode(bw, g, root, make(map[models.TypeID]bool), 0, opts.Reverse)
			bw.WriteString("\n")
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write markdown: %w", err)
	}
	return nil
}

func (e *MarkdownExporter) writeNode(w *bufio.Writer, g *models.Graph, n *models.Node, visited map[models.TypeID]bool, depth int, reverse bool) {
	if visited[n.ID] {
		return
	}
	visited[n.ID] = true

	indent := strings.Repeat(" ", depth*4)
	fmt.Fprintf(w, "%s- **%s [%s]**\n", indent, n.ID, n.Tags)
	if n.Comment != "" {
		fmt.Fprintf(w, "%s  - _%s_\n", indent, n.Comment)
	}
	if len(n.Exposed) > 0 {
		fmt.Fprintf(w, "%s  Exposes: %s\n", indent, strings.Join(n.Exposed, ", "))
	}

	links, _ := graph.Neighbors(g, n.ID, reverse)
	verb := "-> Uses"
	if reverse {
		verb = "<- Used by"
	}
	for _, link := range links {
		fmt.Fprintf(w, "%s  %s %s%s\n", indent, verb, link.Node.ID, usesSuffix(link.Uses))
	}
	for _, link := range links {
		e.writeNode(w, g, link.Node, visited, depth+1, reverse)
	}
}

func usesSuffix(uses []string) string {
	if len(uses) == 0 {
		return ""
	}
	return " (uses: " + strings.Join(uses, ", ") + ")"
}

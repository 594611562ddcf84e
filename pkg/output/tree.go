package output

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/smith-xyz/golang-component-map/pkg/graph"
	"github.com/smith-xyz/golang-component-map/pkg/models"
)

// Color modes of the terminal renderer.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// NoIssuesMessage is printed when a graph has no problems.
const NoIssuesMessage = "No issues detected."

// Palette
var (
	ColorTitle   = lipgloss.Color("#2CD7C7")
	ColorAccent  = lipgloss.Color("#20B9B4")
	ColorWarning = lipgloss.Color("#F4D03F")
	ColorError   = lipgloss.Color("#E74C3C")
	ColorMuted   = lipgloss.Color("#7F8C8D")
)

type treeStyles struct {
	Header  lipgloss.Style
	Tags    lipgloss.Style
	Comment lipgloss.Style
	Label   lipgloss.Style
	Link    lipgloss.Style
	Cyclic  lipgloss.Style
	Mutual  lipgloss.Style
	Cycle   lipgloss.Style
	OK      lipgloss.Style
}

func newTreeStyles(r *lipgloss.Renderer) treeStyles {
	return treeStyles{
		Header:  r.NewStyle().Bold(true).Foreground(ColorTitle),
		Tags:    r.NewStyle().Foreground(ColorMuted),
		Comment: r.NewStyle().Italic(true).Foreground(ColorMuted),
		Label:   r.NewStyle().Foreground(ColorAccent),
		Link:    r.NewStyle(),
		Cyclic:  r.NewStyle().Bold(true).Foreground(ColorError),
		Mutual:  r.NewStyle().Bold(true).Foreground(ColorWarning),
		Cycle:   r.NewStyle().Bold(true).Foreground(ColorError),
		OK:      r.NewStyle().Foreground(ColorTitle),
	}
}

// TreeRenderer prints the graph as an indented terminal tree, and problem listings.
type TreeRenderer struct {
	styles treeStyles
}

// NewTreeRenderer creates a renderer for w. In auto mode the color profile is
// detected from w.
func NewTreeRenderer(w io.Writer, color string) *TreeRenderer {
	renderer := lipgloss.NewRenderer(w)
	switch color {
	case ColorAlways:
		renderer.SetColorProfile(termenv.TrueColor)
	case ColorNever:
		renderer.SetColorProfile(termenv.Ascii)
	}
	return &TreeRenderer{styles: newTreeStyles(renderer)}
}

// Render prints a subtree per root. A node already on the current path is not
// entered again, so cycles terminate.
func (t *TreeRenderer) Render(w io.Writer, g *models.Graph, filter models.Tag, reverse bool) error {
	bw := bufio.NewWriter(w)

	roots := graph.Roots(g, reverse, filter)
	if len(roots) == 0 {
		bw.WriteString(t.styles.Comment.Render("No components found.") + "\n")
	}
	for _, root := range roots {
		t.renderNode(bw, g, root, map[models.TypeID]bool{}, 0, reverse)
		bw.WriteString("\n")
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write tree: %w", err)
	}
	return nil
}

func (t *TreeRenderer) renderNode(w *bufio.Writer, g *models.Graph, n *models.Node, path map[models.TypeID]bool, depth int, reverse bool) {
	path[n.ID] = true
	defer delete(path, n.ID)

	indent := strings.Repeat("    ", depth)
	fmt.Fprintf(w, "%s%s  %s\n", indent, t.styles.Header.Render(string(n.ID)), t.styles.Tags.Render("["+n.Tags.String()+"]"))
	if n.DisplayName != "" && n.DisplayName != n.ID.ShortName() {
		fmt.Fprintf(w, "%s  %s\n", indent, t.styles.Label.Render(n.DisplayName))
	}
	if n.Comment != "" {
		fmt.Fprintf(w, "%s  %s\n", indent, t.styles.Comment.Render(n.Comment))
	}
	if len(n.Exposed) > 0 {
		fmt.Fprintf(w, "%s  %s %s\n", indent, t.styles.Label.Render("Exposes:"), strings.Join(n.Exposed, ", "))
	}

	links, _ := graph.Neighbors(g, n.ID, reverse)
	prefix := "Uses:"
	if reverse {
		prefix = "Used by:"
	}
	for _, link := range links {
		line := prefix + " " + string(link.Node.ID) + usesSuffix(link.Uses)
		style := t.styles.Link
		if link.Cyclic {
			style = t.styles.Cyclic
		}
		fmt.Fprintf(w, "%s  %s\n", indent, style.Render(line))
	}

	for _, link := range links {
		if path[link.Node.ID] {
			continue
		}
		t.renderNode(w, g, link.Node, path, depth+1, reverse)
	}
}

// RenderProblems prints one title and one details line per issue.
func (t *TreeRenderer) RenderProblems(w io.Writer, issues []models.Issue) error {
	bw := bufio.NewWriter(w)
	if len(issues) == 0 {
		bw.WriteString(t.styles.OK.Render(NoIssuesMessage) + "\n")
	}
	for _, issue := range issues {
		style := t.styles.Cycle
		if issue.Kind == models.IssueMutualDependency {
			style = t.styles.Mutual
		}
		fmt.Fprintf(bw, "%s\n  %s\n", style.Render(issue.Title), issue.Details)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write problems: %w", err)
	}
	return nil
}

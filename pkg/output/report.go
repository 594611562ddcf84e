package output

import (
	"time"

	"github.com/smith-xyz/golang-component-map/pkg/graph"
	"github.com/smith-xyz/golang-component-map/pkg/models"
	"github.com/smith-xyz/golang-component-map/pkg/version"
)

// Report is the stable, serializable form of a component graph.
type Report struct {
	Tool      string          `json:"tool" yaml:"tool"`
	Version   string          `json:"version" yaml:"version"`
	Generated time.Time       `json:"generated" yaml:"generated"`
	TagFilter models.Tag      `json:"tag_filter" yaml:"tag_filter"`
	Reverse   bool            `json:"reverse" yaml:"reverse"`
	Summary   Summary         `json:"summary" yaml:"summary"`
	Roots     []models.TypeID `json:"roots" yaml:"roots"`
	Nodes     []NodeReport    `json:"nodes" yaml:"nodes"`
	Issues    []models.Issue  `json:"issues" yaml:"issues"`
}

// Summary holds the graph counts.
type Summary struct {
	Nodes  int `json:"nodes" yaml:"nodes"`
	Edges  int `json:"edges" yaml:"edges"`
	Cycles int `json:"cycles" yaml:"cycles"`
	Mutual int `json:"mutual_dependencies" yaml:"mutual_dependencies"`
}

// NodeReport is one node with its dependencies and consumers.
type NodeReport struct {
	ID           models.TypeID `json:"id" yaml:"id"`
	DisplayName  string        `json:"display_name" yaml:"display_name"`
	Tags         models.Tag    `json:"tags" yaml:"tags"`
	Comment      string        `json:"comment,omitempty" yaml:"comment,omitempty"`
	Exposed      []string      `json:"exposed,omitempty" yaml:"exposed,omitempty"`
	Dependencies []LinkReport  `json:"dependencies" yaml:"dependencies"`
	Consumers    []LinkReport  `json:"consumers" yaml:"consumers"`
}

// LinkReport is one edge seen from a node.
type LinkReport struct {
	ID          models.TypeID `json:"id" yaml:"id"`
	DisplayName string        `json:"display_name" yaml:"display_name"`
	Uses        []string      `json:"uses,omitempty" yaml:"uses,omitempty"`
	Cyclic      bool          `json:"cyclic,omitempty" yaml:"cyclic,omitempty"`
}

// BuildReport assembles a report with nodes sorted by identity, dependencies
// sorted by identity and consumers sorted by display name.
func BuildReport(g *models.Graph, filter models.Tag, reverse bool) *Report {
	if g == nil {
		g = models.NewGraph(nil)
	}

	report := &Report{
		Tool:      version.ToolName,
		Version:   version.GetVersion(),
		Generated: time.Now().UTC(),
		TagFilter: filter,
		Reverse:   reverse,
		Summary: Summary{
			Nodes:  len(g.Nodes),
			Edges:  g.EdgeCount(),
			Cycles: len(g.IssuesOfKind(models.IssueCycle)),
			Mutual: len(g.IssuesOfKind(models.IssueMutualDependency)),
		},
		Roots:  []models.TypeID{},
		Nodes:  make([]NodeReport, 0, len(g.Nodes)),
		Issues: append([]models.Issue{}, g.Issues...),
	}

	for _, root := range graph.Roots(g, reverse, filter) {
		report.Roots = append(report.Roots, root.ID)
	}

	sorted := append([]*models.Node{}, g.Nodes...)
	sortNodesByID(sorted)
	for _, n := range sorted {
		// both queries only fail for unknown ids
		deps, _ := graph.Neighbors(g, n.ID, false)
		consumers, _ := graph.Consumers(g, n.ID)
		report.Nodes = append(report.Nodes, NodeReport{
			ID:           n.ID,
			DisplayName:  n.DisplayName,
			Tags:         n.Tags,
			Comment:      n.Comment,
			Exposed:      n.Exposed,
			Dependencies: LinkReports(deps),
			Consumers:    LinkReports(consumers),
		})
	}
	return report
}

// LinkReports converts query links to their report form.
func LinkReports(links []graph.Link) []LinkReport {
	reports := make([]LinkReport, 0, len(links))
	for _, l := range links {
		reports = append(reports, LinkReport{
			ID:          l.Node.ID,
			DisplayName: l.Node.DisplayName,
			Uses:        l.Uses,
			Cyclic:      l.Cyclic,
		})
	}
	return reports
}

package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/smith-xyz/golang-component-map/pkg/models"
)

// Export formats.
const (
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
	FormatMermaid  = "mermaid"
)

// Options control what an exporter writes.
type Options struct {
	Title   string
	Filter  models.Tag
	Reverse bool
}

// Exporter writes a graph in one format.
type Exporter interface {
	Export(w io.Writer, g *models.Graph, opts Options) error
}

// NewExporter returns the exporter for format.
func NewExporter(format string) (Exporter, error) {
	switch format {
	case FormatMarkdown, "md", "":
		return &MarkdownExporter{}, nil
	case FormatJSON:
		return &JSONExporter{Indent: "  "}, nil
	case FormatYAML, "yml":
		return &YAMLExporter{}, nil
	case FormatMermaid, "mmd":
		return &MermaidExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s. Supported formats: markdown, json, yaml, mermaid", format)
	}
}

// JSONExporter writes the Report as JSON.
type JSONExporter struct {
	Indent string
}

// Export implements Exporter.
func (e *JSONExporter) Export(w io.Writer, g *models.Graph, opts Options) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", e.Indent)
	if err := encoder.Encode(BuildReport(g, opts.Filter, opts.Reverse)); err != nil {
		return fmt.Errorf("failed to encode JSON report: %w", err)
	}
	return nil
}

// YAMLExporter writes the Report as YAML.
type YAMLExporter struct{}

// Export implements Exporter.
func (e *YAMLExporter) Export(w io.Writer, g *models.Graph, opts Options) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(BuildReport(g, opts.Filter, opts.Reverse)); err != nil {
		return fmt.Errorf("failed to encode YAML report: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("failed to encode YAML report: %w", err)
	}
	return nil
}

func sortNodesByID(nodes []*models.Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].ID < nodes[j].ID
	})
}

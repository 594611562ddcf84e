package nodes

import (
	"log/slog"
	"strings"

	"github.com/smith-xyz/golang-component-map/pkg/component"
	"github.com/smith-xyz/golang-component-map/pkg/config"
	"github.com/smith-xyz/golang-component-map/pkg/models"
	"github.com/smith-xyz/golang-component-map/pkg/utils"
)

// Extractor turns component descriptors into graph nodes
type Extractor struct {
	logger *slog.Logger
	policy config.NodePolicy
	// nil includes every package
	packages *config.ContextAwareConfig
}

// NewExtractor creates a new node extractor. A nil config applies the default
// policy (marker required, interfaces excluded) to every package.
func NewExtractor(logger *slog.Logger, cfg *config.ContextAwareConfig) *Extractor {
	if logger == nil {
		logger = utils.DiscardLogger()
	}
	e := &Extractor{
		logger: logger,
		policy: config.NodePolicy{RequireMarker: true, ExcludeAbstract: true},
	}
	if cfg != nil && cfg.Config != nil {
		e.policy = cfg.Nodes
		e.packages = cfg
	}
	return e
}

// Extract returns one node per distinct retained descriptor, in input order.
func (e *Extractor) Extract(descriptors []*component.Descriptor) []*models.Node {
	nodes := make([]*models.Node, 0, len(descriptors))
	seen := make(map[models.TypeID]bool, len(descriptors))

	for _, d := range descriptors {
		if d == nil {
			continue
		}
		if seen[d.ID] {
			e.logger.Debug("Skipping duplicate component", "id", d.ID)
			continue
		}
		seen[d.ID] = true

		if !e.retain(d) {
			continue
		}
		nodes = append(nodes, e.newNode(d))
	}

	e.logger.Debug("Extracted nodes", "descriptors", len(descriptors), "nodes", len(nodes))
	return nodes
}

func (e *Extractor) retain(d *component.Descriptor) bool {
	if d.Marker == nil && e.policy.RequireMarker {
		return false
	}
	if d.Abstract && e.policy.ExcludeAbstract {
		return false
	}
	if e.packages != nil && d.Package != "" && !e.packages.Includes(d.Package) {
		e.logger.Debug("Skipping component from excluded package", "id", d.ID, "package", d.Package)
		return false
	}
	return true
}

func (e *Extractor) newNode(d *component.Descriptor) *models.Node {
	node := &models.Node{
		ID:          d.ID,
		DisplayName: d.Name,
		Tags:        models.TagNone,
		Comment:     strings.TrimSpace(d.Comment),
	}
	if node.DisplayName == "" {
		node.DisplayName = d.ID.ShortName()
	}
	if d.Marker != nil {
		if name := strings.TrimSpace(d.Marker.DisplayName); name != "" {
			node.DisplayName = name
		}
		node.Tags = d.Marker.Tags
	}

	var exposed []string
	for _, member := range d.Exposed {
		if name := member.ReportedName(); name != "" {
			exposed = append(exposed, name)
		}
	}
	node.Exposed = utils.DedupStrings(exposed)
	return node
}

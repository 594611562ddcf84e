// Package graph builds component dependency graphs, publishes them for
// concurrent readers, and answers roots and neighbor queries over them.
package graph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/smith-xyz/golang-component-map/pkg/analysis/cycles"
	"github.com/smith-xyz/golang-component-map/pkg/analysis/dependency"
	"github.com/smith-xyz/golang-component-map/pkg/analysis/nodes"
	"github.com/smith-xyz/golang-component-map/pkg/component"
	"github.com/smith-xyz/golang-component-map/pkg/config"
	"github.com/smith-xyz/golang-component-map/pkg/models"
	"github.com/smith-xyz/golang-component-map/pkg/utils"
)

// ErrNoSource is returned when a build is requested without a component source.
var ErrNoSource = errors.New("no component source configured")

// Builder runs one full build: load descriptors, extract nodes, discover
// dependencies, detect problems.
type Builder struct {
	logger          *slog.Logger
	config          *config.ContextAwareConfig
	source          component.Source
	instrumentation *utils.Instrumentation
}

// NewBuilder creates a new graph builder. cfg may be nil for the default node policy.
func NewBuilder(logger *slog.Logger, cfg *config.ContextAwareConfig, source component.Source) *Builder {
	if logger == nil {
		logger = utils.DiscardLogger()
	}
	return &Builder{
		logger:          logger,
		config:          cfg,
		source:          source,
		instrumentation: utils.NewInstrumentation(logger, true),
	}
}

// Build produces a fresh graph. It never touches previously built graphs.
func (b *Builder) Build(ctx context.Context) (*models.Graph, error) {
	if b.source == nil {
		return nil, ErrNoSource
	}

	tracker := b.instrumentation.NewPhaseTracker("graph build")

	tracker.StartPhase("load")
	var snapshot *component.Snapshot
	err := b.instrumentation.TimedOperation("load components", func() error {
		var loadErr error
		snapshot, loadErr = b.source.Load(ctx)
		return loadErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load components: %w", err)
	}
	if snapshot == nil {
		snapshot = &component.Snapshot{}
	}

	tracker.StartPhase("extract")
	graphNodes := nodes.NewExtractor(b.logger, b.config).Extract(snapshot.Descriptors)
	g := models.NewGraph(graphNodes)

	tracker.StartPhase("discover")
	dependency.NewDiscoverer(b.logger, snapshot.Types).
		Discover(g.Nodes, snapshot.Descriptors).
		Apply(g)

	tracker.StartPhase("detect")
	cycles.NewDetector(b.logger).Detect(g)

	tracker.Complete(len(g.Nodes))
	b.logger.Debug("Graph built",
		"nodes", len(g.Nodes),
		"edges", g.EdgeCount(),
		"issues", len(g.Issues))
	return g, nil
}

// Package loader is the Go host of component declarations. It loads packages
// with go/packages, reads //compmap: directives from type doc comments, and
// collects the members whose types the structural dependency rule inspects.
package loader

import (
	"context"
	"fmt"
	"go/types"
	"log/slog"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/go/packages"

	"github.com/smith-xyz/golang-component-map/pkg/component"
	"github.com/smith-xyz/golang-component-map/pkg/config"
	"github.com/smith-xyz/golang-component-map/pkg/utils"
)

// DefaultDirectivePrefix is used when the configuration names none.
const DefaultDirectivePrefix = "compmap"

const loadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedImports |
	packages.NeedTypes |
	packages.NeedSyntax |
	packages.NeedTypesInfo

// Source loads component descriptors from Go packages.
type Source struct {
	logger          *slog.Logger
	dir             string
	patterns        []string
	tests           bool
	buildTags       []string
	prefix          string
	instrumentation *utils.Instrumentation
}

// NewSource creates a Go package source rooted at dir. Patterns override the
// configured ones when non-empty.
func NewSource(logger *slog.Logger, dir string, cfg config.LoaderConfig, patterns ...string) *Source {
	if logger == nil {
		logger = utils.DiscardLogger()
	}
	if len(patterns) == 0 {
		patterns = cfg.Patterns
	}
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}
	prefix := cfg.DirectivePrefix
	if prefix == "" {
		prefix = DefaultDirectivePrefix
	}
	return &Source{
		logger:          logger,
		dir:             dir,
		patterns:        patterns,
		tests:           cfg.Tests,
		buildTags:       cfg.BuildTags,
		prefix:          prefix,
		instrumentation: utils.NewInstrumentation(logger, true),
	}
}

// Dir returns the directory packages are loaded from.
func (s *Source) Dir() string {
	return s.dir
}

// Patterns returns the package patterns that are loaded.
func (s *Source) Patterns() []string {
	return s.patterns
}

// Load implements component.Source. Packages with errors are skipped with a
// warning; loading fails only when the go command itself cannot run.
func (s *Source) Load(ctx context.Context) (*component.Snapshot, error) {
	cfg := &packages.Config{
		Context: ctx,
		Dir:     s.dir,
		Mode:    loadMode,
		Tests:   s.tests,
	}
	if len(s.buildTags) > 0 {
		cfg.BuildFlags = []string{"-tags=" + strings.Join(s.buildTags, ",")}
	}

	s.logger.Debug("Loading packages", "dir", s.dir, "patterns", s.patterns)
	pkgs, err := packages.Load(cfg, s.patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	usable := make([]*packages.Package, 0, len(pkgs))
	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			s.logger.Warn("Skipping package with errors", "package", pkg.PkgPath, "error", pkg.Errors[0].Error(), "errors", len(pkg.Errors))
			continue
		}
		if pkg.Types == nil || pkg.TypesInfo == nil {
			continue
		}
		usable = append(usable, pkg)
	}

	descriptors, err := s.describe(ctx, usable)
	if err != nil {
		return nil, err
	}

	ts := newTypeSystem()
	for _, pkg := range usable {
		scope := pkg.Types.Scope()
		for _, name := range scope.Names() {
			if tn, ok := scope.Lookup(name).(*types.TypeName); ok && !tn.IsAlias() {
				if named, ok := tn.Type().(*types.Named); ok {
					ts.add(named)
				}
			}
		}
	}

	s.logger.Debug("Loaded components", "packages", len(usable), "skipped", len(pkgs)-len(usable), "descriptors", len(descriptors))
	return &component.Snapshot{Descriptors: descriptors, Types: ts}, nil
}

// describe scans packages concurrently and returns their descriptors sorted by identity.
func (s *Source) describe(ctx context.Context, pkgs []*packages.Package) ([]*component.Descriptor, error) {
	results := make([][]*component.Descriptor, len(pkgs))
	progress := s.instrumentation.NewProgressTracker("describe packages", len(pkgs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, pkg := range pkgs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			scanner := &packageScanner{logger: s.logger, prefix: s.prefix, pkg: pkg}
			results[i] = scanner.scan()
			progress.Update(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to describe packages: %w", err)
	}
	progress.Complete()

	var descriptors []*component.Descriptor
	for _, r := range results {
		descriptors = append(descriptors, r...)
	}
	sort.SliceStable(descriptors, func(i, j int) bool {
		return descriptors[i].ID < descriptors[j].ID
	})
	return descriptors, nil
}

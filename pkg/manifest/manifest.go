// Package manifest loads component descriptors from a YAML manifest, for
// codebases whose components are not declared in Go source.
package manifest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/smith-xyz/golang-component-map/pkg/component"
	"github.com/smith-xyz/golang-component-map/pkg/models"
	"github.com/smith-xyz/golang-component-map/pkg/utils"
)

// ErrInvalidManifest is returned for manifests that parse but describe an invalid component set.
var ErrInvalidManifest = errors.New("invalid manifest")

// File is the document root.
type File struct {
	Components []Component `yaml:"components"`
}

// Component is one declared component.
type Component struct {
	ID         string       `yaml:"id"`
	Package    string       `yaml:"package,omitempty"`
	Node       *NodeMarker  `yaml:"node,omitempty"`
	Comment    string       `yaml:"comment,omitempty"`
	Abstract   bool         `yaml:"abstract,omitempty"`
	Implements []string     `yaml:"implements,omitempty"`
	Exposed    []Exposed    `yaml:"exposed,omitempty"`
	Depends    []Dependency `yaml:"depends,omitempty"`
	Members    []Member     `yaml:"members,omitempty"`
}

// NodeMarker marks the component as a graph node.
type NodeMarker struct {
	Name string   `yaml:"name,omitempty"`
	Tags []string `yaml:"tags,omitempty"`
}

// Exposed is an exposed member with an optional alias.
type Exposed struct {
	Name  string `yaml:"name"`
	Alias string `yaml:"alias,omitempty"`
}

// Dependency is a declared dependency.
type Dependency struct {
	Target string   `yaml:"target"`
	Uses   []string `yaml:"uses,omitempty"`
}

// Member is a structurally scanned member.
type Member struct {
	Name    string `yaml:"name"`
	Kind    string `yaml:"kind"`
	Owner   string `yaml:"owner,omitempty"`
	Type    string `yaml:"type"`
	Special bool   `yaml:"special,omitempty"`
}

// Parse decodes a manifest document. Unknown keys are rejected.
func Parse(r io.Reader) (*File, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var file File
	if err := decoder.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return &file, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	return &file, nil
}

// Snapshot converts the manifest into descriptors and a static type system.
func (f *File) Snapshot() (*component.Snapshot, error) {
	types := component.NewStaticTypes()
	descriptors := make([]*component.Descriptor, 0, len(f.Components))

	for i, c := range f.Components {
		id := strings.TrimSpace(c.ID)
		if id == "" {
			return nil, fmt.Errorf("%w: component %d has no id", ErrInvalidManifest, i)
		}
		desc, err := c.descriptor(models.TypeID(id))
		if err != nil {
			return nil, fmt.Errorf("%w: component %s: %v", ErrInvalidManifest, id, err)
		}
		for _, super := range utils.TrimSpaceSlice(c.Implements) {
			types.Declare(desc.ID, models.TypeID(super))
		}
		descriptors = append(descriptors, desc)
	}

	return &component.Snapshot{Descriptors: descriptors, Types: types}, nil
}

func (c Component) descriptor(id models.TypeID) (*component.Descriptor, error) {
	pkg := strings.TrimSpace(c.Package)
	if pkg == "" {
		if i := strings.LastIndex(string(id), "."); i > 0 {
			pkg = string(id)[:i]
		}
	}

	desc := &component.Descriptor{
		ID:       id,
		Name:     id.ShortName(),
		Package:  pkg,
		Abstract: c.Abstract,
		Comment:  c.Comment,
	}

	if c.Node != nil {
		tags, err := models.ParseTags(c.Node.Tags)
		if err != nil {
			return nil, err
		}
		desc.Marker = &component.Marker{DisplayName: c.Node.Name, Tags: tags}
	}

	for _, e := range c.Exposed {
		desc.Exposed = append(desc.Exposed, component.ExposedMember{Name: e.Name, Alias: e.Alias})
	}

	for _, d := range c.Depends {
		target := strings.TrimSpace(d.Target)
		if target == "" {
			return nil, errors.New("dependency without target")
		}
		desc.Depends = append(desc.Depends, component.Dependency{
			Target: models.TypeID(target),
			Uses:   utils.DedupStrings(utils.TrimSpaceSlice(d.Uses)),
		})
	}

	for _, m := range c.Members {
		kind, ok := component.ParseMemberKind(m.Kind)
		if !ok {
			return nil, fmt.Errorf("member %s has unknown kind %q", m.Name, m.Kind)
		}
		typ := strings.TrimSpace(m.Type)
		if typ == "" {
			return nil, fmt.Errorf("member %s has no type", m.Name)
		}
		desc.Members = append(desc.Members, component.Member{
			Name:    m.Name,
			Kind:    kind,
			Owner:   m.Owner,
			Type:    component.Named(typ),
			Special: m.Special,
		})
	}
	return desc, nil
}

// Source loads a manifest file on every Load, so edits are picked up by refreshes.
type Source struct {
	path   string
	logger *slog.Logger
}

// NewSource creates a manifest source for path.
func NewSource(logger *slog.Logger, path string) *Source {
	if logger == nil {
		logger = utils.DiscardLogger()
	}
	return &Source{path: path, logger: logger}
}

// Path returns the manifest file path.
func (s *Source) Path() string {
	return s.path
}

// Load implements component.Source.
func (s *Source) Load(ctx context.Context) (*component.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", s.path, err)
	}

	file, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", s.path, err)
	}

	snapshot, err := file.Snapshot()
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Loaded manifest", "path", s.path, "components", len(snapshot.Descriptors))
	return snapshot, nil
}

// Package component defines the declared-component descriptors that feed the
// graph builder, and the Source interface implemented by the Go package loader
// and the YAML manifest loader.
package component

import (
	"context"

	"github.com/smith-xyz/golang-component-map/pkg/models"
)

// Marker is the node metadata attached to a component declaration.
type Marker struct {
	DisplayName string
	Tags        models.Tag
}

// ExposedMember is a field or property marked as part of the component's public surface.
type ExposedMember struct {
	Name  string
	Alias string
}

// ReportedName returns the alias when it is non-blank, otherwise the member name.
func (e ExposedMember) ReportedName() string {
	if alias := trimmed(e.Alias); alias != "" {
		return alias
	}
	return e.Name
}

// Dependency is an explicitly declared dependency on another component.
type Dependency struct {
	Target models.TypeID
	Uses   []string
}

// MemberKind says where a structurally scanned type reference was declared.
type MemberKind int

const (
	MemberField MemberKind = iota
	MemberProperty
	MemberConstructorParam
	MemberMethodParam
)

// String returns the string representation of the kind.
func (k MemberKind) String() string {
	switch k {
	case MemberField:
		return "field"
	case MemberProperty:
		return "property"
	case MemberConstructorParam:
		return "constructor_param"
	case MemberMethodParam:
		return "method_param"
	default:
		return "unknown"
	}
}

// ParseMemberKind is the inverse of MemberKind.String.
func ParseMemberKind(s string) (MemberKind, bool) {
	for _, k := range []MemberKind{MemberField, MemberProperty, MemberConstructorParam, MemberMethodParam} {
		if k.String() == s {
			return k, true
		}
	}
	return MemberField, false
}

// TypeRef is an opaque reference to the declared type of a member.
// Only the Source that produced it knows how to compare it.
type TypeRef interface {
	String() string
}

// Member is one directly declared field, property, constructor parameter or
// method parameter of a component.
type Member struct {
	Name string
	Kind MemberKind
	// Owner names the method or constructor a parameter belongs to.
	Owner string
	Type  TypeRef
	// Special marks accessor-like or compiler/formatting hooks that the
	// structural rule ignores.
	Special bool
}

// Descriptor is everything the host knows about one declared component.
type Descriptor struct {
	ID       models.TypeID
	Name     string
	Package  string
	Abstract bool
	Marker   *Marker
	Comment  string
	Exposed  []ExposedMember
	Depends  []Dependency
	Members  []Member
}

// TypeSystem answers structural questions about member types.
type TypeSystem interface {
	// AssignableTo reports whether candidate is the component type target, or a
	// type a target-typed slot could hold (target is a supertype or interface of it).
	AssignableTo(candidate TypeRef, target models.TypeID) bool
}

// Snapshot is one consistent view of the declared components.
// Descriptors may contain nil entries for declarations that could not be loaded.
type Snapshot struct {
	Descriptors []*Descriptor
	Types       TypeSystem
}

// Source produces snapshots of declared components.
type Source interface {
	Load(ctx context.Context) (*Snapshot, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context) (*Snapshot, error)

// Load calls f.
func (f SourceFunc) Load(ctx context.Context) (*Snapshot, error) {
	return f(ctx)
}

// StaticSource is a Source that always returns the same snapshot.
type StaticSource struct {
	Snapshot *Snapshot
}

// Load returns the fixed snapshot.
func (s StaticSource) Load(context.Context) (*Snapshot, error) {
	return s.Snapshot, nil
}

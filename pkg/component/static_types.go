package component

import (
	"strings"

	"github.com/smith-xyz/golang-component-map/pkg/models"
)

// Named is a TypeRef that refers to a type by identity only.
type Named models.TypeID

// String returns the identity.
func (n Named) String() string {
	return string(n)
}

// StaticTypes is an in-memory type system driven by explicit supertype lists.
// It backs manifest sources and tests, where no compiler type information exists.
type StaticTypes struct {
	supertypes map[models.TypeID][]models.TypeID
}

// NewStaticTypes creates an empty type system.
func NewStaticTypes() *StaticTypes {
	return &StaticTypes{supertypes: make(map[models.TypeID][]models.TypeID)}
}

// Declare records that sub can be assigned to each of supers.
func (s *StaticTypes) Declare(sub models.TypeID, supers ...models.TypeID) {
	s.supertypes[sub] = append(s.supertypes[sub], supers...)
}

// AssignableTo walks the declared supertype relation transitively.
func (s *StaticTypes) AssignableTo(candidate TypeRef, target models.TypeID) bool {
	if candidate == nil {
		return false
	}
	start := models.TypeID(candidate.String())
	if start == target {
		return true
	}
	seen := map[models.TypeID]bool{start: true}
	queue := []models.TypeID{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, super := range s.supertypes[current] {
			if super == target {
				return true
			}
			if !seen[super] {
				seen[super] = true
				queue = append(queue, super)
			}
		}
	}
	return false
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}

package loader

import (
	"go/types"

	"github.com/smith-xyz/golang-component-map/pkg/component"
	"github.com/smith-xyz/golang-component-map/pkg/models"
)

// typeRef is the TypeRef of a member declared in Go source.
type typeRef struct {
	typ types.Type
}

// String returns the identity of the named type the member refers to, or the
// type's Go spelling when it has none.
func (r typeRef) String() string {
	if named := elementNamed(r.typ); named != nil {
		return string(typeID(named))
	}
	return types.TypeString(r.typ, nil)
}

// typeID is the component identity of a named type: "<import path>.<Name>".
func typeID(named *types.Named) models.TypeID {
	obj := named.Obj()
	if obj.Pkg() == nil {
		return models.TypeID(obj.Name())
	}
	return models.TypeID(obj.Pkg().Path() + "." + obj.Name())
}

// elementNamed unwraps pointers, slices, arrays, map values and channels down
// to the named type they hold, or nil when there is none.
func elementNamed(t types.Type) *types.Named {
	for depth := 0; t != nil && depth < 16; depth++ {
		switch tt := types.Unalias(t).(type) {
		case *types.Named:
			return tt
		case *types.Pointer:
			t = tt.Elem()
		case *types.Slice:
			t = tt.Elem()
		case *types.Array:
			t = tt.Elem()
		case *types.Map:
			t = tt.Elem()
		case *types.Chan:
			t = tt.Elem()
		default:
			return nil
		}
	}
	return nil
}

// typeSystem answers assignability with go/types over the loaded packages.
type typeSystem struct {
	index map[models.TypeID]*types.Named
}

func newTypeSystem() *typeSystem {
	return &typeSystem{index: make(map[models.TypeID]*types.Named)}
}

func (ts *typeSystem) add(named *types.Named) {
	id := typeID(named)
	if _, exists := ts.index[id]; !exists {
		ts.index[id] = named
	}
}

// AssignableTo implements component.TypeSystem. A candidate matches its own
// named type, and any interface that it or a pointer to it implements.
func (ts *typeSystem) AssignableTo(candidate component.TypeRef, target models.TypeID) bool {
	ref, ok := candidate.(typeRef)
	if !ok {
		return candidate != nil && models.TypeID(candidate.String()) == target
	}
	named := elementNamed(ref.typ)
	if named == nil {
		return false
	}
	if typeID(named) == target {
		return true
	}

	targetType, ok := ts.index[target]
	if !ok || !types.IsInterface(targetType) {
		return false
	}
	iface, ok := targetType.Underlying().(*types.Interface)
	if !ok || iface.Empty() {
		// every type satisfies an empty interface; that is no dependency
		return false
	}
	return types.AssignableTo(named, targetType) || types.AssignableTo(types.NewPointer(named), targetType)
}

package loader

import (
	"go/ast"
	"go/token"
	"go/types"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/smith-xyz/golang-component-map/pkg/component"
	"github.com/smith-xyz/golang-component-map/pkg/models"
)

// specialMethods are formatting and error hooks. Their parameters are not
// component dependencies.
var specialMethods = map[string]bool{
	"String":   true,
	"Error":    true,
	"GoString": true,
	"Format":   true,
}

// declaration is a package-level type together with the syntax that declared it.
type declaration struct {
	obj  *types.TypeName
	spec *ast.TypeSpec
	doc  []*ast.CommentGroup
	file *ast.File
}

// packageScanner builds descriptors for the types declared in one package.
type packageScanner struct {
	logger *slog.Logger
	prefix string
	pkg    *packages.Package
}

func (s *packageScanner) scan() []*component.Descriptor {
	decls := s.declarations()
	constructors := s.constructors()

	descriptors := make([]*component.Descriptor, 0, len(decls))
	for _, decl := range decls {
		descriptors = append(descriptors, s.describe(decl, constructors))
	}
	return descriptors
}

// declarations lists package-level named types in source order.
func (s *packageScanner) declarations() []declaration {
	var decls []declaration
	for _, file := range s.pkg.Syntax {
		for _, d := range file.Decls {
			gen, ok := d.(*ast.GenDecl)
			if !ok || gen.Tok != token.TYPE {
				continue
			}
			for _, spec := range gen.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok || ts.Assign.IsValid() {
					continue
				}
				obj, ok := s.pkg.TypesInfo.Defs[ts.Name].(*types.TypeName)
				if !ok || obj == nil {
					continue
				}
				doc := []*ast.CommentGroup{ts.Doc}
				if len(gen.Specs) == 1 || gen.Lparen == token.NoPos {
					doc = append(doc, gen.Doc)
				}
				decls = append(decls, declaration{obj: obj, spec: ts, doc: doc, file: file})
			}
		}
	}
	return decls
}

// constructors maps a type name to the NewX/newX functions returning it.
func (s *packageScanner) constructors() map[string][]*types.Func {
	result := make(map[string][]*types.Func)
	scope := s.pkg.Types.Scope()
	names := scope.Names()
	sort.Strings(names)

	for _, name := range names {
		fn, ok := scope.Lookup(name).(*types.Func)
		if !ok {
			continue
		}
		var typeName string
		switch {
		case strings.HasPrefix(name, "New"):
			typeName = strings.TrimPrefix(name, "New")
		case strings.HasPrefix(name, "new"):
			typeName = strings.TrimPrefix(name, "new")
		default:
			continue
		}
		if typeName == "" {
			continue
		}

		sig := fn.Type().(*types.Signature)
		if sig.Results().Len() == 0 {
			continue
		}
		first := types.Unalias(sig.Results().At(0).Type())
		if ptr, ok := first.(*types.Pointer); ok {
			first = ptr.Elem()
		}
		named, ok := types.Unalias(first).(*types.Named)
		if !ok || named.Obj().Pkg() != s.pkg.Types {
			continue
		}
		// newStats and NewStats both construct Stats; so does newstats for stats.
		if !strings.EqualFold(named.Obj().Name(), typeName) {
			continue
		}
		result[named.Obj().Name()] = append(result[named.Obj().Name()], fn)
	}
	return result
}

func (s *packageScanner) describe(decl declaration, constructors map[string][]*types.Func) *component.Descriptor {
	obj := decl.obj
	named, _ := obj.Type().(*types.Named)

	desc := &component.Descriptor{
		Name:     obj.Name(),
		Package:  s.pkg.PkgPath,
		Abstract: types.IsInterface(obj.Type()),
	}
	if named != nil {
		desc.ID = typeID(named)
	} else {
		desc.ID = models.TypeID(s.pkg.PkgPath + "." + obj.Name())
	}

	dirs, errs := parseDirectives(s.prefix, decl.doc...)
	for _, err := range errs {
		s.logger.Warn("Ignoring malformed directive", "type", desc.ID, "error", err)
	}
	desc.Marker = dirs.Marker
	desc.Comment = dirs.Comment()

	imports := s.fileImports(decl.file)
	for _, raw := range dirs.Depends {
		target, ok := resolveReference(raw.Ref, s.pkg.PkgPath, imports)
		if !ok {
			s.logger.Warn("Cannot resolve depends target", "type", desc.ID, "target", raw.Ref)
			continue
		}
		desc.Depends = append(desc.Depends, component.Dependency{Target: target, Uses: raw.Uses})
	}

	if st, ok := decl.spec.Type.(*ast.StructType); ok {
		desc.Exposed = s.exposedFields(st)
	}

	if named != nil {
		desc.Members = s.members(named, constructors[obj.Name()])
	}
	return desc
}

// fileImports maps the names a file refers to its imports by onto import paths.
func (s *packageScanner) fileImports(file *ast.File) map[string]string {
	imports := make(map[string]string, len(file.Imports))
	for _, spec := range file.Imports {
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		var name string
		switch {
		case spec.Name != nil:
			name = spec.Name.Name
		case s.pkg.Imports[path] != nil:
			name = s.pkg.Imports[path].Name
		default:
			name = path[strings.LastIndex(path, "/")+1:]
		}
		if name == "_" || name == "." {
			continue
		}
		imports[name] = path
	}
	return imports
}

func (s *packageScanner) exposedFields(st *ast.StructType) []component.ExposedMember {
	var exposed []component.ExposedMember
	for _, field := range st.Fields.List {
		if field.Tag == nil {
			continue
		}
		alias, ok := parseExposedTag(s.prefix, field.Tag.Value)
		if !ok {
			continue
		}
		for _, name := range fieldNames(field) {
			if !ast.IsExported(name) {
				s.logger.Debug("Ignoring exposed tag on unexported field", "field", name)
				continue
			}
			exposed = append(exposed, component.ExposedMember{Name: name, Alias: alias})
		}
	}
	return exposed
}

func fieldNames(field *ast.Field) []string {
	if len(field.Names) > 0 {
		names := make([]string, len(field.Names))
		for i, n := range field.Names {
			names[i] = n.Name
		}
		return names
	}
	// embedded field: the name is the type name
	expr := field.Type
	if star, ok := expr.(*ast.StarExpr); ok {
		expr = star.X
	}
	switch e := expr.(type) {
	case *ast.Ident:
		return []string{e.Name}
	case *ast.SelectorExpr:
		return []string{e.Sel.Name}
	case *ast.IndexExpr:
		return fieldNames(&ast.Field{Type: e.X})
	case *ast.IndexListExpr:
		return fieldNames(&ast.Field{Type: e.X})
	}
	return nil
}

// members lists the directly declared fields, constructor parameters and
// method parameters of named.
func (s *packageScanner) members(named *types.Named, constructors []*types.Func) []component.Member {
	var members []component.Member

	switch underlying := named.Underlying().(type) {
	case *types.Struct:
		for i := 0; i < underlying.NumFields(); i++ {
			f := underlying.Field(i)
			members = append(members, component.Member{
				Name: f.Name(),
				Kind: component.MemberField,
				Type: typeRef{typ: f.Type()},
			})
		}
	case *types.Interface:
		for i := 0; i < underlying.NumExplicitMethods(); i++ {
			members = append(members, methodParams(underlying.ExplicitMethod(i))...)
		}
	}

	for _, fn := range constructors {
		sig := fn.Type().(*types.Signature)
		for i := 0; i < sig.Params().Len(); i++ {
			p := sig.Params().At(i)
			members = append(members, component.Member{
				Name:  p.Name(),
				Kind:  component.MemberConstructorParam,
				Owner: fn.Name(),
				Type:  typeRef{typ: p.Type()},
			})
		}
	}

	for i := 0; i < named.NumMethods(); i++ {
		members = append(members, methodParams(named.Method(i))...)
	}
	return members
}

func methodParams(method *types.Func) []component.Member {
	sig, ok := method.Type().(*types.Signature)
	if !ok {
		return nil
	}
	special := specialMethods[method.Name()]
	members := make([]component.Member, 0, sig.Params().Len())
	for i := 0; i < sig.Params().Len(); i++ {
		p := sig.Params().At(i)
		members = append(members, component.Member{
			Name:    p.Name(),
			Kind:    component.MemberMethodParam,
			Owner:   method.Name(),
			Type:    typeRef{typ: p.Type()},
			Special: special,
		})
	}
	return members
}

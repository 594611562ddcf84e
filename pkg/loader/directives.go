package loader

import (
	"fmt"
	"go/ast"
	"reflect"
	"strconv"
	"strings"

	"github.com/smith-xyz/golang-component-map/pkg/component"
	"github.com/smith-xyz/golang-component-map/pkg/models"
	"github.com/smith-xyz/golang-component-map/pkg/utils"
)

// Directive verbs, written as //<prefix>:<verb> in a type's doc comment.
const (
	verbNode    = "node"
	verbComment = "comment"
	verbDepends = "depends"
)

// Struct tag options, written as `<prefix>:"exposed,alias=name"`.
const (
	optionExposed = "exposed"
	optionAlias   = "alias="
)

// rawDependency is a depends directive before its reference is resolved.
type rawDependency struct {
	Ref  string
	Uses []string
}

// directives collects every directive found on one type declaration.
type directives struct {
	Marker   *component.Marker
	Comments []string
	Depends  []rawDependency
}

// Comment joins the comment directives with single spaces.
func (d directives) Comment() string {
	return strings.Join(d.Comments, " ")
}

// parseDirectives reads the directives of prefix from comment groups.
// Malformed directives are reported and skipped; the rest still apply.
func parseDirectives(prefix string, groups ...*ast.CommentGroup) (directives, []error) {
	var (
		result directives
		errs   []error
	)
	lead := "//" + prefix + ":"

	for _, group := range groups {
		if group == nil {
			continue
		}
		for _, c := range group.List {
			if !strings.HasPrefix(c.Text, lead) {
				continue
			}
			verb, args, _ := strings.Cut(strings.TrimPrefix(c.Text, lead), " ")
			args = strings.TrimSpace(args)

			switch verb {
			case verbNode:
				marker, err := parseNodeArgs(args)
				if err != nil {
					errs = append(errs, err)
					continue
				}
				result.Marker = marker
			case verbComment:
				if args != "" {
					result.Comments = append(result.Comments, args)
				}
			case verbDepends:
				dep, err := parseDependsArgs(args)
				if err != nil {
					errs = append(errs, err)
					continue
				}
				result.Depends = append(result.Depends, dep)
			default:
				errs = append(errs, fmt.Errorf("unknown directive %s%s", lead, verb))
			}
		}
	}
	return result, errs
}

// parseNodeArgs parses `"Display Name" Tag|Tag`; both parts are optional.
func parseNodeArgs(args string) (*component.Marker, error) {
	marker := &component.Marker{}
	if strings.HasPrefix(args, `"`) {
		quoted, err := strconv.QuotedPrefix(args)
		if err != nil {
			return nil, fmt.Errorf("node directive: bad display name in %q: %w", args, err)
		}
		name, err := strconv.Unquote(quoted)
		if err != nil {
			return nil, fmt.Errorf("node directive: bad display name in %q: %w", args, err)
		}
		marker.DisplayName = strings.TrimSpace(name)
		args = strings.TrimSpace(args[len(quoted):])
	}

	tags, err := models.ParseTag(args)
	if err != nil {
		return nil, fmt.Errorf("node directive: %w", err)
	}
	marker.Tags = tags
	return marker, nil
}

// parseDependsArgs parses `pkg.Type uses,uses`.
func parseDependsArgs(args string) (rawDependency, error) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return rawDependency{}, fmt.Errorf("depends directive without target")
	}
	dep := rawDependency{Ref: fields[0]}
	if len(fields) > 1 {
		dep.Uses = utils.ParseCommaDelimited(strings.Join(fields[1:], " "))
	}
	return dep, nil
}

// resolveReference turns a depends target into a component identity.
// ref is a bare type name of the current package, pkgname.Type qualified by
// one of the file's imports, or a full import/path.Type.
func resolveReference(ref, pkgPath string, imports map[string]string) (models.TypeID, bool) {
	dot := strings.LastIndex(ref, ".")
	if dot < 0 {
		if ref == "" {
			return "", false
		}
		return models.TypeID(pkgPath + "." + ref), true
	}

	qualifier, name := ref[:dot], ref[dot+1:]
	if name == "" || qualifier == "" {
		return "", false
	}
	if strings.Contains(qualifier, "/") {
		return models.TypeID(ref), true
	}
	if path, ok := imports[qualifier]; ok {
		return models.TypeID(path + "." + name), true
	}
	return "", false
}

// parseExposedTag reads the exposed option of a raw struct tag literal.
func parseExposedTag(prefix, rawTag string) (alias string, exposed bool) {
	if rawTag == "" {
		return "", false
	}
	unquoted, err := strconv.Unquote(rawTag)
	if err != nil {
		return "", false
	}
	value, ok := reflect.StructTag(unquoted).Lookup(prefix)
	if !ok {
		return "", false
	}
	for _, option := range strings.Split(value, ",") {
		option = strings.TrimSpace(option)
		switch {
		case option == optionExposed:
			exposed = true
		case strings.HasPrefix(option, optionAlias):
			alias = strings.TrimSpace(strings.TrimPrefix(option, optionAlias))
		}
	}
	return alias, exposed
}

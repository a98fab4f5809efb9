// Package introspect statically analyzes template syntax trees without
// executing them: it resolves inheritance chains and classifies the
// variables a caller must or may supply.
//
// The analysis depends only on the narrow TemplateAST surface below, not on
// the template engine's full node vocabulary, so the resolver and classifier
// survive engine upgrades that add node types.
package introspect

import (
	"reflect"

	"github.com/deicod/gojinja/nodes"
	"github.com/deicod/gojinja/parser"

	stencilerrors "github.com/stencilkit/stencil/internal/errors"
)

// TemplateAST is the narrow introspection surface over a parsed template.
type TemplateAST struct {
	name string
	root *nodes.Template
}

// reservedNames are template-internal or engine-provided names that are
// never caller-supplied variables.
var reservedNames = map[string]struct{}{
	"loop": {}, "self": {}, "super": {}, "varargs": {}, "kwargs": {},
	"true": {}, "false": {}, "none": {},
	"True": {}, "False": {}, "None": {},
	"range": {}, "dict": {}, "lipsum": {}, "cycler": {}, "joiner": {},
	"namespace": {}, "class": {}, "debug": {}, "context": {},
	"environment": {}, "url_for": {}, "gettext": {}, "ngettext": {},
}

// Parse parses template source into its syntax tree without executing it
// and without resolving inheritance.
func Parse(name, source string) (*TemplateAST, error) {
	ast, err := parser.ParseTemplateWithEnv(&parser.Environment{}, source, name, name)
	if err != nil {
		return nil, stencilerrors.NewRenderError(name, "template parse failed", err)
	}

	return &TemplateAST{name: name, root: ast}, nil
}

// Name returns the template name the AST was parsed from.
func (t *TemplateAST) Name() string {
	return t.name
}

// ExtendsTarget returns the parent template name declared by a single
// top-level extends statement, if any. A non-constant extends expression is
// reported as absent: dynamic inheritance cannot be analyzed statically.
func (t *TemplateAST) ExtendsTarget() (string, bool) {
	for _, node := range t.root.Body {
		ext, ok := node.(*nodes.Extends)
		if !ok {
			continue
		}
		if c, ok := ext.Template.(*nodes.Const); ok {
			if name, ok := c.Value.(string); ok {
				return name, true
			}
		}
		return "", false
	}

	return "", false
}

// FreeNames returns the set of identifiers referenced as free variables
// anywhere in the template, independent of control flow. Names bound inside
// the template (loop targets, macro parameters, set targets) and engine
// builtins are excluded.
func (t *TemplateAST) FreeNames() map[string]struct{} {
	loaded := make(map[string]struct{})
	bound := make(map[string]struct{})

	walk(reflect.ValueOf(t.root), func(n nodes.Node) bool {
		if name, ok := n.(*nodes.Name); ok {
			recordName(name, loaded, bound)
		}
		if macro, ok := n.(*nodes.Macro); ok {
			bound[macro.Name] = struct{}{}
		}
		return true
	})

	for name := range bound {
		delete(loaded, name)
	}
	for name := range reservedNames {
		delete(loaded, name)
	}

	return loaded
}

// FilterOperandNames returns the variables that appear as the direct operand
// of the named filter, e.g. v in {{ v | default("x") }}.
func (t *TemplateAST) FilterOperandNames(filterName string) map[string]struct{} {
	operands := make(map[string]struct{})

	walk(reflect.ValueOf(t.root), func(n nodes.Node) bool {
		filter, ok := n.(*nodes.Filter)
		if !ok || filter.Name != filterName {
			return true
		}
		if name, ok := filter.Node.(*nodes.Name); ok {
			operands[name.Name] = struct{}{}
		}
		return true
	})

	return operands
}

// ConditionalTestNames returns two sets: the free names referenced inside
// the boolean test expression of a conditional block, and the free names
// referenced anywhere else. A variable only ever read in tests is guarded
// and therefore optional for callers.
func (t *TemplateAST) ConditionalTestNames() (inTests, outside map[string]struct{}) {
	inTests = make(map[string]struct{})
	outside = make(map[string]struct{})
	bound := make(map[string]struct{})

	var walkPartitioned func(v reflect.Value, inTest bool)
	walkPartitioned = func(v reflect.Value, inTest bool) {
		walk(v, func(n nodes.Node) bool {
			if name, ok := n.(*nodes.Name); ok {
				if inTest {
					recordName(name, inTests, bound)
				} else {
					recordName(name, outside, bound)
				}
			}
			if macro, ok := n.(*nodes.Macro); ok {
				bound[macro.Name] = struct{}{}
			}
			if ifNode, ok := n.(*nodes.If); ok {
				// Descend manually so the test expression and the bodies
				// land in different partitions.
				walkPartitioned(reflect.ValueOf(ifNode.Test), true)
				for _, child := range ifNode.Body {
					walkPartitioned(reflect.ValueOf(child), inTest)
				}
				for _, elif := range ifNode.Elif {
					walkPartitioned(reflect.ValueOf(elif), inTest)
				}
				for _, child := range ifNode.Else {
					walkPartitioned(reflect.ValueOf(child), inTest)
				}
				return false
			}
			return true
		})
	}

	walkPartitioned(reflect.ValueOf(t.root), false)

	for _, set := range []map[string]struct{}{inTests, outside} {
		for name := range bound {
			delete(set, name)
		}
		for name := range reservedNames {
			delete(set, name)
		}
	}

	return inTests, outside
}

// recordName files a Name node into the loaded or bound set according to
// its context: store/param contexts bind names, everything else reads them.
func recordName(name *nodes.Name, loaded, bound map[string]struct{}) {
	switch name.Ctx {
	case "store", "param":
		bound[name.Name] = struct{}{}
	default:
		loaded[name.Name] = struct{}{}
	}
}

package introspect

import (
	"reflect"

	"github.com/deicod/gojinja/nodes"
)

var nodeInterface = reflect.TypeOf((*nodes.Node)(nil)).Elem()

// walk performs a generic depth-first traversal over a syntax tree value,
// invoking fn for every nodes.Node encountered. Returning false from fn
// prunes descent below that node. Reflection keeps the traversal complete
// across the engine's whole node vocabulary without enumerating it.
func walk(v reflect.Value, fn func(nodes.Node) bool) {
	if !v.IsValid() {
		return
	}

	if (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) && v.IsNil() {
		return
	}

	// Report concrete node values only; interface wrappers are unwrapped
	// below and would otherwise double-report.
	if v.Kind() != reflect.Interface && v.CanInterface() && v.Type().Implements(nodeInterface) {
		if node, ok := v.Interface().(nodes.Node); ok && node != nil {
			if !fn(node) {
				return
			}
		}
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		elem := v.Elem()
		// The concrete value behind a node pointer was already reported
		// above; descend straight into its fields.
		if elem.Kind() == reflect.Struct {
			walkFields(elem, fn)
		} else {
			walk(elem, fn)
		}
	case reflect.Struct:
		walkFields(v, fn)
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			walk(v.Index(i), fn)
		}
	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			walk(iter.Value(), fn)
		}
	}
}

func walkFields(v reflect.Value, fn func(nodes.Node) bool) {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		if !t.Field(i).IsExported() {
			continue
		}
		walk(v.Field(i), fn)
	}
}

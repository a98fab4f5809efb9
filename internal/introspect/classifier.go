package introspect

import (
	"sort"
)

// SystemFields are injected by the scaffolding pipeline itself: never
// user-supplied, never classified required or optional.
var SystemFields = map[string]struct{}{
	"artifact_type":    {},
	"template_version": {},
	"generated_at":     {},
	"output_path":      {},
	"output_format":    {},
}

// IsSystemField reports whether name is injected by the pipeline.
func IsSystemField(name string) bool {
	_, ok := SystemFields[name]
	return ok
}

// TemplateSchema describes the caller-facing variable contract of a
// template and its ancestors.
type TemplateSchema struct {
	// Required variables must be present and non-nil in the scaffold
	// context.
	Required []string

	// Optional variables may be omitted: the templates either default them
	// or only read them inside conditional guards.
	Optional []string

	// InheritanceChain is root-first; the last element is the template the
	// schema was computed for.
	InheritanceChain []string
}

// IsRequired reports whether the named variable is in the required set.
func (s *TemplateSchema) IsRequired(name string) bool {
	return containsSorted(s.Required, name)
}

// IsOptional reports whether the named variable is in the optional set.
func (s *TemplateSchema) IsOptional(name string) bool {
	return containsSorted(s.Optional, name)
}

func containsSorted(sorted []string, name string) bool {
	i := sort.SearchStrings(sorted, name)
	return i < len(sorted) && sorted[i] == name
}

// Classify partitions a chain's variable references into required and
// optional sets.
//
// A variable is optional when any ancestor passes it through the "default"
// filter, or when every syntactic occurrence of it across the whole chain
// sits inside the boolean test of a conditional block. A variable optional
// in one ancestor and required in another is optional: templates that guard
// a variable locally win over ancestors that assume its presence, biasing
// toward fewer false missing-field errors.
func Classify(result *ChainResult) *TemplateSchema {
	defaulted := make(map[string]struct{})
	inTests := make(map[string]struct{})
	outside := make(map[string]struct{})

	for _, ast := range result.ASTs {
		for name := range ast.FilterOperandNames("default") {
			defaulted[name] = struct{}{}
		}
		testNames, outsideNames := ast.ConditionalTestNames()
		for name := range testNames {
			inTests[name] = struct{}{}
		}
		for name := range outsideNames {
			outside[name] = struct{}{}
		}
	}

	var required, optional []string
	for name := range result.Refs {
		if IsSystemField(name) {
			continue
		}

		_, hasDefault := defaulted[name]
		_, guarded := inTests[name]
		_, read := outside[name]

		if hasDefault || (guarded && !read) {
			optional = append(optional, name)
		} else {
			required = append(required, name)
		}
	}

	sort.Strings(required)
	sort.Strings(optional)

	return &TemplateSchema{
		Required:         required,
		Optional:         optional,
		InheritanceChain: append([]string(nil), result.Chain...),
	}
}

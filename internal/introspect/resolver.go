package introspect

import (
	stencilerrors "github.com/stencilkit/stencil/internal/errors"
)

// SourceLoader supplies raw template source by name. *renderer.Engine
// satisfies it.
type SourceLoader interface {
	Source(name string) (string, error)
}

// ChainResult is the outcome of resolving a template's inheritance chain.
type ChainResult struct {
	// Chain lists the templates root-first: Chain[0] is the root-most
	// ancestor, the last element is the queried template itself.
	Chain []string

	// Refs is the union of free variable references across every template
	// in the chain.
	Refs map[string]struct{}

	// ASTs holds the parsed tree of each chain member, in Chain order.
	ASTs []*TemplateAST
}

// Resolver walks extends chains by parsing each template's syntax tree,
// never executing anything.
type Resolver struct {
	loader SourceLoader
}

// NewResolver creates a Resolver over the given source loader.
func NewResolver(loader SourceLoader) *Resolver {
	return &Resolver{loader: loader}
}

// ResolveChain resolves the inheritance chain of the named template. A
// template may extend at most one parent; a chain that revisits a template
// fails fast with an inheritance cycle error instead of looping.
func (r *Resolver) ResolveChain(name string) (*ChainResult, error) {
	visited := make(map[string]bool)
	refs := make(map[string]struct{})

	var leafFirst []string
	var asts []*TemplateAST

	current := name
	for {
		if visited[current] {
			return nil, stencilerrors.NewInheritanceCycleError(current, append(leafFirst, current))
		}
		visited[current] = true

		source, err := r.loader.Source(current)
		if err != nil {
			return nil, err
		}

		ast, err := Parse(current, source)
		if err != nil {
			return nil, err
		}

		leafFirst = append(leafFirst, current)
		asts = append(asts, ast)

		for ref := range ast.FreeNames() {
			refs[ref] = struct{}{}
		}

		parent, ok := ast.ExtendsTarget()
		if !ok {
			break
		}
		current = parent
	}

	// Reverse to root-first order.
	chain := make([]string, len(leafFirst))
	ordered := make([]*TemplateAST, len(asts))
	for i := range leafFirst {
		j := len(leafFirst) - 1 - i
		chain[i] = leafFirst[j]
		ordered[i] = asts[j]
	}

	return &ChainResult{Chain: chain, Refs: refs, ASTs: ordered}, nil
}

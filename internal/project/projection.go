// Package project computes derived, disposable views over an immutable
// graph: visibility/feature filter projections and search projections with
// ancestor context. Projections are plain identifier sets; they never
// mutate the graph and are discarded after one render.
package project

import (
	"github.com/Alb-O/ruskel/internal/graph"
	"github.com/Alb-O/ruskel/internal/ir"
)

// Projection is a set of surviving item identifiers. Every projection is
// ancestor-closed: if an item is present, so is every ancestor up to the
// root. Projections produced by Search additionally track which items
// matched directly and which containers should expand all children.
type Projection struct {
	include map[ir.ID]bool
	matches map[ir.ID]bool
	expand  map[ir.ID]bool

	// deriveAttrs holds impls suppressed as blocks because they surface
	// as a #[derive(...)] attribute on their target type. Only impls
	// that passed every other gate land here.
	deriveAttrs map[ir.ID]bool

	// selection is true for search projections, where non-matching
	// ancestors collapse to headings instead of expanding.
	selection bool
}

func newProjection(selection bool) *Projection {
	return &Projection{
		include:     make(map[ir.ID]bool),
		matches:     make(map[ir.ID]bool),
		expand:      make(map[ir.ID]bool),
		deriveAttrs: make(map[ir.ID]bool),
		selection:   selection,
	}
}

// Contains reports whether the item survives this projection.
func (p *Projection) Contains(id ir.ID) bool {
	return p.include[id]
}

// Matched reports whether the item directly matched the search query.
// Always false for filter-only projections.
func (p *Projection) Matched(id ir.ID) bool {
	return p.matches[id]
}

// Expands reports whether a container should render all surviving children.
// Filter-only projections expand everything.
func (p *Projection) Expands(id ir.ID) bool {
	if !p.selection {
		return true
	}
	return p.expand[id]
}

// DeriveAttr reports whether the impl renders as a #[derive(...)] entry
// on its target type instead of an impl block.
func (p *Projection) DeriveAttr(id ir.ID) bool {
	return p.deriveAttrs[id]
}

// Selection reports whether this projection carries search collapse
// semantics.
func (p *Projection) Selection() bool {
	return p.selection
}

// Len returns the number of surviving items.
func (p *Projection) Len() int {
	return len(p.include)
}

// IDs returns the surviving identifiers in unspecified order.
func (p *Projection) IDs() []ir.ID {
	ids := make([]ir.ID, 0, len(p.include))
	for id := range p.include {
		ids = append(ids, id)
	}
	return ids
}

// addWithAncestors inserts id and its full ancestor chain.
func (p *Projection) addWithAncestors(g *graph.Graph, id ir.ID) {
	p.include[id] = true
	for _, anc := range g.Ancestors(id) {
		p.include[anc] = true
	}
}

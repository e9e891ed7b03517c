package project

import (
	"github.com/Alb-O/ruskel/internal/graph"
	"github.com/Alb-O/ruskel/internal/ir"
	"github.com/Alb-O/ruskel/internal/syntax"
)

// FilterOptions control which items a filter projection keeps.
type FilterOptions struct {
	// IncludePrivate keeps non-public items.
	IncludePrivate bool

	// AutoImpls keeps compiler-synthesized impls (Send, Sync, and the
	// blanket family) instead of suppressing them.
	AutoImpls bool

	// Features is the enabled feature set. Items gated behind a feature
	// absent from this set are dropped. See EnabledFeatures.
	Features map[string]bool

	// AllFeatures treats every feature gate as satisfied.
	AllFeatures bool
}

// EnabledFeatures builds the enabled set from an explicit feature list.
// The "default" feature is implied unless noDefault is set.
func EnabledFeatures(features []string, noDefault bool) map[string]bool {
	enabled := make(map[string]bool, len(features)+1)
	if !noDefault {
		enabled["default"] = true
	}
	for _, f := range features {
		enabled[f] = true
	}
	return enabled
}

// Filter walks the graph top-down and returns the projection of items that
// survive visibility and feature gating. A child can only survive if its
// parent did. Impl blocks survive only when their target survives and at
// least one associated item survives; synthetic impls additionally require
// AutoImpls, and blanket and derive-trait impls are always suppressed since
// the renderer represents derives as attributes on the type.
func Filter(g *graph.Graph, opts FilterOptions) *Projection {
	p := newProjection(false)
	f := &filterWalk{g: g, opts: opts, p: p}
	f.walk(g.Root)
	return p
}

type filterWalk struct {
	g    *graph.Graph
	opts FilterOptions
	p    *Projection
}

// walk reports whether id survived, including it and any surviving
// descendants in the projection when it did.
func (f *filterWalk) walk(id ir.ID) bool {
	item := f.g.Item(id)
	if item == nil {
		return false
	}
	if !f.featuresEnabled(item) {
		return false
	}
	if impl, ok := item.Inner.(*ir.Impl); ok {
		return f.walkImpl(item, impl)
	}
	if id != f.g.Root && !f.visible(item) {
		return false
	}

	f.p.include[id] = true
	for _, child := range item.Children {
		f.walk(child)
	}
	return true
}

// walkImpl applies the impl gates. The impl's own visibility is always
// "default" in rustdoc output, so survival is decided entirely by the impl
// kind, the implemented trait, and the surviving member count.
func (f *filterWalk) walkImpl(item *graph.Item, impl *ir.Impl) bool {
	if impl.BlanketImpl != nil {
		return false
	}
	if impl.IsSynthetic && !f.opts.AutoImpls {
		return false
	}
	if impl.Trait != nil {
		if syntax.IsDeriveTrait(lastSegment(impl.Trait.String())) {
			// Feature and synthetic gates already passed, so the impl is
			// live; it just renders as an attribute.
			f.p.deriveAttrs[item.ID] = true
			return false
		}
		// A local private trait makes its impls private too.
		if t := f.g.Item(impl.Trait.ID); t != nil && !f.visible(t) {
			return false
		}
	}

	survived := 0
	for _, child := range item.Children {
		if f.walkMember(child, impl.Trait != nil) {
			survived++
		}
	}
	if survived == 0 {
		for _, child := range item.Children {
			delete(f.p.include, child)
		}
		return false
	}
	f.p.include[item.ID] = true
	return true
}

// walkMember handles associated items inside an impl. Trait impl members
// are forced public: omitting one would render an incomplete impl.
func (f *filterWalk) walkMember(id ir.ID, traitImpl bool) bool {
	item := f.g.Item(id)
	if item == nil {
		return false
	}
	if !f.featuresEnabled(item) {
		return false
	}
	if !traitImpl && !f.visible(item) {
		return false
	}
	f.p.include[id] = true
	for _, child := range item.Children {
		f.walk(child)
	}
	return true
}

// visible applies the rustdoc visibility model: "default" visibility means
// inherited, which for enum variants, trait members, and variant fields is
// effectively public.
func (f *filterWalk) visible(item *graph.Item) bool {
	if f.opts.IncludePrivate {
		return true
	}
	if item.Visibility.IsPublic() {
		return true
	}
	if item.Visibility.Kind == "default" {
		switch item.Kind {
		case graph.KindVariant:
			return true
		}
		if parent := f.g.Item(item.Parent); parent != nil {
			switch parent.Kind {
			case graph.KindEnum, graph.KindVariant, graph.KindTrait:
				return true
			}
		}
	}
	return false
}

func (f *filterWalk) featuresEnabled(item *graph.Item) bool {
	if f.opts.AllFeatures {
		return true
	}
	for _, feat := range item.Features {
		if !f.opts.Features[feat] {
			return false
		}
	}
	return true
}

func lastSegment(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == ':' {
			return path[i+1:]
		}
		if path[i] == '<' {
			// Generic args never appear after the trait name here, but a
			// malformed path should not panic.
			path = path[:i]
		}
	}
	return path
}

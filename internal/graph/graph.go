// Package graph builds an in-memory item graph from one decoded rustdoc
// JSON document. The graph is immutable after Build: filtering and search
// compute derived identifier sets against it, never mutate it.
package graph

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/Alb-O/ruskel/internal/ir"
)

// Kind classifies a graph item, with lowercase labels used in listings.
type Kind string

const (
	KindCrate     Kind = "crate"
	KindModule    Kind = "module"
	KindStruct    Kind = "struct"
	KindEnum      Kind = "enum"
	KindVariant   Kind = "variant"
	KindField     Kind = "field"
	KindTrait     Kind = "trait"
	KindFunction  Kind = "function"
	KindMethod    Kind = "method"
	KindConstant  Kind = "constant"
	KindTypeAlias Kind = "type"
	KindImpl      Kind = "impl"
	KindMacro     Kind = "macro"
	KindUse       Kind = "use"
)

// Item is one documented entity owned by the graph. Parent is a weak
// back-reference by identifier; the graph owns all items.
type Item struct {
	ID         ir.ID
	Name       string
	Docs       string
	Kind       Kind
	Visibility ir.Visibility
	Features   []string
	Parent     ir.ID
	Children   []ir.ID
	Order      int
	Inner      any // typed decoded payload, see ir.Item.DecodeInner
	Raw        *ir.Item
}

// Graph owns the full item set keyed by identifier, the parent/children
// adjacency, and the canonical path index.
type Graph struct {
	Crate     *ir.Crate
	Root      ir.ID
	CrateName string
	Items     map[ir.ID]*Item

	canonical map[ir.ID]string
	altPaths  map[ir.ID][]string
}

// Build constructs the graph from a decoded crate. Items whose inner payload
// fails to decode are dropped with a warning; references to missing items
// are dropped as dangling edges. Neither failure aborts the build.
func Build(crate *ir.Crate) (*Graph, error) {
	rootItem, ok := crate.Index[crate.Root]
	if !ok {
		return nil, fmt.Errorf("rustdoc JSON has no root item %d", crate.Root)
	}
	crateName := "crate"
	if rootItem.Name != nil && *rootItem.Name != "" {
		crateName = *rootItem.Name
	}

	g := &Graph{
		Crate:     crate,
		Root:      crate.Root,
		CrateName: crateName,
		Items:     make(map[ir.ID]*Item, len(crate.Index)),
		canonical: make(map[ir.ID]string),
		altPaths:  make(map[ir.ID][]string),
	}

	for id, raw := range crate.Index {
		if raw.CrateID != 0 {
			continue // foreign items are referenced, not owned
		}
		inner, err := raw.DecodeInner()
		if err != nil {
			slog.Warn("dropping undecodable item", "id", id, "error", err)
			continue
		}
		item := &Item{
			ID:         id,
			Kind:       kindOf(raw, inner),
			Visibility: raw.Visibility,
			Features:   raw.Features(),
			Parent:     ir.NoID,
			Order:      -1,
			Inner:      inner,
			Raw:        raw,
		}
		if raw.Name != nil {
			item.Name = *raw.Name
		}
		if raw.Docs != nil {
			item.Docs = *raw.Docs
		}
		g.Items[id] = item
	}

	root := g.Items[g.Root]
	if root == nil {
		return nil, fmt.Errorf("root item %d did not decode", crate.Root)
	}
	root.Kind = KindCrate

	order := 0
	g.link(root, &order)
	g.resolvePaths()
	return g, nil
}

// link wires parent and children references in declaration order, starting
// from item. Children already claimed by another parent are left alone so
// every non-root item keeps exactly one parent.
func (g *Graph) link(item *Item, order *int) {
	item.Order = *order
	*order++

	for _, childID := range g.childRefs(item) {
		child, ok := g.Items[childID]
		if !ok {
			slog.Debug("dropping dangling child reference", "parent", item.ID, "child", childID)
			continue
		}
		if child.Parent != ir.NoID || childID == g.Root {
			continue
		}
		child.Parent = item.ID
		item.Children = append(item.Children, childID)
		g.link(child, order)
	}
}

// childRefs enumerates the identifiers an item's inner payload declares as
// its members, in declaration order. Impl blocks referenced by a type are
// treated as children of that type; synthetic and blanket impls are kept
// here and filtered later.
func (g *Graph) childRefs(item *Item) []ir.ID {
	switch inner := item.Inner.(type) {
	case *ir.Module:
		return inner.Items
	case *ir.Struct:
		var refs []ir.ID
		switch {
		case inner.Kind.Plain != nil:
			refs = append(refs, inner.Kind.Plain.Fields...)
		case inner.Kind.Tuple != nil:
			for _, f := range inner.Kind.Tuple {
				if f != nil {
					refs = append(refs, *f)
				}
			}
		}
		return append(refs, g.implRefs(inner.Impls)...)
	case *ir.Enum:
		refs := append([]ir.ID(nil), inner.Variants...)
		return append(refs, g.implRefs(inner.Impls)...)
	case *ir.Variant:
		switch {
		case inner.Kind.Struct != nil:
			return inner.Kind.Struct.Fields
		case inner.Kind.Tuple != nil:
			var refs []ir.ID
			for _, f := range inner.Kind.Tuple {
				if f != nil {
					refs = append(refs, *f)
				}
			}
			return refs
		}
		return nil
	case *ir.Trait:
		return inner.Items
	case *ir.Impl:
		return inner.Items
	default:
		return nil
	}
}

// implRefs drops impl references whose block is missing from the index, for
// example impls of foreign traits stripped out of the document.
func (g *Graph) implRefs(impls []ir.ID) []ir.ID {
	var refs []ir.ID
	for _, id := range impls {
		if it, ok := g.Items[id]; ok {
			if impl, ok := it.Inner.(*ir.Impl); ok {
				if impl.Trait != nil {
					if _, foreign := g.Items[impl.Trait.ID]; !foreign {
						// Trait defined outside the document: keep the impl,
						// the trait path still renders from its Path record.
						if _, known := g.Crate.Paths[impl.Trait.ID]; !known && impl.Trait.String() == "" {
							slog.Debug("dropping impl of unresolvable trait", "impl", id)
							continue
						}
					}
				}
				refs = append(refs, id)
				continue
			}
		}
		slog.Debug("dropping dangling impl reference", "impl", id)
	}
	return refs
}

func kindOf(raw *ir.Item, inner any) Kind {
	switch inner := inner.(type) {
	case *ir.Module:
		return KindModule
	case *ir.Struct:
		return KindStruct
	case *ir.StructField:
		return KindField
	case *ir.Enum:
		return KindEnum
	case *ir.Variant:
		return KindVariant
	case *ir.Trait:
		return KindTrait
	case *ir.Function:
		if hasSelfReceiver(inner) {
			return KindMethod
		}
		return KindFunction
	case *ir.Impl:
		return KindImpl
	case *ir.Use:
		return KindUse
	case *ir.Constant, *ir.AssocConst:
		return KindConstant
	case *ir.TypeAlias, *ir.AssocType:
		return KindTypeAlias
	case string, *ir.ProcMacro:
		return KindMacro
	default:
		return Kind(raw.Kind())
	}
}

func hasSelfReceiver(fn *ir.Function) bool {
	return len(fn.Sig.Inputs) > 0 && fn.Sig.Inputs[0].Name == "self"
}

// Item returns the item for id, or nil when id is absent or foreign.
func (g *Graph) Item(id ir.ID) *Item {
	return g.Items[id]
}

// Ancestors returns the chain of container identifiers from item's parent
// up to the root, nearest first.
func (g *Graph) Ancestors(id ir.ID) []ir.ID {
	var chain []ir.ID
	for {
		item, ok := g.Items[id]
		if !ok || item.Parent == ir.NoID {
			return chain
		}
		chain = append(chain, item.Parent)
		id = item.Parent
	}
}

// CanonicalPath returns the designated fully-qualified path for an item, or
// an empty string when the item is not publicly reachable.
func (g *Graph) CanonicalPath(id ir.ID) string {
	return g.canonical[id]
}

// AlternatePaths returns every reachable path for an item, canonical first.
func (g *Graph) AlternatePaths(id ir.ID) []string {
	return g.altPaths[id]
}

// SortByDeclaration orders identifiers by the order their items were first
// declared. Unknown identifiers sort last.
func (g *Graph) SortByDeclaration(ids []ir.ID) {
	sort.SliceStable(ids, func(i, j int) bool {
		a, b := g.Items[ids[i]], g.Items[ids[j]]
		if a == nil || b == nil {
			return b == nil && a != nil
		}
		return a.Order < b.Order
	})
}

// Package render turns a filtered item graph into output text: a compact
// Rust skeleton, its markdown presentation, or a path listing.
package render

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Alb-O/ruskel/internal/graph"
	"github.com/Alb-O/ruskel/internal/ir"
	"github.com/Alb-O/ruskel/internal/project"
	"github.com/Alb-O/ruskel/internal/syntax"
)

// ErrFilterNotMatched reports that a ::sub::path filter matched no item.
var ErrFilterNotMatched = errors.New("path filter matched nothing")

// Skeleton renders the surviving items as syntactically valid Rust source,
// wrapped in one `pub mod <crate>` block. filter decides what exists; sel,
// when non-nil, narrows the output to a search selection. pathFilter is an
// optional ::-separated path under the crate root restricting output to
// one subtree while keeping the enclosing module shells.
func Skeleton(g *graph.Graph, filter, sel *project.Projection, pathFilter string) (string, error) {
	st := &state{
		g:        g,
		filter:   filter,
		sel:      sel,
		inlining: make(map[ir.ID]bool),
	}
	if pathFilter != "" {
		st.target = strings.Split(pathFilter, "::")
	}

	root := g.Item(g.Root)
	if root == nil {
		return "", fmt.Errorf("graph has no root item")
	}
	st.renderRoot(root)

	if len(st.target) > 0 && !st.matched {
		return "", fmt.Errorf("%w: %s", ErrFilterNotMatched, pathFilter)
	}
	return st.p.String(), nil
}

type pathMatch int

const (
	matchMiss pathMatch = iota
	matchPrefix
	matchHit
	matchSuffix
)

type state struct {
	g      *graph.Graph
	filter *project.Projection
	sel    *project.Projection

	// target holds the ::sub::path filter segments, relative to the root.
	target  []string
	matched bool

	// inlining guards against re-export cycles when use declarations
	// inline their local targets.
	inlining map[ir.ID]bool

	p printer
}

// include reports whether the projections keep this item. Inlined re-export
// targets bypass the visibility filter but still honor a search selection.
func (st *state) include(id ir.ID, force bool) bool {
	if st.sel != nil {
		return st.sel.Contains(id)
	}
	if force {
		return true
	}
	return st.filter.Contains(id)
}

// pathFilterMatch classifies an item path against the target filter.
// Unnamed items such as impl blocks never terminate a filter path.
func (st *state) pathFilterMatch(prefix []string, item *graph.Item) pathMatch {
	if item.Name == "" {
		return matchPrefix
	}
	itemPath := append(append([]string(nil), prefix...), item.Name)

	if equalSegments(st.target, itemPath) {
		return matchHit
	}
	if len(itemPath) < len(st.target) && equalSegments(st.target[:len(itemPath)], itemPath) {
		return matchPrefix
	}
	if len(itemPath) > len(st.target) && equalSegments(st.target, itemPath[:len(st.target)]) {
		return matchSuffix
	}
	return matchMiss
}

func equalSegments(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// skipByPath reports whether the path filter excludes this item. A hit is
// recorded so an unmatched filter can be reported as an error afterwards.
func (st *state) skipByPath(prefix []string, item *graph.Item) bool {
	if len(st.target) == 0 || item.ID == st.g.Root {
		return false
	}
	switch st.pathFilterMatch(prefix, item) {
	case matchHit:
		st.matched = true
		return false
	case matchPrefix, matchSuffix:
		return false
	default:
		return true
	}
}

// moduleDocWanted suppresses //! headers on modules that are only shells on
// the way to a filtered subtree.
func (st *state) moduleDocWanted(prefix []string, item *graph.Item) bool {
	if len(st.target) == 0 {
		return true
	}
	m := st.pathFilterMatch(prefix, item)
	return m == matchHit || m == matchSuffix
}

func (st *state) renderRoot(root *graph.Item) {
	st.p.open("pub mod " + syntax.EscapeName(st.g.CrateName) + " {")
	st.writeModuleDocs(root, nil)
	for _, child := range root.Children {
		st.renderItem(nil, st.g.Item(child), false)
	}
	st.p.close("}")
}

func (st *state) writeModuleDocs(item *graph.Item, prefix []string) {
	if item.Docs == "" || !st.moduleDocWanted(prefix, item) {
		return
	}
	for _, l := range strings.Split(item.Docs, "\n") {
		if l == "" {
			st.p.line("//!")
		} else {
			st.p.line("//! " + l)
		}
	}
}

func (st *state) writeDocs(item *graph.Item) {
	if item.Docs == "" {
		return
	}
	for _, l := range strings.Split(item.Docs, "\n") {
		if l == "" {
			st.p.line("///")
		} else {
			st.p.line("/// " + l)
		}
	}
}

// renderItem dispatches on the item kind. force marks items reached through
// a local re-export, which renders them regardless of their declared
// visibility.
func (st *state) renderItem(prefix []string, item *graph.Item, force bool) {
	if item == nil || !st.include(item.ID, force) {
		return
	}
	if st.skipByPath(prefix, item) {
		return
	}

	switch inner := item.Inner.(type) {
	case *ir.Module:
		st.renderModule(prefix, item)
	case *ir.Struct:
		st.renderStruct(prefix, item, inner)
	case *ir.Enum:
		st.renderEnum(prefix, item, inner)
	case *ir.Trait:
		st.renderTrait(item, inner)
	case *ir.Use:
		st.renderUse(prefix, item, inner)
	case *ir.Function:
		st.renderFunction(item, inner, false)
	case *ir.Constant:
		st.p.sep()
		st.writeDocs(item)
		st.p.line(vis(item) + "const " + syntax.EscapeName(item.Name) + ": " +
			syntax.Type(&inner.Type) + " = " + inner.Const.Expr + ";")
	case *ir.TypeAlias:
		st.renderTypeAlias(item, inner)
	case string:
		st.renderMacro(item, inner)
	case *ir.ProcMacro:
		st.renderProcMacro(item, inner)
	}
}

func (st *state) renderModule(prefix []string, item *graph.Item) {
	childPrefix := append(append([]string(nil), prefix...), item.Name)

	st.p.sep()
	st.p.open(vis(item) + "mod " + syntax.EscapeName(item.Name) + " {")
	st.writeModuleDocs(item, prefix)
	for _, child := range item.Children {
		st.renderItem(childPrefix, st.g.Item(child), false)
	}
	st.p.close("}")
}

// derives collects trait names represented as a #[derive(...)] attribute.
// Only impls the filter marked as derive attributes count, so a derive
// gated behind a disabled feature stays hidden.
func (st *state) derives(item *graph.Item) []string {
	var names []string
	for _, child := range item.Children {
		if !st.filter.DeriveAttr(child) {
			continue
		}
		ci := st.g.Item(child)
		if ci == nil {
			continue
		}
		impl, ok := ci.Inner.(*ir.Impl)
		if !ok || impl.Trait == nil {
			continue
		}
		names = append(names, lastPathSegment(impl.Trait.String()))
	}
	return names
}

func (st *state) writeDerives(item *graph.Item) {
	if names := st.derives(item); len(names) > 0 {
		st.p.line("#[derive(" + strings.Join(names, ", ") + ")]")
	}
}

func (st *state) renderStruct(prefix []string, item *graph.Item, s *ir.Struct) {
	st.p.sep()
	st.writeDocs(item)
	st.writeDerives(item)

	head := vis(item) + "struct " + syntax.EscapeName(item.Name) + syntax.Generics(&s.Generics)
	where := syntax.WhereClause(&s.Generics)

	switch {
	case s.Kind.Unit:
		st.p.line(head + where + ";")
	case s.Kind.Tuple != nil:
		st.p.line(head + "(" + st.tupleFields(s.Kind.Tuple) + ")" + where + ";")
	case s.Kind.Plain != nil:
		st.p.open(head + where + " {")
		for _, f := range s.Kind.Plain.Fields {
			st.renderField(f)
		}
		st.p.close("}")
	}

	st.renderImpls(prefix, item)
}

// tupleFields renders a tuple struct's field list. Stripped entries are
// omitted; surviving private fields keep their position as `_`.
func (st *state) tupleFields(fields []*ir.ID) string {
	var parts []string
	for _, f := range fields {
		if f == nil {
			continue
		}
		fi := st.g.Item(*f)
		if fi == nil || !st.include(*f, false) {
			if fi != nil && st.sel == nil && st.filter.Contains(fi.Parent) {
				// Private field under a surviving struct holds its slot.
				parts = append(parts, "_")
			}
			continue
		}
		sf, ok := fi.Inner.(*ir.StructField)
		if !ok {
			continue
		}
		parts = append(parts, vis(fi)+syntax.Type(&sf.Type))
	}
	return strings.Join(parts, ", ")
}

func (st *state) renderField(id ir.ID) {
	fi := st.g.Item(id)
	if fi == nil || !st.include(id, false) {
		return
	}
	sf, ok := fi.Inner.(*ir.StructField)
	if !ok {
		return
	}
	st.writeDocs(fi)
	st.p.line(vis(fi) + syntax.EscapeName(fi.Name) + ": " + syntax.Type(&sf.Type) + ",")
}

func (st *state) renderEnum(prefix []string, item *graph.Item, e *ir.Enum) {
	st.p.sep()
	st.writeDocs(item)
	st.writeDerives(item)

	head := vis(item) + "enum " + syntax.EscapeName(item.Name) + syntax.Generics(&e.Generics)
	st.p.open(head + syntax.WhereClause(&e.Generics) + " {")
	for _, v := range e.Variants {
		st.renderVariant(v)
	}
	st.p.close("}")

	st.renderImpls(prefix, item)
}

func (st *state) renderVariant(id ir.ID) {
	vi := st.g.Item(id)
	if vi == nil || !st.include(id, false) {
		return
	}
	v, ok := vi.Inner.(*ir.Variant)
	if !ok {
		return
	}
	st.writeDocs(vi)

	name := syntax.EscapeName(vi.Name)
	disc := ""
	if v.Discriminant != nil {
		disc = " = " + v.Discriminant.Expr
	}

	switch {
	case v.Kind.Struct != nil:
		st.p.open(name + " {")
		for _, f := range v.Kind.Struct.Fields {
			st.renderField(f)
		}
		st.p.close("},")
	case v.Kind.Tuple != nil:
		var parts []string
		for _, f := range v.Kind.Tuple {
			if f == nil {
				continue
			}
			fi := st.g.Item(*f)
			if fi == nil || !st.include(*f, false) {
				continue
			}
			if sf, ok := fi.Inner.(*ir.StructField); ok {
				parts = append(parts, syntax.Type(&sf.Type))
			}
		}
		st.p.line(name + "(" + strings.Join(parts, ", ") + ")" + disc + ",")
	default:
		st.p.line(name + disc + ",")
	}
}

func (st *state) renderImpls(prefix []string, item *graph.Item) {
	for _, child := range item.Children {
		ci := st.g.Item(child)
		if ci == nil || ci.Kind != graph.KindImpl {
			continue
		}
		impl, ok := ci.Inner.(*ir.Impl)
		if !ok || !st.include(child, false) {
			continue
		}
		st.renderImpl(prefix, ci, impl)
	}
}

func (st *state) renderImpl(prefix []string, item *graph.Item, impl *ir.Impl) {
	forType := syntax.Type(&impl.For)
	childPrefix := append(append([]string(nil), prefix...), forType)

	var head strings.Builder
	if impl.IsUnsafe {
		head.WriteString("unsafe ")
	}
	head.WriteString("impl")
	head.WriteString(syntax.Generics(&impl.Generics))
	head.WriteString(" ")
	if impl.Trait != nil {
		head.WriteString(syntax.Path(impl.Trait))
		head.WriteString(" for ")
	}
	head.WriteString(forType)
	head.WriteString(syntax.WhereClause(&impl.Generics))

	st.p.sep()
	st.writeDocs(item)
	st.p.open(head.String() + " {")
	for _, child := range item.Children {
		st.renderImplMember(childPrefix, st.g.Item(child))
	}
	st.p.close("}")
}

func (st *state) renderImplMember(prefix []string, item *graph.Item) {
	if item == nil || !st.include(item.ID, false) {
		return
	}
	if st.skipByPath(prefix, item) {
		return
	}
	switch inner := item.Inner.(type) {
	case *ir.Function:
		st.renderFunction(item, inner, false)
	case *ir.Constant:
		st.writeDocs(item)
		st.p.line("const " + syntax.EscapeName(item.Name) + ": " +
			syntax.Type(&inner.Type) + " = " + inner.Const.Expr + ";")
	case *ir.AssocConst:
		st.writeDocs(item)
		val := ""
		if inner.Value != nil {
			val = " = " + *inner.Value
		}
		st.p.line("const " + syntax.EscapeName(item.Name) + ": " +
			syntax.Type(&inner.Type) + val + ";")
	case *ir.AssocType:
		st.writeDocs(item)
		st.p.line(assocTypeDecl(item, inner))
	case *ir.TypeAlias:
		st.renderTypeAlias(item, inner)
	}
}

func (st *state) renderTrait(item *graph.Item, t *ir.Trait) {
	st.p.sep()
	st.writeDocs(item)

	var head strings.Builder
	head.WriteString(vis(item))
	if t.IsUnsafe {
		head.WriteString("unsafe ")
	}
	head.WriteString("trait ")
	head.WriteString(syntax.EscapeName(item.Name))
	head.WriteString(syntax.Generics(&t.Generics))
	if bounds := syntax.GenericBounds(t.Bounds); bounds != "" {
		head.WriteString(": ")
		head.WriteString(bounds)
	}
	head.WriteString(syntax.WhereClause(&t.Generics))

	st.p.open(head.String() + " {")
	for _, child := range item.Children {
		st.renderTraitMember(st.g.Item(child))
	}
	st.p.close("}")
}

func (st *state) renderTraitMember(item *graph.Item) {
	if item == nil || !st.include(item.ID, false) {
		return
	}
	switch inner := item.Inner.(type) {
	case *ir.Function:
		st.renderFunction(item, inner, true)
	case *ir.AssocConst:
		st.writeDocs(item)
		val := ""
		if inner.Value != nil {
			val = " = " + *inner.Value
		}
		st.p.line("const " + syntax.EscapeName(item.Name) + ": " +
			syntax.Type(&inner.Type) + val + ";")
	case *ir.AssocType:
		st.writeDocs(item)
		st.p.line(assocTypeDecl(item, inner))
	}
}

func assocTypeDecl(item *graph.Item, at *ir.AssocType) string {
	s := "type " + syntax.EscapeName(item.Name) + syntax.Generics(&at.Generics)
	if bounds := syntax.GenericBounds(at.Bounds); bounds != "" {
		s += ": " + bounds
	}
	if at.Type != nil {
		s += " = " + syntax.Type(at.Type)
	}
	return s + ";"
}

// renderFunction emits a signature with an empty body, or a trailing
// semicolon for trait methods without a default body.
func (st *state) renderFunction(item *graph.Item, fn *ir.Function, traitMember bool) {
	st.p.sep()
	st.writeDocs(item)

	var b strings.Builder
	b.WriteString(vis(item))
	if fn.Header.IsConst {
		b.WriteString("const ")
	}
	if fn.Header.IsAsync {
		b.WriteString("async ")
	}
	if fn.Header.IsUnsafe {
		b.WriteString("unsafe ")
	}
	b.WriteString("fn ")
	b.WriteString(syntax.EscapeName(item.Name))
	b.WriteString(syntax.Generics(&fn.Generics))
	b.WriteString("(")
	b.WriteString(syntax.FunctionArgs(&fn.Sig))
	b.WriteString(")")
	b.WriteString(syntax.ReturnType(&fn.Sig))
	b.WriteString(syntax.WhereClause(&fn.Generics))

	if traitMember && !fn.HasBody {
		st.p.line(b.String() + ";")
	} else {
		st.p.line(b.String() + " {}")
	}
}

func (st *state) renderTypeAlias(item *graph.Item, ta *ir.TypeAlias) {
	st.p.sep()
	st.writeDocs(item)
	st.p.line(vis(item) + "type " + syntax.EscapeName(item.Name) +
		syntax.Generics(&ta.Generics) + syntax.WhereClause(&ta.Generics) +
		" = " + syntax.Type(&ta.Type) + ";")
}

// renderUse inlines local targets so re-exported items appear at their
// public path, and prints foreign imports as pub use lines.
func (st *state) renderUse(prefix []string, item *graph.Item, use *ir.Use) {
	if use.ID != nil && !use.IsGlob {
		if target := st.g.Item(*use.ID); target != nil {
			if st.inlining[target.ID] {
				return
			}
			st.inlining[target.ID] = true
			st.renderItem(prefix, target, true)
			delete(st.inlining, target.ID)
			return
		}
	}
	if use.IsGlob && use.ID != nil {
		if target := st.g.Item(*use.ID); target != nil && target.Kind == graph.KindModule {
			if st.inlining[target.ID] {
				return
			}
			st.inlining[target.ID] = true
			for _, child := range target.Children {
				st.renderItem(prefix, st.g.Item(child), false)
			}
			delete(st.inlining, target.ID)
			return
		}
	}

	source := syntax.EscapePath(use.Source)
	st.p.sep()
	st.writeDocs(item)
	if use.IsGlob {
		st.p.line("pub use " + source + "::*;")
		return
	}
	if last := lastPathSegment(use.Source); use.Name != "" && use.Name != last {
		st.p.line("pub use " + source + " as " + syntax.EscapeName(use.Name) + ";")
		return
	}
	st.p.line("pub use " + source + ";")
}

var macroPlaceholderRe = regexp.MustCompile(`\}\s*\{\s*\.\.\.\s*\}\s*$`)

// renderMacro prints a macro_rules definition from its source text,
// escaping reserved names and stripping the invalid placeholder block the
// doc generator appends to new-style macros.
func (st *state) renderMacro(item *graph.Item, src string) {
	st.p.sep()
	st.writeDocs(item)
	st.p.line("#[macro_export]")

	if strings.HasPrefix(src, "macro ") {
		src = macroPlaceholderRe.ReplaceAllString(src, "}")
	}
	if rest, ok := strings.CutPrefix(src, "macro_rules!"); ok {
		trimmed := strings.TrimLeft(rest, " \t")
		if i := strings.IndexAny(trimmed, " \t{"); i > 0 && syntax.IsReservedWord(trimmed[:i]) {
			src = "macro_rules! r#" + trimmed
		}
	}
	for _, l := range strings.Split(src, "\n") {
		st.p.line(l)
	}
}

func (st *state) renderProcMacro(item *graph.Item, pm *ir.ProcMacro) {
	st.p.sep()
	st.writeDocs(item)

	name := syntax.EscapeName(item.Name)
	args := "input: proc_macro::TokenStream"
	switch pm.Kind {
	case "derive":
		if len(pm.Helpers) > 0 {
			st.p.line("#[proc_macro_derive(" + name + ", attributes(" +
				strings.Join(pm.Helpers, ", ") + "))]")
		} else {
			st.p.line("#[proc_macro_derive(" + name + ")]")
		}
	case "attr":
		st.p.line("#[proc_macro_attribute]")
		args = "attr: proc_macro::TokenStream, item: proc_macro::TokenStream"
	default:
		st.p.line("#[proc_macro]")
	}
	st.p.line("pub fn " + name + "(" + args + ") -> proc_macro::TokenStream {}")
}

func vis(item *graph.Item) string {
	switch item.Visibility.Kind {
	case "public":
		return "pub "
	case "crate":
		return "pub(crate) "
	case "restricted":
		return "pub(in " + item.Visibility.Restricted + ") "
	default:
		return ""
	}
}

func lastPathSegment(path string) string {
	if i := strings.LastIndex(path, "::"); i >= 0 {
		return path[i+2:]
	}
	return path
}

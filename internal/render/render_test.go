package render

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/Alb-O/ruskel/internal/graph"
	"github.com/Alb-O/ruskel/internal/ir"
	"github.com/Alb-O/ruskel/internal/project"
)

func testItem(id int, name, visibility, inner string) string {
	return testItemDocs(id, name, visibility, "", inner)
}

func testItemDocs(id int, name, visibility, docs, inner string) string {
	nameJSON := "null"
	if name != "" {
		nameJSON = fmt.Sprintf("%q", name)
	}
	docsJSON := "null"
	if docs != "" {
		docsJSON = fmt.Sprintf("%q", docs)
	}
	return fmt.Sprintf(`"%d": {"id": %d, "crate_id": 0, "name": %s, "visibility": %q, "docs": %s, "attrs": [], "inner": %s}`,
		id, id, nameJSON, visibility, docsJSON, inner)
}

func testItemAttrs(id int, name, visibility, inner string, attrs ...string) string {
	nameJSON := "null"
	if name != "" {
		nameJSON = fmt.Sprintf("%q", name)
	}
	attrJSON := make([]string, len(attrs))
	for i, a := range attrs {
		attrJSON[i] = fmt.Sprintf("%q", a)
	}
	return fmt.Sprintf(`"%d": {"id": %d, "crate_id": 0, "name": %s, "visibility": %q, "docs": null, "attrs": [%s], "inner": %s}`,
		id, id, nameJSON, visibility, strings.Join(attrJSON, ","), inner)
}

func buildGraph(t *testing.T, items ...string) *graph.Graph {
	t.Helper()
	doc := fmt.Sprintf(`{"format_version": 43, "root": 0, "crate_version": null, "index": {%s}, "paths": {}, "external_crates": {}}`,
		strings.Join(items, ","))
	crate, err := ir.Decode([]byte(doc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	g, err := graph.Build(crate)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g
}

func moduleInner(children ...int) string {
	parts := make([]string, len(children))
	for i, c := range children {
		parts[i] = fmt.Sprint(c)
	}
	return fmt.Sprintf(`{"module": {"items": [%s], "is_crate": false}}`, strings.Join(parts, ","))
}

const unitStructInner = `{"struct": {"kind": "unit", "generics": {"params": [], "where_predicates": []}, "impls": []}}`

func structWithImpls(impls ...int) string {
	parts := make([]string, len(impls))
	for i, id := range impls {
		parts[i] = fmt.Sprint(id)
	}
	return fmt.Sprintf(`{"struct": {"kind": "unit", "generics": {"params": [], "where_predicates": []}, "impls": [%s]}}`,
		strings.Join(parts, ","))
}

func plainStruct(impls string, fields ...int) string {
	parts := make([]string, len(fields))
	for i, id := range fields {
		parts[i] = fmt.Sprint(id)
	}
	return fmt.Sprintf(`{"struct": {"kind": {"plain": {"fields": [%s], "has_stripped_fields": false}}, "generics": {"params": [], "where_predicates": []}, "impls": [%s]}}`,
		strings.Join(parts, ","), impls)
}

func implInner(trait, forPath string, items ...int) string {
	parts := make([]string, len(items))
	for i, id := range items {
		parts[i] = fmt.Sprint(id)
	}
	traitJSON := "null"
	if trait != "" {
		traitJSON = fmt.Sprintf(`{"path": %q, "id": 900, "args": null}`, trait)
	}
	return fmt.Sprintf(`{"impl": {"is_unsafe": false, "generics": {"params": [], "where_predicates": []}, "trait": %s, "for": {"resolved_path": {"path": %q, "id": 1, "args": null}}, "items": [%s], "is_synthetic": false, "blanket_impl": null}}`,
		traitJSON, forPath, strings.Join(parts, ","))
}

func fnInner(hasBody bool, selfRef bool, output string) string {
	inputs := ""
	if selfRef {
		inputs = `["self", {"borrowed_ref": {"lifetime": null, "is_mutable": false, "type": {"generic": "Self"}}}]`
	}
	outputJSON := "null"
	if output != "" {
		outputJSON = fmt.Sprintf(`{"primitive": %q}`, output)
	}
	return fmt.Sprintf(`{"function": {"sig": {"inputs": [%s], "output": %s, "is_c_variadic": false}, "generics": {"params": [], "where_predicates": []}, "header": {"is_const": false, "is_unsafe": false, "is_async": false}, "has_body": %t}}`,
		inputs, outputJSON, hasBody)
}

func renderFiltered(t *testing.T, g *graph.Graph, pathFilter string) (string, error) {
	t.Helper()
	filter := project.Filter(g, project.FilterOptions{})
	return Skeleton(g, filter, nil, pathFilter)
}

func assertText(t *testing.T, got, want string) {
	t.Helper()
	if got == want {
		return
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  3,
	})
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	t.Errorf("output mismatch:\n%s", diff)
}

func TestSkeletonStructWithDerive(t *testing.T) {
	t.Parallel()

	g := buildGraph(t,
		testItem(0, "demo", "public", moduleInner(1)),
		testItemDocs(1, "Point", "public", "A point.", structWithImpls(2)),
		testItem(2, "", "default", implInner("core::clone::Clone", "Point", 3)),
		testItem(3, "clone", "default", fnInner(true, true, "")),
	)

	got, err := renderFiltered(t, g, "")
	if err != nil {
		t.Fatal(err)
	}
	assertText(t, got, `pub mod demo {
    /// A point.
    #[derive(Clone)]
    pub struct Point;
}
`)
}

func TestSkeletonFeatureGatedDerive(t *testing.T) {
	t.Parallel()

	g := buildGraph(t,
		testItem(0, "demo", "public", moduleInner(1)),
		testItem(1, "Point", "public", structWithImpls(2)),
		testItemAttrs(2, "", "default", implInner("core::clone::Clone", "Point", 3), `#[cfg(feature = "extra")]`),
		testItem(3, "clone", "default", fnInner(true, true, "")),
	)

	filter := project.Filter(g, project.FilterOptions{})
	got, err := Skeleton(g, filter, nil, "")
	if err != nil {
		t.Fatal(err)
	}
	assertText(t, got, `pub mod demo {
    pub struct Point;
}
`)

	filter = project.Filter(g, project.FilterOptions{Features: map[string]bool{"extra": true}})
	got, err = Skeleton(g, filter, nil, "")
	if err != nil {
		t.Fatal(err)
	}
	assertText(t, got, `pub mod demo {
    #[derive(Clone)]
    pub struct Point;
}
`)
}

func TestSkeletonPlainStructAndImpl(t *testing.T) {
	t.Parallel()

	g := buildGraph(t,
		testItem(0, "demo", "public", moduleInner(1)),
		testItem(1, "Widget", "public", plainStruct("4", 2, 3)),
		testItem(2, "x", "public", `{"struct_field": {"primitive": "u32"}}`),
		testItem(3, "hidden", "default", `{"struct_field": {"primitive": "u8"}}`),
		testItem(4, "", "default", implInner("", "Widget", 5)),
		testItem(5, "len", "public", fnInner(true, true, "usize")),
	)

	got, err := renderFiltered(t, g, "")
	if err != nil {
		t.Fatal(err)
	}
	assertText(t, got, `pub mod demo {
    pub struct Widget {
        pub x: u32,
    }

    impl Widget {
        pub fn len(&self) -> usize {}
    }
}
`)
}

func TestSkeletonEnum(t *testing.T) {
	t.Parallel()

	g := buildGraph(t,
		testItem(0, "demo", "public", moduleInner(1)),
		testItem(1, "Status", "public", `{"enum": {"generics": {"params": [], "where_predicates": []}, "variants": [2, 3, 4], "impls": []}}`),
		testItem(2, "Active", "default", `{"variant": {"kind": "plain", "discriminant": null}}`),
		testItem(3, "Code", "default", `{"variant": {"kind": "plain", "discriminant": {"expr": "4", "value": "4"}}}`),
		testItem(4, "Pair", "default", `{"variant": {"kind": {"tuple": [5, 6]}, "discriminant": null}}`),
		testItem(5, "0", "default", `{"struct_field": {"primitive": "u8"}}`),
		testItem(6, "1", "default", `{"struct_field": {"primitive": "u16"}}`),
	)

	got, err := renderFiltered(t, g, "")
	if err != nil {
		t.Fatal(err)
	}
	assertText(t, got, `pub mod demo {
    pub enum Status {
        Active,
        Code = 4,
        Pair(u8, u16),
    }
}
`)
}

func TestSkeletonTrait(t *testing.T) {
	t.Parallel()

	g := buildGraph(t,
		testItem(0, "demo", "public", moduleInner(1)),
		testItem(1, "Render", "public", `{"trait": {"is_auto": false, "is_unsafe": false, "items": [2, 3], "generics": {"params": [], "where_predicates": []}, "bounds": [], "implementations": []}}`),
		testItem(2, "draw", "default", fnInner(false, true, "")),
		testItem(3, "outline", "default", fnInner(true, true, "")),
	)

	got, err := renderFiltered(t, g, "")
	if err != nil {
		t.Fatal(err)
	}
	assertText(t, got, `pub mod demo {
    pub trait Render {
        fn draw(&self);

        fn outline(&self) {}
    }
}
`)
}

func TestSkeletonTraitImpl(t *testing.T) {
	t.Parallel()

	g := buildGraph(t,
		testItem(0, "demo", "public", moduleInner(1)),
		testItem(1, "Point", "public", structWithImpls(2)),
		testItem(2, "", "default", implInner("renderer::Draw", "Point", 3)),
		testItem(3, "draw", "default", fnInner(true, true, "")),
	)

	got, err := renderFiltered(t, g, "")
	if err != nil {
		t.Fatal(err)
	}
	assertText(t, got, `pub mod demo {
    pub struct Point;

    impl renderer::Draw for Point {
        fn draw(&self) {}
    }
}
`)
}

func TestSkeletonPathFilter(t *testing.T) {
	t.Parallel()

	g := buildGraph(t,
		testItem(0, "demo", "public", moduleInner(1, 3)),
		testItem(1, "a", "public", moduleInner(2)),
		testItem(2, "X", "public", unitStructInner),
		testItem(3, "b", "public", moduleInner(4)),
		testItem(4, "Y", "public", unitStructInner),
	)

	want := `pub mod demo {
    pub mod a {
        pub struct X;
    }
}
`
	got, err := renderFiltered(t, g, "a")
	if err != nil {
		t.Fatal(err)
	}
	assertText(t, got, want)

	// Filtering on a nested item keeps the enclosing module shell.
	got, err = renderFiltered(t, g, "a::X")
	if err != nil {
		t.Fatal(err)
	}
	assertText(t, got, want)
}

func TestSkeletonPathFilterUnmatched(t *testing.T) {
	t.Parallel()

	g := buildGraph(t,
		testItem(0, "demo", "public", moduleInner(1)),
		testItem(1, "Point", "public", unitStructInner),
	)

	_, err := renderFiltered(t, g, "does_not_exist")
	if !errors.Is(err, ErrFilterNotMatched) {
		t.Errorf("got %v, want ErrFilterNotMatched", err)
	}
}

func TestSkeletonUseInlining(t *testing.T) {
	t.Parallel()

	g := buildGraph(t,
		testItem(0, "demo", "public", moduleInner(1, 3)),
		testItem(1, "hidden", "default", moduleInner(2)),
		testItemDocs(2, "Secret", "public", "Hush.", unitStructInner),
		testItem(3, "", "public", `{"use": {"source": "hidden::Secret", "name": "Secret", "id": 2, "is_glob": false}}`),
	)

	got, err := renderFiltered(t, g, "")
	if err != nil {
		t.Fatal(err)
	}
	assertText(t, got, `pub mod demo {
    /// Hush.
    pub struct Secret;
}
`)
}

func TestSkeletonForeignUse(t *testing.T) {
	t.Parallel()

	g := buildGraph(t,
		testItem(0, "demo", "public", moduleInner(1, 2)),
		testItem(1, "", "public", `{"use": {"source": "std::fmt::Display", "name": "Display", "id": null, "is_glob": false}}`),
		testItem(2, "", "public", `{"use": {"source": "std::collections::HashMap", "name": "Map", "id": null, "is_glob": false}}`),
	)

	got, err := renderFiltered(t, g, "")
	if err != nil {
		t.Fatal(err)
	}
	assertText(t, got, `pub mod demo {
    pub use std::fmt::Display;

    pub use std::collections::HashMap as Map;
}
`)
}

func TestSkeletonMacro(t *testing.T) {
	t.Parallel()

	g := buildGraph(t,
		testItem(0, "demo", "public", moduleInner(1)),
		testItem(1, "check", "public", `{"macro": "macro_rules! check {\n    () => {};\n}"}`),
	)

	got, err := renderFiltered(t, g, "")
	if err != nil {
		t.Fatal(err)
	}
	assertText(t, got, `pub mod demo {
    #[macro_export]
    macro_rules! check {
        () => {};
    }
}
`)
}

func TestSkeletonSearchSelection(t *testing.T) {
	t.Parallel()

	g := buildGraph(t,
		testItem(0, "demo", "public", moduleInner(1, 5)),
		testItem(1, "Widget", "public", structWithImpls(2)),
		testItem(2, "", "default", implInner("", "Widget", 3, 4)),
		testItem(3, "render", "public", fnInner(true, true, "")),
		testItem(4, "other", "public", fnInner(true, true, "")),
		testItem(5, "unrelated", "public", fnInner(true, false, "")),
	)

	filter := project.Filter(g, project.FilterOptions{})
	sel, results := project.Search(g, filter, project.SearchOptions{Query: "render"})
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}

	got, err := Skeleton(g, filter, sel, "")
	if err != nil {
		t.Fatal(err)
	}
	assertText(t, got, `pub mod demo {
    pub struct Widget;

    impl Widget {
        pub fn render(&self) {}
    }
}
`)
}

func TestSkeletonModuleDocs(t *testing.T) {
	t.Parallel()

	g := buildGraph(t,
		testItemDocs(0, "demo", "public", "Demo crate.\n\nMore detail.", moduleInner(1)),
		testItem(1, "Point", "public", unitStructInner),
	)

	got, err := renderFiltered(t, g, "")
	if err != nil {
		t.Fatal(err)
	}
	assertText(t, got, `pub mod demo {
    //! Demo crate.
    //!
    //! More detail.

    pub struct Point;
}
`)
}

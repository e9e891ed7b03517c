package project

import (
	"testing"

	"github.com/Alb-O/ruskel/internal/ir"
)

func TestParseDomains(t *testing.T) {
	t.Parallel()

	tests := []struct {
		spec    string
		want    Domain
		wantErr bool
	}{
		{"name", DomainName, false},
		{"name,doc", DomainName | DomainDoc, false},
		{"name, doc ,signature", DomainName | DomainDoc | DomainSignature, false},
		{"path", DomainPath, false},
		{"bogus", 0, true},
		{"", 0, true},
		{",,", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseDomains(tt.spec)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDomains(%q) error = %v, wantErr %t", tt.spec, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDomains(%q) = %v, want %v", tt.spec, got, tt.want)
		}
	}
}

func TestDefaultDomainsExcludePath(t *testing.T) {
	t.Parallel()

	d := DefaultDomains()
	if !d.Has(DomainName) || !d.Has(DomainDoc) || !d.Has(DomainSignature) {
		t.Errorf("DefaultDomains() = %v, missing a default facet", d)
	}
	if d.Has(DomainPath) {
		t.Error("DefaultDomains() includes path")
	}
}

// searchGraph builds a crate with a struct (one method behind an impl), a
// documented function, and a private item that the base filter removes.
func searchFixture(t *testing.T) (*Projection, *Projection, []Result, func(opts SearchOptions) (*Projection, []Result)) {
	t.Helper()

	docFn := `{"function": {"sig": {"inputs": [], "output": null, "is_c_variadic": false}, "generics": {"params": [], "where_predicates": []}, "header": {"is_const": false, "is_unsafe": false, "is_async": false}, "has_body": true}}`
	g := buildGraph(t,
		testItem(0, "demo", "public", moduleInner(1, 5, 6)),
		testItem(1, "Widget", "public", structWithImpls(2)),
		testItem(2, "", "default", implInner("", false, 3, 4)),
		testItem(3, "render", "public", methodInner),
		testItem(4, "secret_render", "default", methodInner),
		testItem(5, "unrelated", "public", docFn),
		testItem(6, "private_widget", "default", docFn),
	)

	base := Filter(g, FilterOptions{})
	run := func(opts SearchOptions) (*Projection, []Result) {
		return Search(g, base, opts)
	}
	p, results := run(SearchOptions{Query: "render"})
	return base, p, results, run
}

func TestSearchMatchesAndAncestors(t *testing.T) {
	t.Parallel()

	base, p, results, _ := searchFixture(t)

	if len(results) != 1 {
		t.Fatalf("got %d results, want 1: %v", len(results), results)
	}
	if results[0].Path != "demo::Widget::render" {
		t.Errorf("result path = %q", results[0].Path)
	}

	// Match plus the ancestor chain impl -> struct -> root.
	for _, id := range []ir.ID{3, 2, 1, 0} {
		if !p.Contains(id) {
			t.Errorf("projection missing id %d", id)
		}
	}
	if !p.Matched(3) {
		t.Error("direct match not flagged")
	}
	if p.Matched(1) {
		t.Error("ancestor flagged as a direct match")
	}
	if p.Contains(5) {
		t.Error("non-matching sibling included")
	}

	// Everything in the projection survived the base filter.
	for _, id := range p.IDs() {
		if !base.Contains(id) {
			t.Errorf("projection id %d is not in the base filter", id)
		}
	}
}

func TestDirectMatchOnlyIsSubsetOfDefault(t *testing.T) {
	t.Parallel()

	_, _, _, run := searchFixture(t)

	full, fullResults := run(SearchOptions{Query: "widget"})
	narrow, narrowResults := run(SearchOptions{Query: "widget", DirectMatchOnly: true})

	for _, id := range narrow.IDs() {
		if !full.Contains(id) {
			t.Errorf("direct-match-only included id %d that the default search did not", id)
		}
	}
	// The direct matches themselves are the same either way.
	if len(narrowResults) != len(fullResults) {
		t.Errorf("results differ: %v vs %v", narrowResults, fullResults)
	}
}

func TestSearchSkipsFilteredItems(t *testing.T) {
	t.Parallel()

	_, p, _, run := searchFixture(t)

	if p.Contains(4) || p.Contains(6) {
		t.Error("private item matched despite being filtered out of the base")
	}

	_, results := run(SearchOptions{Query: "widget"})
	for _, r := range results {
		if r.ID == 6 {
			t.Error("filtered private item reported as a match")
		}
	}
}

func TestSearchContainerExpansion(t *testing.T) {
	t.Parallel()

	_, _, _, run := searchFixture(t)

	// Matching the struct pulls its surviving members into the projection.
	p, _ := run(SearchOptions{Query: "Widget"})
	for _, id := range []ir.ID{1, 2, 3} {
		if !p.Contains(id) {
			t.Errorf("expanded projection missing id %d", id)
		}
	}
	if !p.Expands(1) || !p.Expands(3) {
		t.Error("matched container or its members not flagged for expansion")
	}
	if p.Contains(4) {
		t.Error("expansion resurrected a filtered private method")
	}

	// DirectMatchOnly keeps the container collapsed.
	p, _ = run(SearchOptions{Query: "Widget", DirectMatchOnly: true})
	if p.Contains(3) {
		t.Error("DirectMatchOnly still expanded the container")
	}
	if !p.Contains(1) {
		t.Error("DirectMatchOnly dropped the match itself")
	}
}

func TestSearchCaseSensitivity(t *testing.T) {
	t.Parallel()

	_, _, _, run := searchFixture(t)

	if _, results := run(SearchOptions{Query: "WIDGET"}); len(results) == 0 {
		t.Error("case-insensitive search found nothing for WIDGET")
	}
	if _, results := run(SearchOptions{Query: "WIDGET", CaseSensitive: true}); len(results) != 0 {
		t.Errorf("case-sensitive search matched %v", results)
	}
}

func TestSearchDomains(t *testing.T) {
	t.Parallel()

	docFn := `{"function": {"sig": {"inputs": [], "output": null, "is_c_variadic": false}, "generics": {"params": [], "where_predicates": []}, "header": {"is_const": false, "is_unsafe": false, "is_async": false}, "has_body": true}}`
	g := buildGraph(t,
		testItem(0, "demo", "public", moduleInner(1, 2)),
		testItem(1, "nozzle", "public", moduleInner(3)),
		testItem(2, "plain", "public", docFn),
		testItem(3, "flow_rate", "public", docFn),
	)
	base := Filter(g, FilterOptions{})

	// Path matching is opt-in: the default domains see no "nozzle" in the
	// leaf's name, docs, or signature.
	_, results := Search(g, base, SearchOptions{Query: "nozzle"})
	if len(results) != 1 || results[0].ID != 1 {
		t.Fatalf("default-domain results = %v, want just the module", results)
	}

	_, results = Search(g, base, SearchOptions{Query: "nozzle", Domains: DomainPath})
	found := false
	for _, r := range results {
		if r.ID == 3 {
			found = true
		}
	}
	if !found {
		t.Errorf("path-domain results = %v, want the nested function included", results)
	}
}

func TestSearchResultOrder(t *testing.T) {
	t.Parallel()

	docFn := `{"function": {"sig": {"inputs": [], "output": null, "is_c_variadic": false}, "generics": {"params": [], "where_predicates": []}, "header": {"is_const": false, "is_unsafe": false, "is_async": false}, "has_body": true}}`
	g := buildGraph(t,
		testItem(0, "demo", "public", moduleInner(2, 1)),
		testItem(1, "alpha_common", "public", docFn),
		testItem(2, "beta_common", "public", docFn),
	)
	base := Filter(g, FilterOptions{})

	_, results := Search(g, base, SearchOptions{Query: "common"})
	if len(results) != 2 || results[0].ID != 2 || results[1].ID != 1 {
		t.Errorf("results = %v, want declaration order [2 1]", results)
	}
}

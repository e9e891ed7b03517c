package project

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Alb-O/ruskel/internal/graph"
	"github.com/Alb-O/ruskel/internal/ir"
)

// Domain is a bitset of item facets a search query is matched against.
type Domain uint8

const (
	DomainName Domain = 1 << iota
	DomainDoc
	DomainSignature
	DomainPath
)

// DefaultDomains matches names, doc text, and signatures. Paths are opt-in
// since every descendant of a matching module would otherwise match too.
func DefaultDomains() Domain {
	return DomainName | DomainDoc | DomainSignature
}

// Has reports whether d includes the given facet.
func (d Domain) Has(facet Domain) bool {
	return d&facet != 0
}

// ParseDomain maps a spec word to its facet.
func ParseDomain(word string) (Domain, error) {
	switch word {
	case "name":
		return DomainName, nil
	case "doc":
		return DomainDoc, nil
	case "signature":
		return DomainSignature, nil
	case "path":
		return DomainPath, nil
	default:
		return 0, fmt.Errorf("unknown search domain %q (expected name, doc, signature, or path)", word)
	}
}

// ParseDomains parses a comma-separated domain spec such as "name,doc".
func ParseDomains(spec string) (Domain, error) {
	var d Domain
	for _, word := range strings.Split(spec, ",") {
		word = strings.TrimSpace(word)
		if word == "" {
			continue
		}
		facet, err := ParseDomain(word)
		if err != nil {
			return 0, err
		}
		d |= facet
	}
	if d == 0 {
		return 0, fmt.Errorf("empty search domain spec %q", spec)
	}
	return d, nil
}

// SearchOptions control query matching.
type SearchOptions struct {
	Query           string
	Domains         Domain // zero value means DefaultDomains()
	CaseSensitive   bool
	DirectMatchOnly bool
}

// Result is one direct match, reported in declaration order.
type Result struct {
	ID   ir.ID
	Kind graph.Kind
	Path string
}

// Search matches the query against every item in the base projection and
// returns the search projection together with the direct matches. The
// projection contains the matches plus their ancestor chains; matched
// containers are flagged for expansion unless DirectMatchOnly is set, so a
// hit on a struct shows its fields while a hit on one method shows only
// that method under a collapsed impl heading.
func Search(g *graph.Graph, base *Projection, opts SearchOptions) (*Projection, []Result) {
	domains := opts.Domains
	if domains == 0 {
		domains = DefaultDomains()
	}
	query := opts.Query
	if !opts.CaseSensitive {
		query = strings.ToLower(query)
	}

	p := newProjection(true)
	var results []Result
	for _, id := range base.IDs() {
		item := g.Item(id)
		if item == nil || item.ID == g.Root {
			continue
		}
		if !matches(g, item, query, domains, opts.CaseSensitive) {
			continue
		}
		p.matches[id] = true
		p.addWithAncestors(g, id)
		if !opts.DirectMatchOnly {
			p.expand[id] = true
			expandDescendants(g, base, p, id)
		}
		results = append(results, Result{ID: id, Kind: item.Kind, Path: g.CanonicalPath(id)})
	}

	sort.Slice(results, func(i, j int) bool {
		a, b := g.Item(results[i].ID), g.Item(results[j].ID)
		return a.Order < b.Order
	})
	return p, results
}

// expandDescendants pulls every base-surviving descendant of a matched
// container into the projection, so the include set is exactly what renders.
func expandDescendants(g *graph.Graph, base, p *Projection, id ir.ID) {
	item := g.Item(id)
	if item == nil {
		return
	}
	for _, child := range item.Children {
		if !base.Contains(child) {
			continue
		}
		p.include[child] = true
		p.expand[child] = true
		expandDescendants(g, base, p, child)
	}
}

func matches(g *graph.Graph, item *graph.Item, query string, domains Domain, caseSensitive bool) bool {
	fold := func(s string) bool {
		if !caseSensitive {
			s = strings.ToLower(s)
		}
		return strings.Contains(s, query)
	}
	if domains.Has(DomainName) && item.Name != "" && fold(item.Name) {
		return true
	}
	if domains.Has(DomainDoc) && item.Docs != "" && fold(item.Docs) {
		return true
	}
	if domains.Has(DomainSignature) && fold(Signature(item)) {
		return true
	}
	if domains.Has(DomainPath) && fold(g.CanonicalPath(item.ID)) {
		return true
	}
	return false
}

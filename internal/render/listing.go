package render

import (
	"strings"

	"github.com/Alb-O/ruskel/internal/graph"
	"github.com/Alb-O/ruskel/internal/project"
)

// Entry is one listing line: a lowercase kind label and a canonical path.
type Entry struct {
	Kind graph.Kind
	Path string
}

// Listing flattens a projection into entries in declaration order. Use
// declarations are omitted since their targets already appear under their
// re-exported paths.
func Listing(g *graph.Graph, p *project.Projection) []Entry {
	ids := p.IDs()
	g.SortByDeclaration(ids)

	entries := make([]Entry, 0, len(ids))
	for _, id := range ids {
		item := g.Item(id)
		if item == nil || item.Kind == graph.KindUse {
			continue
		}
		entries = append(entries, Entry{Kind: item.Kind, Path: g.CanonicalPath(id)})
	}
	return entries
}

// SearchListing converts direct search results into listing entries.
func SearchListing(results []project.Result) []Entry {
	entries := make([]Entry, 0, len(results))
	for _, r := range results {
		if r.Kind == graph.KindUse {
			continue
		}
		entries = append(entries, Entry{Kind: r.Kind, Path: r.Path})
	}
	return entries
}

// FormatListing renders entries as lines with the kind labels padded to a
// common width.
func FormatListing(entries []Entry) string {
	width := 0
	for _, e := range entries {
		if len(e.Kind) > width {
			width = len(e.Kind)
		}
	}

	var b strings.Builder
	for _, e := range entries {
		label := string(e.Kind)
		b.WriteString(label)
		for i := len(label); i < width; i++ {
			b.WriteByte(' ')
		}
		b.WriteByte(' ')
		b.WriteString(e.Path)
		b.WriteByte('\n')
	}
	return b.String()
}

package graph

import (
	"sort"
	"strings"

	"github.com/Alb-O/ruskel/internal/ir"
)

// maxPathDepth bounds traversal so re-export cycles terminate.
const maxPathDepth = 32

type pathCandidate struct {
	path     string
	segments int
	reexport bool
}

// resolvePaths computes every reachable path for every item and designates
// one canonical path per item. Precedence: a direct declaration path beats a
// re-exported path, then the shortest path wins, then the lexicographically
// earliest. The result is stable for the lifetime of the graph.
func (g *Graph) resolvePaths() {
	candidates := make(map[ir.ID][]pathCandidate)

	type visit struct {
		id       ir.ID
		path     string
		depth    int
		reexport bool
	}
	seen := make(map[visit]bool)

	queue := []visit{{id: g.Root, path: g.CrateName}}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		if v.depth > maxPathDepth || seen[v] {
			continue
		}
		seen[v] = true

		item := g.Items[v.id]
		if item == nil {
			continue
		}
		candidates[v.id] = append(candidates[v.id], pathCandidate{
			path:     v.path,
			segments: strings.Count(v.path, "::") + 1,
			reexport: v.reexport,
		})

		// Only the module tree contributes path segments here; members of
		// types and traits are assigned below their container afterwards.
		if item.Kind != KindModule && item.Kind != KindCrate {
			continue
		}

		for _, childID := range item.Children {
			child := g.Items[childID]
			if child == nil {
				continue
			}
			switch use := child.Inner.(type) {
			case *ir.Use:
				for _, edge := range g.reexportEdges(use, v.path) {
					queue = append(queue, visit{
						id:       edge.target,
						path:     edge.path,
						depth:    v.depth + 1,
						reexport: true,
					})
				}
			default:
				if child.Name == "" {
					continue
				}
				queue = append(queue, visit{
					id:       childID,
					path:     v.path + "::" + child.Name,
					depth:    v.depth + 1,
					reexport: v.reexport,
				})
			}
		}
	}

	reexportOnly := make(map[ir.ID]bool)
	for id, cands := range candidates {
		sort.Slice(cands, func(i, j int) bool {
			a, b := cands[i], cands[j]
			if a.reexport != b.reexport {
				return !a.reexport
			}
			if a.segments != b.segments {
				return a.segments < b.segments
			}
			return a.path < b.path
		})
		g.canonical[id] = cands[0].path
		reexportOnly[id] = cands[0].reexport
		paths := make([]string, 0, len(cands))
		for _, c := range cands {
			if len(paths) == 0 || paths[len(paths)-1] != c.path {
				paths = append(paths, c.path)
			}
		}
		g.altPaths[id] = paths
	}

	// Members nested below module level (fields, variants, methods, trait
	// items) inherit their container's canonical path. A declaration path
	// assembled here still beats a re-export-only candidate from the walk.
	var assign func(id ir.ID)
	assign = func(id ir.ID) {
		item := g.Items[id]
		if item == nil {
			return
		}
		base := g.canonical[id]
		for _, childID := range item.Children {
			child := g.Items[childID]
			if child == nil {
				continue
			}
			if (g.canonical[childID] == "" || reexportOnly[childID]) && base != "" {
				memberPath := ""
				switch {
				case child.Kind == KindImpl:
					memberPath = base
				case child.Name != "":
					memberPath = base + "::" + child.Name
				}
				if memberPath != "" {
					g.canonical[childID] = memberPath
					reexportOnly[childID] = false
					g.altPaths[childID] = prependPath(g.altPaths[childID], memberPath)
				}
			}
			assign(childID)
		}
	}
	assign(g.Root)
}

// prependPath puts path first in the list, removing any duplicate.
func prependPath(paths []string, path string) []string {
	out := []string{path}
	for _, p := range paths {
		if p != path {
			out = append(out, p)
		}
	}
	return out
}

type reexportEdge struct {
	target ir.ID
	path   string
}

// reexportEdges expands a use declaration into path edges. A glob import of
// a local module contributes one edge per visible member; a named import
// contributes a single aliased edge. Imports of foreign or missing items
// contribute nothing.
func (g *Graph) reexportEdges(use *ir.Use, basePath string) []reexportEdge {
	if use.ID == nil {
		return nil
	}
	target, ok := g.Items[*use.ID]
	if !ok {
		return nil
	}

	if !use.IsGlob {
		return []reexportEdge{{target: target.ID, path: basePath + "::" + use.Name}}
	}

	switch inner := target.Inner.(type) {
	case *ir.Module:
		var edges []reexportEdge
		for _, memberID := range inner.Items {
			member, ok := g.Items[memberID]
			if !ok || member.Name == "" {
				continue
			}
			edges = append(edges, reexportEdge{target: memberID, path: basePath + "::" + member.Name})
		}
		return edges
	case *ir.Enum:
		var edges []reexportEdge
		for _, variantID := range inner.Variants {
			variant, ok := g.Items[variantID]
			if !ok || variant.Name == "" {
				continue
			}
			edges = append(edges, reexportEdge{target: variantID, path: basePath + "::" + variant.Name})
		}
		return edges
	default:
		return nil
	}
}

// Package ruskel is the high-level API tying the pipeline together: target
// resolution, rustdoc JSON decoding, graph building, filtering, search,
// and rendering. It is UI-agnostic and shared by the CLI and the MCP
// server.
package ruskel

import (
	"context"
	"fmt"
	"strings"

	"github.com/Alb-O/ruskel/internal/graph"
	"github.com/Alb-O/ruskel/internal/ir"
	"github.com/Alb-O/ruskel/internal/project"
	"github.com/Alb-O/ruskel/internal/render"
	"github.com/Alb-O/ruskel/internal/target"
)

// Ruskel renders skeletonized, syntactically valid Rust for a crate's API,
// with all implementations omitted.
type Ruskel struct {
	resolver  *target.Resolver
	autoImpls bool
}

// Option configures a Ruskel instance.
type Option func(*Ruskel)

// WithOffline prevents network fetches; only cached or local rustdoc JSON
// can be used.
func WithOffline(offline bool) Option {
	return func(r *Ruskel) { r.resolver.Offline = offline }
}

// WithNoCache bypasses the on-disk rustdoc JSON cache.
func WithNoCache(noCache bool) Option {
	return func(r *Ruskel) { r.resolver.NoCache = noCache }
}

// WithCacheDir overrides the cache location.
func WithCacheDir(dir string) Option {
	return func(r *Ruskel) { r.resolver.CacheDir = dir }
}

// WithAutoImpls renders compiler-synthesized trait impls instead of
// suppressing them.
func WithAutoImpls(autoImpls bool) Option {
	return func(r *Ruskel) { r.autoImpls = autoImpls }
}

// New creates a Ruskel caching under cacheDir.
func New(cacheDir string, opts ...Option) *Ruskel {
	r := &Ruskel{resolver: target.NewResolver(cacheDir)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FeatureOptions select which feature-gated items are visible.
type FeatureOptions struct {
	NoDefault bool
	All       bool
	Enabled   []string
}

func (fo FeatureOptions) filterOptions(private bool, autoImpls bool) project.FilterOptions {
	return project.FilterOptions{
		IncludePrivate: private,
		AutoImpls:      autoImpls,
		Features:       project.EnabledFeatures(fo.Enabled, fo.NoDefault),
		AllFeatures:    fo.All,
	}
}

// Format selects the output rendering. The zero value is the annotated
// markdown default; FormatRust yields one contiguous Rust unit.
type Format int

const (
	FormatMarkdown Format = iota
	FormatRust
)

// RenderOptions control skeleton rendering.
type RenderOptions struct {
	Features     FeatureOptions
	PrivateItems bool
	Format       Format
}

// SearchOptions control query matching. Domains zero means the default
// name|doc|signature set.
type SearchOptions struct {
	Query           string
	Domains         project.Domain
	CaseSensitive   bool
	DirectMatchOnly bool
	Features        FeatureOptions
	PrivateItems    bool
	Format          Format
}

// SearchResponse pairs the direct matches with the rendered skeleton of
// the matches in context.
type SearchResponse struct {
	Results  []project.Result
	Rendered string
}

// inspect acquires and decodes the target, returning the graph and the
// parsed spec.
func (r *Ruskel) inspect(ctx context.Context, spec string) (*graph.Graph, *target.Target, error) {
	t, err := target.Parse(spec)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	data, err := r.resolver.Acquire(ctx, t)
	if err != nil {
		return nil, nil, err
	}
	crate, err := ir.Decode(data)
	if err != nil {
		return nil, nil, err
	}
	g, err := graph.Build(crate)
	if err != nil {
		return nil, nil, err
	}
	return g, t, nil
}

// Render produces the full skeleton for a target. When the public API is
// essentially empty and private items were not requested, it retries with
// private items, which is what binary-only crates need.
func (r *Ruskel) Render(ctx context.Context, spec string, opts RenderOptions) (string, error) {
	g, t, err := r.inspect(ctx, spec)
	if err != nil {
		return "", err
	}

	rendered, err := r.renderGraph(g, t.SubPath, opts, opts.PrivateItems)
	if err != nil {
		return "", err
	}
	if !opts.PrivateItems && isEmptyOutput(rendered) {
		rendered, err = r.renderGraph(g, t.SubPath, opts, true)
		if err != nil {
			return "", err
		}
	}

	if opts.Format == FormatMarkdown {
		return render.Markdown(rendered), nil
	}
	return rendered, nil
}

func (r *Ruskel) renderGraph(g *graph.Graph, subPath string, opts RenderOptions, private bool) (string, error) {
	filter := project.Filter(g, opts.Features.filterOptions(private, r.autoImpls))
	return render.Skeleton(g, filter, nil, subPath)
}

// Search matches the query against the target's filtered API and renders
// only the matches in their ancestor context. An empty result set yields
// an empty rendering and no error.
func (r *Ruskel) Search(ctx context.Context, spec string, opts SearchOptions) (*SearchResponse, error) {
	if strings.TrimSpace(opts.Query) == "" {
		return nil, fmt.Errorf("%w: empty search query", ErrInvalidConfig)
	}
	g, t, err := r.inspect(ctx, spec)
	if err != nil {
		return nil, err
	}

	filter := project.Filter(g, opts.Features.filterOptions(opts.PrivateItems, r.autoImpls))
	sel, results := project.Search(g, filter, project.SearchOptions{
		Query:           opts.Query,
		Domains:         opts.Domains,
		CaseSensitive:   opts.CaseSensitive,
		DirectMatchOnly: opts.DirectMatchOnly,
	})
	if len(results) == 0 {
		return &SearchResponse{}, nil
	}

	rendered, err := render.Skeleton(g, filter, sel, t.SubPath)
	if err != nil {
		return nil, err
	}
	if opts.Format == FormatMarkdown {
		rendered = render.Markdown(rendered)
	}
	return &SearchResponse{Results: results, Rendered: rendered}, nil
}

// List produces the path listing of the target's items, narrowed to the
// direct search matches when a query is given.
func (r *Ruskel) List(ctx context.Context, spec string, opts SearchOptions) ([]render.Entry, error) {
	g, _, err := r.inspect(ctx, spec)
	if err != nil {
		return nil, err
	}

	filter := project.Filter(g, opts.Features.filterOptions(opts.PrivateItems, r.autoImpls))
	if strings.TrimSpace(opts.Query) == "" {
		return render.Listing(g, filter), nil
	}

	_, results := project.Search(g, filter, project.SearchOptions{
		Query:           opts.Query,
		Domains:         opts.Domains,
		CaseSensitive:   opts.CaseSensitive,
		DirectMatchOnly: opts.DirectMatchOnly,
	})
	return render.SearchListing(results), nil
}

// RawJSON returns the acquired rustdoc JSON bytes unchanged, after
// checking that they decode and carry a supported format version.
func (r *Ruskel) RawJSON(ctx context.Context, spec string) ([]byte, error) {
	t, err := target.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	data, err := r.resolver.Acquire(ctx, t)
	if err != nil {
		return nil, err
	}
	if _, err := ir.Decode(data); err != nil {
		return nil, err
	}
	return data, nil
}

// isEmptyOutput reports whether the rendering is just an empty module
// declaration, which is what a binary-only crate's public API looks like.
func isEmptyOutput(rendered string) bool {
	var b strings.Builder
	for _, c := range rendered {
		if c != ' ' && c != '\t' && c != '\n' && c != '\r' {
			b.WriteRune(c)
		}
	}
	normalized := b.String()
	return strings.HasPrefix(normalized, "pubmod") &&
		strings.HasSuffix(normalized, "{}") &&
		strings.Count(normalized, "{") == 1
}

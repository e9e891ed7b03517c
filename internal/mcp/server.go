// Package mcp exposes the skeleton renderer over the Model Context
// Protocol so coding agents can read crate APIs on demand.
package mcp

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Alb-O/ruskel/internal/project"
	"github.com/Alb-O/ruskel/internal/render"
	"github.com/Alb-O/ruskel/internal/ruskel"
)

//go:embed instructions.md
var instructions string

type Server struct {
	mcpServer *server.MCPServer
	rs        *ruskel.Ruskel
}

func NewServer(rs *ruskel.Ruskel) *Server {
	s := &Server{rs: rs}

	mcpServer := server.NewMCPServer(
		"ruskel",
		"0.1.0",
		server.WithInstructions(instructions),
		server.WithToolCapabilities(true),
	)

	s.registerTools(mcpServer)
	s.mcpServer = mcpServer
	return s
}

func (s *Server) registerTools(mcpServer *server.MCPServer) {
	mcpServer.AddTool(
		mcp.NewTool("render_skeleton",
			mcp.WithDescription("Render a Rust crate's API as a compact, syntactically valid skeleton with implementations omitted. Target format: name[@version][::item::path]."),
			mcp.WithString("target",
				mcp.Description("Crate target, e.g. \"serde\", \"serde@1.0\", \"tokio::sync::mpsc\""),
				mcp.Required(),
			),
			mcp.WithBoolean("private",
				mcp.Description("Include private items"),
			),
			mcp.WithBoolean("no_default_features",
				mcp.Description("Disable the default feature set"),
			),
			mcp.WithArray("features",
				mcp.Description("Feature names to enable"),
				mcp.Items(map[string]interface{}{"type": "string"}),
			),
		),
		s.handleRenderSkeleton,
	)

	mcpServer.AddTool(
		mcp.NewTool("search_api",
			mcp.WithDescription("Search a crate's API by substring and render the matches in their module context. Matches names, doc text, and signatures by default."),
			mcp.WithString("target",
				mcp.Description("Crate target, e.g. \"serde\" or \"serde@1.0\""),
				mcp.Required(),
			),
			mcp.WithString("query",
				mcp.Description("Substring to search for"),
				mcp.Required(),
			),
			mcp.WithString("domains",
				mcp.Description("Comma-separated search domains: name, doc, signature, path"),
			),
			mcp.WithBoolean("case_sensitive",
				mcp.Description("Match case exactly"),
			),
			mcp.WithBoolean("private",
				mcp.Description("Include private items"),
			),
		),
		s.handleSearchAPI,
	)

	mcpServer.AddTool(
		mcp.NewTool("list_items",
			mcp.WithDescription("List a crate's items as `kind path` lines, optionally narrowed by a search query."),
			mcp.WithString("target",
				mcp.Description("Crate target, e.g. \"serde\" or \"serde@1.0\""),
				mcp.Required(),
			),
			mcp.WithString("query",
				mcp.Description("Optional substring to narrow the listing"),
			),
			mcp.WithBoolean("private",
				mcp.Description("Include private items"),
			),
		),
		s.handleListItems,
	)
}

func (s *Server) handleRenderSkeleton(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	targetSpec, _ := args["target"].(string)
	if targetSpec == "" {
		return mcp.NewToolResultError("missing required parameter: target"), nil
	}

	opts := ruskel.RenderOptions{Format: ruskel.FormatMarkdown}
	opts.PrivateItems, _ = args["private"].(bool)
	opts.Features.NoDefault, _ = args["no_default_features"].(bool)
	if raw, ok := args["features"].([]interface{}); ok {
		for _, f := range raw {
			if name, ok := f.(string); ok {
				opts.Features.Enabled = append(opts.Features.Enabled, name)
			}
		}
	}

	rendered, err := s.rs.Render(ctx, targetSpec, opts)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("rendering %s: %v", targetSpec, err)), nil
	}
	return mcp.NewToolResultText(rendered), nil
}

func (s *Server) handleSearchAPI(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	targetSpec, _ := args["target"].(string)
	query, _ := args["query"].(string)
	if targetSpec == "" || query == "" {
		return mcp.NewToolResultError("missing required parameters: target, query"), nil
	}

	opts := ruskel.SearchOptions{Query: query, Format: ruskel.FormatMarkdown}
	opts.PrivateItems, _ = args["private"].(bool)
	opts.CaseSensitive, _ = args["case_sensitive"].(bool)
	if spec, ok := args["domains"].(string); ok && spec != "" {
		domains, err := project.ParseDomains(spec)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		opts.Domains = domains
	}

	resp, err := s.rs.Search(ctx, targetSpec, opts)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("searching %s: %v", targetSpec, err)), nil
	}
	if len(resp.Results) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No matches found for %q.", query)), nil
	}
	return mcp.NewToolResultText(resp.Rendered), nil
}

func (s *Server) handleListItems(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	targetSpec, _ := args["target"].(string)
	if targetSpec == "" {
		return mcp.NewToolResultError("missing required parameter: target"), nil
	}

	opts := ruskel.SearchOptions{}
	opts.Query, _ = args["query"].(string)
	opts.PrivateItems, _ = args["private"].(bool)

	entries, err := s.rs.List(ctx, targetSpec, opts)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing %s: %v", targetSpec, err)), nil
	}
	if len(entries) == 0 {
		if q := strings.TrimSpace(opts.Query); q != "" {
			return mcp.NewToolResultText(fmt.Sprintf("No matches found for %q.", q)), nil
		}
		return mcp.NewToolResultText("No items found."), nil
	}
	return mcp.NewToolResultText(render.FormatListing(entries)), nil
}

func (s *Server) Run() error {
	return server.ServeStdio(s.mcpServer)
}

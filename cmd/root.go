// Package cmd wires the command line interface: flag parsing, config
// defaults, and output formatting around the ruskel facade.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Alb-O/ruskel/internal/config"
	"github.com/Alb-O/ruskel/internal/highlight"
	"github.com/Alb-O/ruskel/internal/project"
	"github.com/Alb-O/ruskel/internal/render"
	"github.com/Alb-O/ruskel/internal/ruskel"
)

var flags struct {
	raw               bool
	list              bool
	search            string
	searchSpec        []string
	searchCaseSens    bool
	directMatchOnly   bool
	autoImpls         bool
	private           bool
	noDefaultFeatures bool
	allFeatures       bool
	features          []string
	offline           bool
	noCache           bool
	cacheDir          string
	format            string
}

var rootCmd = &cobra.Command{
	Use:   "ruskel [flags] TARGET",
	Short: "Render compact Rust API skeletons from rustdoc JSON",
	Long: `ruskel renders a crate's API as syntactically valid Rust with all
implementations omitted, from the rustdoc JSON published on docs.rs or a
local doc.json file.

A target is a crate name with an optional version and item path:

  serde
  serde@1.0.219
  tokio::sync::mpsc
  path/to/doc.json`,
	Args:          cobra.ExactArgs(1),
	RunE:          runRoot,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI and exits with a code reflecting the error class.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(ruskel.ExitCode(err))
	}
}

func init() {
	f := rootCmd.Flags()
	f.BoolVarP(&flags.raw, "raw", "r", false, "output raw rustdoc JSON instead of rendered Rust")
	f.BoolVarP(&flags.list, "list", "l", false, "output a structured item listing instead of rendered code")
	f.StringVarP(&flags.search, "search", "s", "", "search query used to filter the generated skeleton")
	f.StringSliceVarP(&flags.searchSpec, "search-spec", "S", []string{"name", "doc", "signature"},
		"comma-separated search domains (name, doc, signature, path)")
	f.BoolVarP(&flags.searchCaseSens, "search-case-sensitive", "c", false, "execute the search case sensitively")
	f.BoolVarP(&flags.directMatchOnly, "direct-match-only", "d", false,
		"suppress automatic expansion of matched containers when searching")
	f.BoolVarP(&flags.autoImpls, "auto-impls", "i", false, "render auto-implemented traits")
	f.BoolVarP(&flags.private, "private", "p", false, "render private items")
	f.BoolVarP(&flags.noDefaultFeatures, "no-default-features", "n", false, "disable default features")
	f.BoolVarP(&flags.allFeatures, "all-features", "a", false, "enable all features")
	f.StringSliceVarP(&flags.features, "features", "f", nil, "features to enable")
	f.BoolVarP(&flags.offline, "offline", "o", false, "never fetch from the network")
	f.BoolVar(&flags.noCache, "no-cache", false, "disable caching of rustdoc JSON")
	f.StringVar(&flags.cacheDir, "cache-dir", "", "custom directory for cached rustdoc JSON")
	f.StringVar(&flags.format, "format", "markdown", "render format (markdown or rust)")

	rootCmd.AddCommand(mcpCmd)
}

// applyConfig fills flag values from the config file for flags the user
// did not set on the command line.
func applyConfig(cmd *cobra.Command, cfg *config.Config) {
	set := cmd.Flags().Changed
	if !set("auto-impls") {
		flags.autoImpls = cfg.Render.AutoImpls
	}
	if !set("private") {
		flags.private = cfg.Render.PrivateItems
	}
	if !set("format") {
		flags.format = cfg.Render.Format
	}
	if !set("offline") {
		flags.offline = cfg.Fetch.Offline
	}
	if !set("no-cache") {
		flags.noCache = cfg.Cache.Disabled
	}
	if !set("cache-dir") {
		flags.cacheDir = cfg.Cache.Dir
	}
	if !set("no-default-features") {
		flags.noDefaultFeatures = cfg.Features.NoDefault
	}
	if !set("features") {
		flags.features = cfg.Features.Enabled
	}
}

func newRuskel() *ruskel.Ruskel {
	cacheDir := flags.cacheDir
	if cacheDir == "" {
		cacheDir = config.JSONCacheDir()
	}
	return ruskel.New(cacheDir,
		ruskel.WithOffline(flags.offline),
		ruskel.WithNoCache(flags.noCache),
		ruskel.WithAutoImpls(flags.autoImpls),
	)
}

func searchDomains() (project.Domain, error) {
	spec := strings.Join(flags.searchSpec, ",")
	domains, err := project.ParseDomains(spec)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ruskel.ErrInvalidConfig, err)
	}
	return domains, nil
}

func outputFormat() ruskel.Format {
	if flags.format == "rust" {
		return ruskel.FormatRust
	}
	return ruskel.FormatMarkdown
}

func featureOptions() ruskel.FeatureOptions {
	return ruskel.FeatureOptions{
		NoDefault: flags.noDefaultFeatures,
		All:       flags.allFeatures,
		Enabled:   flags.features,
	}
}

func runRoot(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("%w: %v", ruskel.ErrInvalidConfig, err)
	}
	applyConfig(cmd, cfg)

	if flags.format != "rust" && flags.format != "markdown" {
		return fmt.Errorf("%w: invalid format %q (expected rust or markdown)", ruskel.ErrInvalidConfig, flags.format)
	}
	if flags.raw && flags.list {
		return fmt.Errorf("%w: --raw cannot be combined with --list", ruskel.ErrInvalidConfig)
	}
	if flags.raw && flags.search != "" {
		return fmt.Errorf("%w: --raw cannot be combined with --search", ruskel.ErrInvalidConfig)
	}

	rs := newRuskel()
	targetSpec := args[0]

	if flags.list {
		return runList(cmd, rs, targetSpec)
	}
	if flags.search != "" {
		return runSearch(cmd, rs, targetSpec)
	}
	if flags.raw {
		data, err := rs.RawJSON(cmd.Context(), targetSpec)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	}

	rendered, err := rs.Render(cmd.Context(), targetSpec, ruskel.RenderOptions{
		Features:     featureOptions(),
		PrivateItems: flags.private,
		Format:       outputFormat(),
	})
	if err != nil {
		return err
	}
	fmt.Println(rendered)
	return nil
}

func runSearch(cmd *cobra.Command, rs *ruskel.Ruskel, targetSpec string) error {
	query := strings.TrimSpace(flags.search)
	if query == "" {
		fmt.Println("Search query is empty; nothing to do.")
		return nil
	}
	domains, err := searchDomains()
	if err != nil {
		return err
	}

	resp, err := rs.Search(cmd.Context(), targetSpec, ruskel.SearchOptions{
		Query:           query,
		Domains:         domains,
		CaseSensitive:   flags.searchCaseSens,
		DirectMatchOnly: flags.directMatchOnly,
		Features:        featureOptions(),
		PrivateItems:    flags.private,
		Format:          outputFormat(),
	})
	if err != nil {
		return err
	}
	if len(resp.Results) == 0 {
		fmt.Printf("No matches found for %q.\n", query)
		return nil
	}

	fmt.Print(highlight.Matches(resp.Rendered, query, flags.searchCaseSens))
	return nil
}

func runList(cmd *cobra.Command, rs *ruskel.Ruskel, targetSpec string) error {
	query := strings.TrimSpace(flags.search)
	opts := ruskel.SearchOptions{
		Query:           query,
		CaseSensitive:   flags.searchCaseSens,
		DirectMatchOnly: flags.directMatchOnly,
		Features:        featureOptions(),
		PrivateItems:    flags.private,
	}
	if query != "" {
		domains, err := searchDomains()
		if err != nil {
			return err
		}
		opts.Domains = domains
	} else if flags.search != "" {
		fmt.Println("Search query is empty; nothing to do.")
		return nil
	}

	entries, err := rs.List(cmd.Context(), targetSpec, opts)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		if query != "" {
			fmt.Printf("No matches found for %q.\n", query)
		} else {
			fmt.Println("No items found.")
		}
		return nil
	}

	fmt.Print(render.FormatListing(entries))
	return nil
}

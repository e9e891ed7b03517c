package target

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/sync/singleflight"
)

// ErrNotFound means docs.rs has no JSON for the requested crate/version.
var ErrNotFound = errors.New("crate not found")

// ErrUnavailable means the rustdoc JSON could not be acquired: network
// failure, a docs.rs error, or offline mode with a cold cache.
var ErrUnavailable = errors.New("rustdoc JSON unavailable")

const userAgent = "ruskel/0.1.0"

// Resolver acquires raw rustdoc JSON bytes for a target. Concurrent
// acquisitions of the same crate are collapsed into one fetch.
type Resolver struct {
	Client   *http.Client
	CacheDir string // empty disables the on-disk cache
	Offline  bool
	NoCache  bool

	group singleflight.Group
}

// NewResolver returns a resolver caching under cacheDir.
func NewResolver(cacheDir string) *Resolver {
	return &Resolver{
		Client:   &http.Client{Timeout: 60 * time.Second},
		CacheDir: cacheDir,
	}
}

// Acquire returns the rustdoc JSON for the target. Local paths are read
// directly; crates go through the cache and the docs.rs JSON endpoint.
func (r *Resolver) Acquire(ctx context.Context, t *Target) ([]byte, error) {
	if t.Path != "" {
		return readLocal(t.Path)
	}

	key := t.String()
	data, err, _ := r.group.Do(key, func() (any, error) {
		return r.acquireRemote(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	return data.([]byte), nil
}

func (r *Resolver) acquireRemote(ctx context.Context, t *Target) ([]byte, error) {
	if !r.NoCache {
		if data, err := r.loadCache(t); err == nil {
			return data, nil
		}
	}

	if r.Offline {
		return nil, fmt.Errorf("%w: offline and %s is not cached", ErrUnavailable, t)
	}

	data, err := r.fetch(ctx, t)
	if err != nil {
		return nil, err
	}
	if !r.NoCache {
		if err := r.saveCache(t, data); err != nil {
			// A failed cache write does not fail the acquisition.
			fmt.Fprintf(os.Stderr, "warning: caching %s: %v\n", t, err)
		}
	}
	return data, nil
}

// fetch downloads and decompresses rustdoc JSON from docs.rs. The version
// "latest" is resolved by docs.rs via redirect.
func (r *Resolver) fetch(ctx context.Context, t *Target) ([]byte, error) {
	version := t.Version
	if version == "" {
		version = "latest"
	}
	url := fmt.Sprintf("https://docs.rs/crate/%s/%s/json", t.Name, version)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching %s: %v", ErrUnavailable, url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, t)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: docs.rs returned %d for %s: %s",
			ErrUnavailable, resp.StatusCode, t, string(body))
	}

	// docs.rs serves zstd-compressed JSON
	decoder, err := zstd.NewReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}
	defer decoder.Close()

	data, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("%w: decompressing rustdoc JSON: %v", ErrUnavailable, err)
	}
	return data, nil
}

func (r *Resolver) cachePath(t *Target) string {
	version := t.Version
	if version == "" {
		version = "latest"
	}
	return filepath.Join(r.CacheDir, t.Name+"_"+version+".json.zst")
}

func (r *Resolver) loadCache(t *Target) ([]byte, error) {
	if r.CacheDir == "" {
		return nil, os.ErrNotExist
	}
	f, err := os.Open(r.cachePath(t))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("creating zstd reader: %w", err)
	}
	defer zr.Close()

	return io.ReadAll(zr)
}

func (r *Resolver) saveCache(t *Target, data []byte) error {
	if r.CacheDir == "" {
		return nil
	}
	if err := os.MkdirAll(r.CacheDir, 0755); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}

	f, err := os.Create(r.cachePath(t))
	if err != nil {
		return fmt.Errorf("creating cache file: %w", err)
	}
	defer f.Close()

	w, err := zstd.NewWriter(f)
	if err != nil {
		return fmt.Errorf("creating zstd writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("writing compressed data: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing zstd writer: %w", err)
	}
	return nil
}

// readLocal loads rustdoc JSON from a file or from doc.json inside a
// directory, decompressing .zst files transparently.
func readLocal(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		found := ""
		for _, candidate := range []string{"doc.json", filepath.Join("doc", "doc.json")} {
			p := filepath.Join(path, candidate)
			if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
				found = p
				break
			}
		}
		if found == "" {
			return nil, fmt.Errorf("%w: no doc.json under %s", ErrNotFound, path)
		}
		path = found
	}

	if strings.HasSuffix(path, ".zst") {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("creating zstd reader: %w", err)
		}
		defer zr.Close()
		return io.ReadAll(zr)
	}
	return os.ReadFile(path)
}

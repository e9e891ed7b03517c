// Package target parses crate target specs and acquires their rustdoc
// JSON, from local files or the docs.rs JSON endpoint with an on-disk
// zstd cache.
package target

import (
	"fmt"
	"strings"
)

// Target identifies what to render: a crate (with optional version and
// item sub-path) or a local rustdoc JSON file.
type Target struct {
	Name    string
	Version string
	SubPath string // ::-separated item path under the crate root
	Path    string // local file or directory, exclusive with Name
}

// Parse splits a target spec of the form name[@version][::sub::path].
// Specs containing a path separator or a .json suffix are treated as local
// rustdoc JSON files instead.
func Parse(spec string) (*Target, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, fmt.Errorf("empty target")
	}

	if strings.ContainsAny(spec, "/\\") || strings.HasSuffix(spec, ".json") {
		return &Target{Path: spec}, nil
	}

	t := &Target{}
	if i := strings.Index(spec, "::"); i >= 0 {
		t.SubPath = spec[i+2:]
		spec = spec[:i]
		if t.SubPath == "" {
			return nil, fmt.Errorf("trailing :: in target")
		}
	}
	if name, version, ok := strings.Cut(spec, "@"); ok {
		t.Name = name
		t.Version = version
		if version == "" {
			return nil, fmt.Errorf("empty version in target %q", spec)
		}
	} else {
		t.Name = spec
	}

	if !validCrateName(t.Name) {
		return nil, fmt.Errorf("invalid crate name %q", t.Name)
	}
	return t, nil
}

func validCrateName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

// String reassembles the target spec without the sub-path.
func (t *Target) String() string {
	if t.Path != "" {
		return t.Path
	}
	if t.Version != "" {
		return t.Name + "@" + t.Version
	}
	return t.Name
}

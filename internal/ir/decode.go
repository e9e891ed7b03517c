package ir

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	json "github.com/goccy/go-json"
)

// Supported rustdoc JSON format_version range. Versions below the minimum
// predate the self-describing `inner` layout this package decodes; versions
// above the maximum may have made incompatible changes we cannot detect.
const (
	MinFormatVersion = 30
	MaxFormatVersion = 55
)

// ErrUnsupportedSchema is returned when the document's format_version falls
// outside the supported range. No partial decode is attempted in that case.
var ErrUnsupportedSchema = errors.New("unsupported rustdoc JSON format version")

// Decode parses rustdoc JSON bytes into a Crate. The schema version is
// validated up front. Index entries are decoded one at a time so a single
// malformed record is skipped with a warning instead of failing the whole
// document; inner payloads stay raw and are decoded at use sites the same
// way.
func Decode(data []byte) (*Crate, error) {
	var header struct {
		FormatVersion int `json:"format_version"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("unmarshaling rustdoc JSON: %w", err)
	}
	if header.FormatVersion < MinFormatVersion || header.FormatVersion > MaxFormatVersion {
		return nil, fmt.Errorf("%w: %d (supported %d-%d)",
			ErrUnsupportedSchema, header.FormatVersion, MinFormatVersion, MaxFormatVersion)
	}

	var doc struct {
		Root           ID                     `json:"root"`
		CrateVersion   *string                `json:"crate_version"`
		Index          map[ID]json.RawMessage `json:"index"`
		Paths          map[ID]ItemSummary     `json:"paths"`
		ExternalCrates map[int]ExternalCrate  `json:"external_crates"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshaling rustdoc JSON: %w", err)
	}

	crate := &Crate{
		Root:           doc.Root,
		CrateVersion:   doc.CrateVersion,
		Index:          make(map[ID]*Item, len(doc.Index)),
		Paths:          doc.Paths,
		ExternalCrates: doc.ExternalCrates,
		FormatVersion:  header.FormatVersion,
	}
	for id, raw := range doc.Index {
		item := new(Item)
		if err := json.Unmarshal(raw, item); err != nil {
			slog.Warn("skipping undecodable index entry", "id", id, "err", err)
			continue
		}
		crate.Index[id] = item
	}
	return crate, nil
}

// Kind returns the single key of the item's inner object, which names the
// item's kind ("module", "struct", "function", ...).
func (it *Item) Kind() string {
	if len(it.Inner) == 0 {
		return ""
	}
	var outer map[string]json.RawMessage
	if err := json.Unmarshal(it.Inner, &outer); err != nil {
		return ""
	}
	for k := range outer {
		return k
	}
	return ""
}

// unwrapInner extracts the payload for a given kind from an item's inner
// field, which is shaped like {"struct": {...}} or {"enum": {...}}.
func unwrapInner(inner json.RawMessage, kind string) json.RawMessage {
	if len(inner) == 0 {
		return nil
	}
	var outer map[string]json.RawMessage
	if err := json.Unmarshal(inner, &outer); err != nil {
		return nil
	}
	return outer[kind]
}

// DecodeInner decodes the item's inner payload into its typed form. The
// returned value is one of *Module, *Struct, *Enum, *Variant, *Trait,
// *Function, *Impl, *Use, *Constant, *TypeAlias, *AssocConst, *AssocType,
// *StructField, *ProcMacro, or a string for declarative macros. A decode
// failure is reported per item so callers can drop just the bad record.
func (it *Item) DecodeInner() (any, error) {
	kind := it.Kind()
	data := unwrapInner(it.Inner, kind)
	if data == nil {
		return nil, fmt.Errorf("item %d has no inner payload", it.ID)
	}

	decode := func(v any) (any, error) {
		if err := json.Unmarshal(data, v); err != nil {
			return nil, fmt.Errorf("decoding %s item %d: %w", kind, it.ID, err)
		}
		return v, nil
	}

	switch kind {
	case "module":
		return decode(new(Module))
	case "struct":
		return decode(new(Struct))
	case "struct_field":
		return decode(new(StructField))
	case "enum":
		return decode(new(Enum))
	case "variant":
		return decode(new(Variant))
	case "trait":
		return decode(new(Trait))
	case "function":
		return decode(new(Function))
	case "impl":
		return decode(new(Impl))
	case "use":
		return decode(new(Use))
	case "constant":
		return decode(new(Constant))
	case "type_alias":
		return decode(new(TypeAlias))
	case "assoc_const":
		return decode(new(AssocConst))
	case "assoc_type":
		return decode(new(AssocType))
	case "proc_macro":
		return decode(new(ProcMacro))
	case "macro":
		var src string
		if err := json.Unmarshal(data, &src); err != nil {
			return nil, fmt.Errorf("decoding macro item %d: %w", it.ID, err)
		}
		return src, nil
	default:
		slog.Debug("skipping item of unhandled kind", "id", it.ID, "kind", kind)
		return nil, fmt.Errorf("unhandled item kind %q", kind)
	}
}

var cfgFeatureRe = regexp.MustCompile(`feature\s*=\s*"([^"]+)"`)

// Features extracts the feature names an item's #[cfg(...)] attributes
// require. An empty result means the item is always enabled.
func (it *Item) Features() []string {
	var features []string
	for _, attr := range it.Attrs {
		if !strings.Contains(attr, "cfg(") {
			continue
		}
		for _, m := range cfgFeatureRe.FindAllStringSubmatch(attr, -1) {
			features = append(features, m[1])
		}
	}
	return features
}

package syntax

import "strings"

// reservedWords are Rust keywords that need the r# raw-identifier prefix
// when used as item names.
var reservedWords = map[string]struct{}{
	"abstract": {}, "as": {}, "async": {}, "await": {}, "become": {},
	"box": {}, "break": {}, "const": {}, "continue": {}, "crate": {},
	"do": {}, "dyn": {}, "else": {}, "enum": {}, "extern": {},
	"false": {}, "final": {}, "fn": {}, "for": {}, "gen": {},
	"if": {}, "impl": {}, "in": {}, "let": {}, "loop": {},
	"macro": {}, "match": {}, "mod": {}, "move": {}, "mut": {},
	"override": {}, "priv": {}, "pub": {}, "ref": {}, "return": {},
	"self": {}, "static": {}, "struct": {}, "super": {}, "trait": {},
	"true": {}, "try": {}, "type": {}, "typeof": {}, "unsafe": {},
	"unsized": {}, "use": {}, "virtual": {}, "where": {}, "while": {},
	"yield": {},
}

// IsReservedWord reports whether name is a Rust keyword.
func IsReservedWord(name string) bool {
	_, ok := reservedWords[name]
	return ok
}

// EscapeName prefixes a reserved word with r# so it stays a valid identifier.
func EscapeName(name string) string {
	if IsReservedWord(name) {
		return "r#" + name
	}
	return name
}

// EscapePath escapes each segment of a :: separated path. Path keywords like
// crate, self, super, and Self cannot be raw identifiers and pass through.
func EscapePath(path string) string {
	segments := strings.Split(path, "::")
	for i, seg := range segments {
		switch seg {
		case "crate", "self", "super", "Self":
		default:
			segments[i] = EscapeName(seg)
		}
	}
	return strings.Join(segments, "::")
}

// JoinPath appends name to a :: separated path prefix.
func JoinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "::" + name
}

package syntax

import (
	"testing"

	json "github.com/goccy/go-json"

	"github.com/Alb-O/ruskel/internal/ir"
)

func TestEscapeName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"foo", "foo"},
		{"type", "r#type"},
		{"match", "r#match"},
		{"async", "r#async"},
		{"Type", "Type"},
	}
	for _, tt := range tests {
		if got := EscapeName(tt.in); got != tt.want {
			t.Errorf("EscapeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEscapePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"std::fmt::Display", "std::fmt::Display"},
		{"crate::type::Handle", "crate::r#type::Handle"},
		{"self::inner", "self::inner"},
		{"super::r", "super::r"},
		{"Self::Output", "Self::Output"},
	}
	for _, tt := range tests {
		if got := EscapePath(tt.in); got != tt.want {
			t.Errorf("EscapePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestJoinPath(t *testing.T) {
	t.Parallel()

	if got := JoinPath("", "demo"); got != "demo" {
		t.Errorf("JoinPath empty prefix = %q", got)
	}
	if got := JoinPath("demo::inner", "Point"); got != "demo::inner::Point" {
		t.Errorf("JoinPath = %q", got)
	}
}

func TestIsDeriveTrait(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"Clone", "Debug", "PartialEq", "Send", "Sync", "Serialize"} {
		if !IsDeriveTrait(name) {
			t.Errorf("IsDeriveTrait(%q) = false, want true", name)
		}
	}
	for _, name := range []string{"Iterator", "Drop", "Unpin", ""} {
		if IsDeriveTrait(name) {
			t.Errorf("IsDeriveTrait(%q) = true, want false", name)
		}
	}
}

func mustType(t *testing.T, data string) *ir.Type {
	t.Helper()
	var ty ir.Type
	if err := json.Unmarshal([]byte(data), &ty); err != nil {
		t.Fatalf("unmarshal type: %v", err)
	}
	return &ty
}

func TestTypeRendering(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
		want string
	}{
		{"primitive", `{"primitive":"u32"}`, "u32"},
		{"generic", `{"generic":"T"}`, "T"},
		{"infer", `"infer"`, "_"},
		{"tuple", `{"tuple":[{"primitive":"u8"},{"generic":"T"}]}`, "(u8, T)"},
		{"unit", `{"tuple":[]}`, "()"},
		{"slice", `{"slice":{"primitive":"u8"}}`, "[u8]"},
		{"array", `{"array":{"type":{"primitive":"u8"},"len":"32"}}`, "[u8; 32]"},
		{"shared ref", `{"borrowed_ref":{"lifetime":null,"is_mutable":false,"type":{"primitive":"str"}}}`, "&str"},
		{"mut ref with lifetime", `{"borrowed_ref":{"lifetime":"'a","is_mutable":true,"type":{"generic":"T"}}}`, "&'a mut T"},
		{"const pointer", `{"raw_pointer":{"is_mutable":false,"type":{"primitive":"u8"}}}`, "*const u8"},
		{"mut pointer", `{"raw_pointer":{"is_mutable":true,"type":{"primitive":"u8"}}}`, "*mut u8"},
		{
			"resolved path with args",
			`{"resolved_path":{"path":"Vec","id":1,"args":{"angle_bracketed":{"args":[{"type":{"primitive":"u8"}}],"constraints":[]}}}}`,
			"Vec<u8>",
		},
		{
			"nested path",
			`{"resolved_path":{"path":"Option","id":1,"args":{"angle_bracketed":{"args":[{"type":{"borrowed_ref":{"lifetime":null,"is_mutable":false,"type":{"primitive":"str"}}}}],"constraints":[]}}}}`,
			"Option<&str>",
		},
		{
			"crate macro prefix stripped",
			`{"resolved_path":{"path":"$crate::export::Formatter","id":1,"args":null}}`,
			"export::Formatter",
		},
		{
			"dyn trait",
			`{"dyn_trait":{"traits":[{"trait":{"path":"Iterator","id":1,"args":{"angle_bracketed":{"args":[],"constraints":[{"name":"Item","args":null,"binding":{"equality":{"type":{"primitive":"u8"}}}}]}}},"generic_params":[]}],"lifetime":null}}`,
			"dyn Iterator<Item = u8>",
		},
		{
			"dyn trait with lifetime nested in ref",
			`{"borrowed_ref":{"lifetime":null,"is_mutable":false,"type":{"dyn_trait":{"traits":[{"trait":{"path":"Read","id":1,"args":null},"generic_params":[]}],"lifetime":"'a"}}}}`,
			"&(dyn Read + 'a)",
		},
		{
			"qualified path",
			`{"qualified_path":{"name":"Output","args":null,"self_type":{"generic":"T"},"trait":{"path":"Add","id":1,"args":null}}}`,
			"<T as Add>::Output",
		},
		{
			"fn pointer",
			`{"function_pointer":{"sig":{"inputs":[["x",{"primitive":"u8"}]],"output":{"primitive":"u8"},"is_c_variadic":false},"header":{"is_const":false,"is_unsafe":false,"is_async":false}}}`,
			"fn(x: u8) -> u8",
		},
		{
			"fn trait sugar",
			`{"resolved_path":{"path":"Fn","id":1,"args":{"parenthesized":{"inputs":[{"primitive":"u8"}],"output":{"primitive":"bool"}}}}}`,
			"Fn(u8) -> bool",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Type(mustType(t, tt.data)); got != tt.want {
				t.Errorf("Type() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFunctionArgsSelfForms(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		sig  string
		want string
	}{
		{
			"shared self",
			`{"inputs":[["self",{"borrowed_ref":{"lifetime":null,"is_mutable":false,"type":{"generic":"Self"}}}]],"output":null,"is_c_variadic":false}`,
			"&self",
		},
		{
			"mut self",
			`{"inputs":[["self",{"borrowed_ref":{"lifetime":null,"is_mutable":true,"type":{"generic":"Self"}}}]],"output":null,"is_c_variadic":false}`,
			"&mut self",
		},
		{
			"lifetime self",
			`{"inputs":[["self",{"borrowed_ref":{"lifetime":"'a","is_mutable":false,"type":{"generic":"Self"}}}]],"output":null,"is_c_variadic":false}`,
			"&'a self",
		},
		{
			"owned self",
			`{"inputs":[["self",{"generic":"Self"}]],"output":null,"is_c_variadic":false}`,
			"self",
		},
		{
			"boxed self",
			`{"inputs":[["self",{"resolved_path":{"path":"Box","id":1,"args":{"angle_bracketed":{"args":[{"type":{"generic":"Self"}}],"constraints":[]}}}}]],"output":null,"is_c_variadic":false}`,
			"self: Box<Self>",
		},
		{
			"self with args",
			`{"inputs":[["self",{"borrowed_ref":{"lifetime":null,"is_mutable":false,"type":{"generic":"Self"}}}],["limit",{"primitive":"usize"}]],"output":null,"is_c_variadic":false}`,
			"&self, limit: usize",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var sig ir.FunctionSignature
			if err := json.Unmarshal([]byte(tt.sig), &sig); err != nil {
				t.Fatalf("unmarshal sig: %v", err)
			}
			if got := FunctionArgs(&sig); got != tt.want {
				t.Errorf("FunctionArgs() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReturnType(t *testing.T) {
	t.Parallel()

	var sig ir.FunctionSignature
	if err := json.Unmarshal([]byte(`{"inputs":[],"output":{"primitive":"bool"},"is_c_variadic":false}`), &sig); err != nil {
		t.Fatal(err)
	}
	if got := ReturnType(&sig); got != " -> bool" {
		t.Errorf("ReturnType() = %q", got)
	}

	sig.Output = nil
	if got := ReturnType(&sig); got != "" {
		t.Errorf("ReturnType() on unit = %q, want empty", got)
	}
}

func TestGenericsAndWhereClause(t *testing.T) {
	t.Parallel()

	data := `{
		"params": [
			{"name": "'a", "kind": {"lifetime": {"outlives": []}}},
			{"name": "T", "kind": {"type": {"bounds": [{"trait_bound": {"trait": {"path": "Clone", "id": 1, "args": null}, "generic_params": [], "modifier": "none"}}], "default": null, "is_synthetic": false}}},
			{"name": "impl Display", "kind": {"type": {"bounds": [], "default": null, "is_synthetic": true}}},
			{"name": "N", "kind": {"const": {"type": {"primitive": "usize"}, "default": "4"}}}
		],
		"where_predicates": [
			{"bound_predicate": {"type": {"generic": "T"}, "bounds": [{"trait_bound": {"trait": {"path": "Send", "id": 2, "args": null}, "generic_params": [], "modifier": "none"}}], "generic_params": []}},
			{"lifetime_predicate": {"lifetime": "'a", "outlives": ["'b"]}}
		]
	}`
	var g ir.Generics
	if err := json.Unmarshal([]byte(data), &g); err != nil {
		t.Fatalf("unmarshal generics: %v", err)
	}

	if got, want := Generics(&g), "<'a, T: Clone, const N: usize = 4>"; got != want {
		t.Errorf("Generics() = %q, want %q", got, want)
	}
	if got, want := WhereClause(&g), " where T: Send, 'a: 'b"; got != want {
		t.Errorf("WhereClause() = %q, want %q", got, want)
	}
}

func TestGenericBoundModifiers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
		want string
	}{
		{"plain", `{"trait_bound":{"trait":{"path":"Sized","id":1,"args":null},"generic_params":[],"modifier":"none"}}`, "Sized"},
		{"maybe", `{"trait_bound":{"trait":{"path":"Sized","id":1,"args":null},"generic_params":[],"modifier":"maybe"}}`, "?Sized"},
		{"outlives", `{"outlives":"'static"}`, "'static"},
		{"use bound omitted", `{"use":["'a"]}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var b ir.GenericBound
			if err := json.Unmarshal([]byte(tt.data), &b); err != nil {
				t.Fatalf("unmarshal bound: %v", err)
			}
			if got := GenericBound(&b); got != tt.want {
				t.Errorf("GenericBound() = %q, want %q", got, tt.want)
			}
		})
	}
}

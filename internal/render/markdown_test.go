package render

import "testing"

func TestMarkdownBasic(t *testing.T) {
	t.Parallel()

	src := `pub mod demo {
    /// Adds numbers.
    pub fn add(a: u32, b: u32) -> u32 {}
}
`
	assertText(t, Markdown(src), "Adds numbers.\n\n```rust\npub fn add(a: u32, b: u32) -> u32 {}\n```")
}

func TestMarkdownModuleDocs(t *testing.T) {
	t.Parallel()

	src := `pub mod demo {
    //! Crate intro.

    pub fn go() {}
}
`
	assertText(t, Markdown(src), "Crate intro.\n\n```rust\npub fn go() {}\n```")
}

func TestMarkdownDocExampleFence(t *testing.T) {
	t.Parallel()

	src := `pub mod demo {
    /// Example:
    ///
    /// ` + "```" + `
    /// let x = 1;
    /// # hidden();
    /// ` + "```" + `
    pub fn demo() {}
}
`
	want := "Example:\n\n```rust\nlet x = 1;\n```\n\n```rust\npub fn demo() {}\n```"
	assertText(t, Markdown(src), want)
}

func TestMarkdownFenceAnnotations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		lang string
		want string
	}{
		{"no_run maps to rust", "no_run", "```rust\nrun();\n```"},
		{"should_panic maps to rust", "should_panic", "```rust\nrun();\n```"},
		{"text drops the language", "text", "```\nrun();\n```"},
		{"unknown passes through", "mermaid", "```mermaid\nrun();\n```"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			src := "pub mod demo {\n" +
				"    /// ```" + tt.lang + "\n" +
				"    /// run();\n" +
				"    /// ```\n" +
				"    pub fn f() {}\n" +
				"}\n"
			want := tt.want + "\n\n```rust\npub fn f() {}\n```"
			assertText(t, Markdown(src), want)
		})
	}
}

func TestMarkdownInlineFieldDocs(t *testing.T) {
	t.Parallel()

	src := `pub mod demo {
    /// A widget.
    pub struct Widget {
        /// Width in pixels.
        pub width: u32,
    }
}
`
	want := "A widget.\n\n```rust\npub struct Widget {\n    // Width in pixels.\n    pub width: u32,\n}\n```"
	assertText(t, Markdown(src), want)
}

func TestMarkdownLists(t *testing.T) {
	t.Parallel()

	src := `pub mod demo {
    /// Options:
    /// - one
    /// - two
    ///
    /// Tail.
    pub fn f() {}
}
`
	want := "Options:\n\n- one\n- two\n\nTail.\n\n```rust\npub fn f() {}\n```"
	assertText(t, Markdown(src), want)
}

func TestMarkdownWithoutOuterModule(t *testing.T) {
	t.Parallel()

	assertText(t, Markdown("pub fn f() {}\n"), "```rust\npub fn f() {}\n```")
}

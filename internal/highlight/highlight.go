// Package highlight marks search query occurrences in rendered output for
// terminal display.
package highlight

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Match style for query occurrences. Red and bold so hits stand out in a
// wall of skeleton code.
var Match = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)

// Enabled reports whether stdout is a terminal worth styling.
func Enabled() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// Matches styles every occurrence of query in text. With an empty query or
// a non-terminal stdout the text passes through unchanged.
func Matches(text, query string, caseSensitive bool) string {
	if query == "" || !Enabled() {
		return text
	}

	haystack := text
	needle := query
	if !caseSensitive {
		haystack = strings.ToLower(text)
		needle = strings.ToLower(query)
	}

	var b strings.Builder
	b.Grow(len(text) * 2)
	last := 0
	for {
		i := strings.Index(haystack[last:], needle)
		if i < 0 {
			break
		}
		start := last + i
		end := start + len(needle)
		b.WriteString(text[last:start])
		b.WriteString(Match.Render(text[start:end]))
		last = end
	}
	b.WriteString(text[last:])
	return b.String()
}

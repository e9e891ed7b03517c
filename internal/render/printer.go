package render

import "strings"

// printer accumulates indented Rust source. Output is emitted formatted
// directly rather than piped through an external formatter, so every
// brace level tracks its own indentation.
type printer struct {
	b        strings.Builder
	indent   int
	lastOpen bool
}

const indentUnit = "    "

func (p *printer) line(s string) {
	if s == "" {
		p.b.WriteByte('\n')
		return
	}
	for i := 0; i < p.indent; i++ {
		p.b.WriteString(indentUnit)
	}
	p.b.WriteString(s)
	p.b.WriteByte('\n')
	p.lastOpen = false
}

// open writes a block-opening line and indents until the matching close.
func (p *printer) open(s string) {
	p.line(s)
	p.indent++
	p.lastOpen = true
}

func (p *printer) close(s string) {
	p.indent--
	p.line(s)
}

// sep writes a blank line between sibling items, but never directly after
// an opening brace or at the start of the output.
func (p *printer) sep() {
	if p.lastOpen || p.b.Len() == 0 {
		return
	}
	p.b.WriteByte('\n')
}

func (p *printer) String() string {
	return p.b.String()
}

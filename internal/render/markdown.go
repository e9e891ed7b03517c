package render

import "strings"

// Markdown converts a rendered Rust skeleton into markdown: the outer
// module wrapper is stripped, doc comments are lifted out into prose, and
// the remaining code lands in ```rust fences. Fenced examples inside doc
// text keep their own fences, with doctest setup lines (leading #) hidden.
func Markdown(source string) string {
	return rustToMarkdown(stripOuterModule(source))
}

func stripOuterModule(source string) string {
	trimmed := strings.TrimSpace(source)
	lines := strings.Split(trimmed, "\n")
	if len(lines) >= 2 {
		first := strings.TrimSpace(lines[0])
		last := strings.TrimSpace(lines[len(lines)-1])
		if strings.HasPrefix(first, "pub mod ") && strings.HasSuffix(first, "{") && last == "}" {
			return strings.Join(lines[1:len(lines)-1], "\n") + "\n"
		}
	}
	return trimmed
}

func rustToMarkdown(source string) string {
	var md strings.Builder
	var codeBuffer []string
	inCode := false
	needGap := false

	lines := strings.Split(source, "\n")
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimLeft(line, " \t")

		if isDocComment(trimmed) {
			block, consumed := collectDocBlock(lines[i:])
			i += consumed - 1
			isInner := strings.HasPrefix(trimmed, "///")
			inline := inCode && isInner && len(block) == 1 && strings.TrimSpace(block[0].text) != ""

			if inline {
				// A lone field doc inside a code block becomes a plain
				// comment so the fence stays intact.
				codeBuffer = append(codeBuffer, block[0].indent+"// "+strings.TrimSpace(block[0].text))
			} else {
				flushCodeBlock(&md, &codeBuffer, &needGap)
				inCode = false
				if renderDocBlock(block, &md) {
					needGap = true
				} else {
					needGap = false
				}
			}
			continue
		}

		if trimmed == "" {
			if inCode {
				codeBuffer = append(codeBuffer, "")
			} else if md.Len() > 0 && !strings.HasSuffix(md.String(), "\n") {
				md.WriteByte('\n')
			}
			continue
		}

		inCode = true
		codeBuffer = append(codeBuffer, line)
	}

	flushCodeBlock(&md, &codeBuffer, &needGap)
	return strings.TrimSpace(normalizeSpacing(md.String()))
}

type docLine struct {
	indent string
	text   string
}

// collectDocBlock gathers the run of doc comment lines starting at
// lines[0] and returns how many lines it consumed.
func collectDocBlock(lines []string) ([]docLine, int) {
	var block []docLine
	n := 0
	for n < len(lines) {
		trimmed := strings.TrimLeft(lines[n], " \t")
		if !isDocComment(trimmed) {
			break
		}
		indent := lines[n][:len(lines[n])-len(trimmed)]
		block = append(block, docLine{
			indent: indent,
			text:   strings.TrimRight(stripDocComment(trimmed), " \t"),
		})
		n++
	}
	return block, n
}

func isDocComment(line string) bool {
	return strings.HasPrefix(line, "///") || strings.HasPrefix(line, "//!")
}

func stripDocComment(line string) string {
	for _, prefix := range []string{"///", "//!"} {
		if rest, ok := strings.CutPrefix(line, prefix); ok {
			return strings.TrimPrefix(rest, " ")
		}
	}
	return line
}

func isListItem(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") || strings.HasPrefix(trimmed, "+ ") {
		return true
	}
	i := 0
	for i < len(trimmed) && trimmed[i] >= '0' && trimmed[i] <= '9' {
		i++
	}
	if i == 0 || i+1 >= len(trimmed) {
		return false
	}
	return (trimmed[i] == '.' || trimmed[i] == ')') && (trimmed[i+1] == ' ' || trimmed[i+1] == '\t')
}

func ensureBlockGap(md *strings.Builder) {
	s := md.String()
	if s == "" || strings.HasSuffix(s, "\n\n") {
		return
	}
	if strings.HasSuffix(s, "\n") {
		md.WriteByte('\n')
	} else {
		md.WriteString("\n\n")
	}
}

// renderDocBlock writes one doc comment run as markdown and reports
// whether it contained prose text.
func renderDocBlock(block []docLine, md *strings.Builder) bool {
	fenceOpen := false
	containsText := false
	inList := false
	var paragraph strings.Builder

	for _, dl := range block {
		text := strings.TrimRight(dl.text, " \t")
		lead := strings.TrimLeft(text, " \t")

		switch {
		case strings.HasPrefix(lead, "```"):
			flushParagraph(md, &paragraph, &containsText)
			lang := strings.TrimSpace(lead[3:])
			if mapped, ok := normalizeDocLang(lang); ok {
				if fenceOpen {
					md.WriteString("```\n\n")
				} else {
					md.WriteString("```" + mapped + "\n")
				}
			} else {
				md.WriteString(lead + "\n")
			}
			fenceOpen = !fenceOpen
			inList = false
		case fenceOpen:
			if !strings.HasPrefix(strings.TrimLeft(text, " \t"), "#") {
				md.WriteString(text + "\n")
			}
		case lead == "":
			flushParagraph(md, &paragraph, &containsText)
			if inList {
				ensureBlockGap(md)
				inList = false
			}
		case isListItem(lead):
			flushParagraph(md, &paragraph, &containsText)
			if !inList {
				ensureBlockGap(md)
			}
			md.WriteString(text + "\n")
			inList = true
			containsText = true
		default:
			if inList {
				ensureBlockGap(md)
				inList = false
			}
			if paragraph.Len() > 0 {
				paragraph.WriteByte(' ')
			}
			paragraph.WriteString(lead)
		}
	}

	flushParagraph(md, &paragraph, &containsText)
	if inList {
		ensureBlockGap(md)
	}
	if fenceOpen {
		md.WriteString("```\n\n")
	}
	return containsText
}

func flushCodeBlock(md *strings.Builder, codeBuffer *[]string, needGap *bool) {
	empty := true
	for _, l := range *codeBuffer {
		if strings.TrimSpace(l) != "" {
			empty = false
			break
		}
	}
	if empty {
		*codeBuffer = nil
		return
	}

	if *needGap && md.Len() > 0 {
		if !strings.HasSuffix(md.String(), "\n") {
			md.WriteByte('\n')
		}
		md.WriteByte('\n')
	}

	md.WriteString("```rust\n")
	md.WriteString(dedentLines(*codeBuffer))
	md.WriteString("```\n\n")
	*codeBuffer = nil
	*needGap = false
}

func dedentLines(lines []string) string {
	minIndent := -1
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		n := 0
		for n < len(l) && (l[n] == ' ' || l[n] == '\t') {
			n++
		}
		if minIndent < 0 || n < minIndent {
			minIndent = n
		}
	}
	if minIndent < 0 {
		minIndent = 0
	}

	var b strings.Builder
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			b.WriteByte('\n')
			continue
		}
		if minIndent < len(l) {
			b.WriteString(l[minIndent:])
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func flushParagraph(md *strings.Builder, paragraph *strings.Builder, containsText *bool) {
	text := strings.TrimSpace(paragraph.String())
	paragraph.Reset()
	if text == "" {
		return
	}
	if md.Len() > 0 && !strings.HasSuffix(md.String(), "\n") {
		md.WriteByte('\n')
	}
	if md.Len() > 0 {
		md.WriteByte('\n')
	}
	md.WriteString(text + "\n\n")
	*containsText = true
}

// normalizeSpacing collapses blank line runs and trims stray blanks before
// closing fences.
func normalizeSpacing(input string) string {
	lines := strings.Split(input, "\n")
	var result []string
	inFence := false

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			if inFence && len(result) > 0 && strings.TrimSpace(result[len(result)-1]) == "" {
				result = result[:len(result)-1]
			}
			result = append(result, line)
			inFence = !inFence
			continue
		}
		if trimmed == "" {
			if len(result) > 0 && strings.TrimSpace(result[len(result)-1]) == "" {
				continue
			}
			if inFence && i+1 < len(lines) && strings.HasPrefix(strings.TrimSpace(lines[i+1]), "```") {
				continue
			}
			result = append(result, "")
		} else {
			result = append(result, line)
		}
	}
	return strings.Join(result, "\n")
}

// normalizeDocLang maps rustdoc fence annotations to markdown languages.
// The second return is false for unknown annotations, which pass through
// untouched.
func normalizeDocLang(lang string) (string, bool) {
	primary := strings.TrimSpace(strings.Split(lang, ",")[0])
	switch primary {
	case "", "rust", "no_run", "compile_fail", "should_panic", "ignore":
		return "rust", true
	case "text":
		return "", true
	default:
		return "", false
	}
}

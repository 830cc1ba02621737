// Package markdown renders chat message text into a sanitized HTML fragment.
//
// The renderer is built for a typewriter display: it is called on every
// growing prefix of a message, so it must be total (never panics), escape
// everything it does not produce itself, and render an unclosed construct
// as literal text until its closing delimiter shows up.
//
// Rendering runs in two passes. A line tokenizer classifies each input line
// and a block parser groups lines into a goldmark AST (paragraphs, headings,
// lists, tables, quotes, fenced code). Each line of inline content is then
// parsed into emphasis, code, link and keyboard nodes. The HTML writer walks
// the finished tree.
//
// Supported syntax is a chat-oriented subset, not CommonMark:
//   - **bold**, *italic*, ***both***, __underline__, ~~strike~~, ==highlight==
//   - `code`, fenced ``` blocks with an optional language tag
//   - [[kbd]], [label](url) and bare http(s) URLs
//   - # headings, > quotes, ---, lists, - [ ] task items, | pipe | tables |
package markdown

import (
	"strings"

	"github.com/yuin/goldmark/ast"
)

// Render converts message text into an HTML fragment.
// Empty or whitespace-only text renders to the empty string.
func Render(text string) string {
	doc := Parse(text)
	w := &writer{}
	w.walkBlock(doc)
	return w.buf.String()
}

// RenderPartial renders a prefix of a message that is still being typed
// out. Its last line is unfinished, so it is never read as a rule or a
// table row: "***" may grow into ***bold*** and "| a" into a row.
func RenderPartial(text string) string {
	w := &writer{}
	w.walkBlock(parse(text, true))
	return w.buf.String()
}

// Parse builds the node tree Render writes out.
func Parse(text string) ast.Node {
	return parse(text, false)
}

func parse(text string, partial bool) ast.Node {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := tokenize(strings.Split(text, "\n"))
	if last := &lines[len(lines)-1]; partial && (last.kind == lineRule || last.kind == lineTableRow) {
		*last = line{kind: lineText, raw: last.raw, content: last.raw}
	}
	p := &blockParser{doc: ast.NewDocument(), lines: lines}
	p.run()
	return p.doc
}

// EscapeHTML escapes the three HTML metacharacters &, < and >.
func EscapeHTML(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

var attrReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

func escapeAttr(s string) string {
	return attrReplacer.Replace(s)
}

package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
)

type writer struct {
	buf bytes.Buffer
}

// ---------------------------------------------------------------------------
// Block-level rendering
// ---------------------------------------------------------------------------

func (w *writer) walkBlock(n ast.Node) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		w.block(c)
	}
}

func (w *writer) block(node ast.Node) {
	switch n := node.(type) {
	case *ast.Document:
		w.walkBlock(n)

	case *ast.Heading:
		fmt.Fprintf(&w.buf, "<h%d>", n.Level)
		w.inlines(n)
		fmt.Fprintf(&w.buf, "</h%d>", n.Level)

	case *ast.Paragraph:
		w.buf.WriteString("<p>")
		w.inlines(n)
		w.buf.WriteString("</p>")

	case *ast.TextBlock:
		w.inlines(n)

	case *ast.Blockquote:
		w.buf.WriteString("<blockquote>")
		w.walkBlock(n)
		w.buf.WriteString("</blockquote>")

	case *ast.List:
		w.list(n)

	case *ast.ThematicBreak:
		w.buf.WriteString("<hr>")

	case *FencedCode:
		if n.Language != "" {
			fmt.Fprintf(&w.buf, "<pre><code class=\"language-%s\">", escapeAttr(n.Language))
		} else {
			w.buf.WriteString("<pre><code>")
		}
		w.buf.WriteString(EscapeHTML(n.Code))
		w.buf.WriteString("</code></pre>")

	case *east.Table:
		w.table(n)

	default:
		if node.HasChildren() {
			w.walkBlock(node)
		}
	}
}

func (w *writer) list(n *ast.List) {
	tag := "ul"
	if n.IsOrdered() {
		tag = "ol"
	}
	w.buf.WriteString("<" + tag)
	if class, ok := n.AttributeString("class"); ok {
		if b, ok := class.([]byte); ok {
			fmt.Fprintf(&w.buf, " class=\"%s\"", escapeAttr(string(b)))
		}
	}
	if n.IsOrdered() && n.Start != 1 {
		fmt.Fprintf(&w.buf, " start=\"%d\"", n.Start)
	}
	w.buf.WriteString(">")

	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		if isTaskItem(child) {
			w.buf.WriteString("<li class=\"task-list-item\">")
		} else {
			w.buf.WriteString("<li>")
		}
		w.walkBlock(child)
		w.buf.WriteString("</li>")
	}
	w.buf.WriteString("</" + tag + ">")
}

func isTaskItem(item ast.Node) bool {
	tb := item.FirstChild()
	if tb == nil {
		return false
	}
	_, ok := tb.FirstChild().(*east.TaskCheckBox)
	return ok
}

func (w *writer) table(t *east.Table) {
	w.buf.WriteString("<table>")
	for row := t.FirstChild(); row != nil; row = row.NextSibling() {
		cellTag := "td"
		if _, ok := row.(*east.TableHeader); ok {
			cellTag = "th"
		}
		w.buf.WriteString("<tr>")
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			w.buf.WriteString("<" + cellTag + ">")
			w.inlines(cell)
			w.buf.WriteString("</" + cellTag + ">")
		}
		w.buf.WriteString("</tr>")
	}
	w.buf.WriteString("</table>")
}

// ---------------------------------------------------------------------------
// Inline rendering
// ---------------------------------------------------------------------------

func (w *writer) inlines(n ast.Node) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		w.inline(c)
	}
}

func (w *writer) inline(node ast.Node) {
	switch n := node.(type) {
	case *ast.String:
		w.buf.WriteString(EscapeHTML(string(n.Value)))

	case *ast.Emphasis:
		tag := "em"
		if n.Level == 2 {
			tag = "strong"
		}
		w.wrap(tag, n)

	case *ast.CodeSpan:
		w.buf.WriteString("<code>")
		w.buf.WriteString(EscapeHTML(textContent(n)))
		w.buf.WriteString("</code>")

	case *ast.Link:
		fmt.Fprintf(&w.buf, "<a href=\"%s\" target=\"_blank\" rel=\"noopener noreferrer\">",
			escapeAttr(string(n.Destination)))
		w.inlines(n)
		w.buf.WriteString("</a>")

	case *Underline:
		w.wrap("u", n)

	case *Highlight:
		w.wrap("mark", n)

	case *Kbd:
		w.buf.WriteString("<kbd>")
		w.buf.WriteString(EscapeHTML(textContent(n)))
		w.buf.WriteString("</kbd>")

	case *LineBreak:
		w.buf.WriteString("<br>")

	case *east.Strikethrough:
		w.wrap("del", n)

	case *east.TaskCheckBox:
		if n.IsChecked {
			w.buf.WriteString("<input type=\"checkbox\" disabled checked> ")
		} else {
			w.buf.WriteString("<input type=\"checkbox\" disabled> ")
		}

	default:
		if node.HasChildren() {
			w.inlines(node)
		}
	}
}

func (w *writer) wrap(tag string, n ast.Node) {
	w.buf.WriteString("<" + tag + ">")
	w.inlines(n)
	w.buf.WriteString("</" + tag + ">")
}

// textContent returns the concatenated string values below n.
func textContent(n ast.Node) string {
	var buf bytes.Buffer
	collectText(n, &buf)
	return buf.String()
}

func collectText(node ast.Node, buf *bytes.Buffer) {
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		if s, ok := c.(*ast.String); ok {
			buf.Write(s.Value)
			continue
		}
		collectText(c, buf)
	}
}

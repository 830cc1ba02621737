package markdown

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
)

// ---------------------------------------------------------------------------
// Line tokenizer
// ---------------------------------------------------------------------------

type lineKind int

const (
	lineText lineKind = iota
	lineBlank
	lineFence
	lineRule
	lineHeading
	lineQuote
	lineTask
	lineBullet
	lineOrdered
	lineTableRow
)

type line struct {
	kind      lineKind
	raw       string
	content   string
	level     int // heading level, or the number of an ordered item
	checked   bool
	cells     []string
	separator bool
}

var (
	headingRe   = regexp.MustCompile(`^(#{1,6})[ \t]+(\S.*?)\s*$`)
	ruleRe      = regexp.MustCompile(`^(?:-{3,}|\*{3,})$`)
	quoteRe     = regexp.MustCompile(`^>[ \t]+(\S.*)$`)
	taskRe      = regexp.MustCompile(`^\s*[-*+][ \t]+\[([ xX])\](?:[ \t]+(.*))?$`)
	bulletRe    = regexp.MustCompile(`^\s*[-*+][ \t]+(\S.*)$`)
	orderedRe   = regexp.MustCompile(`^\s*(\d{1,9})\.[ \t]+(\S.*)$`)
	separatorRe = regexp.MustCompile(`^:?-+:?$`)
	langRe      = regexp.MustCompile(`^\w+$`)
)

func tokenize(raw []string) []line {
	lines := make([]line, len(raw))
	for i, r := range raw {
		lines[i] = classify(r)
	}
	return lines
}

func classify(raw string) line {
	ln := line{kind: lineText, raw: raw, content: raw}
	trimmed := strings.TrimSpace(raw)

	switch {
	case trimmed == "":
		ln.kind = lineBlank
		return ln
	case strings.HasPrefix(trimmed, "```"):
		ln.kind = lineFence
		if f := strings.Fields(trimmed[3:]); len(f) > 0 && langRe.MatchString(f[0]) {
			ln.content = f[0]
		} else {
			ln.content = ""
		}
		return ln
	case ruleRe.MatchString(trimmed):
		ln.kind = lineRule
		return ln
	}

	if m := headingRe.FindStringSubmatch(raw); m != nil {
		ln.kind = lineHeading
		ln.level = len(m[1])
		ln.content = m[2]
		return ln
	}
	if m := quoteRe.FindStringSubmatch(raw); m != nil {
		ln.kind = lineQuote
		ln.content = strings.TrimRight(m[1], " \t")
		return ln
	}
	if m := taskRe.FindStringSubmatch(raw); m != nil {
		ln.kind = lineTask
		ln.checked = m[1] != " "
		ln.content = strings.TrimRight(m[2], " \t")
		return ln
	}
	if m := bulletRe.FindStringSubmatch(raw); m != nil {
		ln.kind = lineBullet
		ln.content = strings.TrimRight(m[1], " \t")
		return ln
	}
	if m := orderedRe.FindStringSubmatch(raw); m != nil {
		ln.kind = lineOrdered
		ln.level, _ = strconv.Atoi(m[1])
		ln.content = strings.TrimRight(m[2], " \t")
		return ln
	}
	if len(trimmed) >= 2 && trimmed[0] == '|' && trimmed[len(trimmed)-1] == '|' {
		ln.kind = lineTableRow
		ln.cells = strings.Split(trimmed[1:len(trimmed)-1], "|")
		ln.separator = true
		for i, c := range ln.cells {
			ln.cells[i] = strings.TrimSpace(c)
			if !separatorRe.MatchString(ln.cells[i]) {
				ln.separator = false
			}
		}
		return ln
	}
	return ln
}

// ---------------------------------------------------------------------------
// Block parser
// ---------------------------------------------------------------------------

type blockParser struct {
	doc   *ast.Document
	lines []line
	pos   int
	para  *ast.Paragraph
}

func (p *blockParser) run() {
	for p.pos < len(p.lines) {
		ln := p.lines[p.pos]
		switch ln.kind {
		case lineBlank:
			p.para = nil
			p.pos++

		case lineFence:
			end := p.closingFence()
			if end < 0 {
				// An open fence holds the rest of the text, untransformed.
				rest := p.lines[p.pos:]
				for len(rest) > 1 && rest[len(rest)-1].kind == lineBlank {
					rest = rest[:len(rest)-1]
				}
				for _, ln := range rest {
					p.literal(ln.raw)
				}
				p.pos = len(p.lines)
				continue
			}
			code := make([]string, 0, end-p.pos-1)
			for _, c := range p.lines[p.pos+1 : end] {
				code = append(code, c.raw)
			}
			p.add(newFencedCode(ln.content, strings.Join(code, "\n")))
			p.pos = end + 1

		case lineRule:
			p.add(ast.NewThematicBreak())
			p.pos++

		case lineHeading:
			h := ast.NewHeading(ln.level)
			parseInline(ln.content, h)
			p.add(h)
			p.pos++

		case lineQuote:
			q := ast.NewBlockquote()
			tb := ast.NewTextBlock()
			parseInline(ln.content, tb)
			q.AppendChild(q, tb)
			p.add(q)
			p.pos++

		case lineTask, lineBullet, lineOrdered:
			p.list(ln.kind)

		case lineTableRow:
			p.table()

		default:
			p.text(ln.raw)
			p.pos++
		}
	}
}

// add appends a block to the document and ends the open paragraph.
func (p *blockParser) add(n ast.Node) {
	p.para = nil
	p.doc.AppendChild(p.doc, n)
}

// text continues the open paragraph with a line break, or opens a new one.
func (p *blockParser) text(raw string) {
	if p.para == nil {
		p.para = ast.NewParagraph()
		p.doc.AppendChild(p.doc, p.para)
	} else {
		p.para.AppendChild(p.para, &LineBreak{})
	}
	parseInline(raw, p.para)
}

// literal is text without inline parsing.
func (p *blockParser) literal(raw string) {
	if p.para == nil {
		p.para = ast.NewParagraph()
		p.doc.AppendChild(p.doc, p.para)
	} else {
		p.para.AppendChild(p.para, &LineBreak{})
	}
	if raw != "" {
		p.para.AppendChild(p.para, ast.NewString([]byte(raw)))
	}
}

// closingFence returns the index of the fence line closing the one at
// p.pos, or -1 while the block is still open.
func (p *blockParser) closingFence() int {
	for i := p.pos + 1; i < len(p.lines); i++ {
		if p.lines[i].kind == lineFence {
			return i
		}
	}
	return -1
}

func (p *blockParser) list(kind lineKind) {
	first := p.lines[p.pos]
	marker := byte('-')
	if kind == lineOrdered {
		marker = '.'
	}
	list := ast.NewList(marker)
	if kind == lineOrdered {
		list.Start = first.level
	}
	if kind == lineTask {
		list.SetAttributeString("class", []byte("task-list"))
	}

	for p.pos < len(p.lines) && p.lines[p.pos].kind == kind {
		ln := p.lines[p.pos]
		item := ast.NewListItem(0)
		tb := ast.NewTextBlock()
		if kind == lineTask {
			tb.AppendChild(tb, east.NewTaskCheckBox(ln.checked))
		}
		parseInline(ln.content, tb)
		item.AppendChild(item, tb)
		list.AppendChild(list, item)
		p.pos++
	}
	p.add(list)
}

func (p *blockParser) table() {
	tbl := east.NewTable()
	var prev *east.TableRow

	for p.pos < len(p.lines) && p.lines[p.pos].kind == lineTableRow {
		ln := p.lines[p.pos]
		p.pos++
		if ln.separator {
			if prev != nil {
				tbl.ReplaceChild(tbl, prev, east.NewTableHeader(prev))
			}
			prev = nil
			continue
		}
		row := east.NewTableRow(nil)
		for _, c := range ln.cells {
			cell := east.NewTableCell()
			parseInline(c, cell)
			row.AppendChild(row, cell)
		}
		tbl.AppendChild(tbl, row)
		prev = row
	}

	// A table made only of separator rows renders nothing.
	if tbl.HasChildren() {
		p.add(tbl)
	} else {
		p.para = nil
	}
}

package markdown

import (
	"strings"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
)

// inlineParser turns one line of text into inline nodes. Spans never cross
// a line boundary.
type inlineParser struct {
	noEmphasis bool // inside an emphasis span, '*' is literal
	noLinks    bool // inside a link label, no nested links or autolinks
}

func parseInline(s string, parent ast.Node) {
	inlineParser{}.parse(s, parent)
}

func (p inlineParser) parse(s string, parent ast.Node) {
	var text strings.Builder
	flush := func() {
		if text.Len() > 0 {
			parent.AppendChild(parent, ast.NewString([]byte(text.String())))
			text.Reset()
		}
	}

	for i := 0; i < len(s); {
		c := s[i]
		var node ast.Node
		next := 0

		switch c {
		case '`':
			node, next = codeSpan(s, i)
		case '*':
			if !p.noEmphasis {
				node, next = p.emphasis(s, i)
			}
		case '_':
			node, next = p.pair(s, i, "__", func() ast.Node { return &Underline{} })
		case '~':
			node, next = p.pair(s, i, "~~", func() ast.Node { return east.NewStrikethrough() })
		case '=':
			node, next = p.pair(s, i, "==", func() ast.Node { return &Highlight{} })
		case '[':
			if strings.HasPrefix(s[i:], "[[") {
				node, next = kbd(s, i)
			} else if !p.noLinks {
				node, next = p.link(s, i)
			}
		case 'h':
			if !p.noLinks && (i == 0 || !isWordByte(s[i-1])) {
				node, next = autolink(s, i)
			}
		}

		if node != nil {
			flush()
			parent.AppendChild(parent, node)
			i = next
			continue
		}
		// An unmatched run of backticks or stars is literal as a whole, so
		// a shorter delimiter is never matched from inside it.
		if c == '`' || c == '*' {
			n := runLen(s, i, c)
			text.WriteString(s[i : i+n])
			i += n
			continue
		}
		text.WriteByte(c)
		i++
	}
	flush()
}

// emphasis matches ***x***, **x** and *x* in that order of precedence.
func (p inlineParser) emphasis(s string, i int) (ast.Node, int) {
	n := runLen(s, i, '*')
	for _, d := range []int{3, 2, 1} {
		if d > n || (d == 1 && n != 1) {
			continue
		}
		start := i + d
		end := findClose(s, start, strings.Repeat("*", d), d == 1)
		if end < 0 || !spanContent(s[start:end]) {
			continue
		}
		inner := inlineParser{noEmphasis: true, noLinks: p.noLinks}
		var node ast.Node
		switch d {
		case 3:
			strong := ast.NewEmphasis(2)
			em := ast.NewEmphasis(1)
			inner.parse(s[start:end], em)
			strong.AppendChild(strong, em)
			node = strong
		default:
			em := ast.NewEmphasis(d)
			inner.parse(s[start:end], em)
			node = em
		}
		return node, end + d
	}
	return nil, 0
}

// pair matches a symmetric two-character delimiter such as __x__.
func (p inlineParser) pair(s string, i int, delim string, newNode func() ast.Node) (ast.Node, int) {
	if !strings.HasPrefix(s[i:], delim) {
		return nil, 0
	}
	start := i + len(delim)
	end := findClose(s, start, delim, false)
	if end < 0 || !spanContent(s[start:end]) {
		return nil, 0
	}
	node := newNode()
	p.parse(s[start:end], node)
	return node, end + len(delim)
}

func (p inlineParser) link(s string, i int) (ast.Node, int) {
	rb := strings.IndexByte(s[i+1:], ']')
	if rb <= 0 {
		return nil, 0
	}
	label := s[i+1 : i+1+rb]
	open := i + 1 + rb + 1
	if strings.ContainsRune(label, '[') || open >= len(s) || s[open] != '(' {
		return nil, 0
	}
	rp := strings.IndexByte(s[open+1:], ')')
	if rp < 0 {
		return nil, 0
	}
	url := strings.TrimSpace(s[open+1 : open+1+rp])
	if url == "" || !safeURL(url) {
		return nil, 0
	}
	link := ast.NewLink()
	link.Destination = []byte(url)
	inlineParser{noEmphasis: p.noEmphasis, noLinks: true}.parse(label, link)
	return link, open + 1 + rp + 1
}

func kbd(s string, i int) (ast.Node, int) {
	end := strings.Index(s[i+2:], "]]")
	if end <= 0 {
		return nil, 0
	}
	k := &Kbd{}
	k.AppendChild(k, ast.NewString([]byte(s[i+2:i+2+end])))
	return k, i + 2 + end + 2
}

func codeSpan(s string, i int) (ast.Node, int) {
	n := runLen(s, i, '`')
	end := closingTicks(s, i+n, n)
	if end < 0 || end == i+n {
		return nil, 0
	}
	cs := ast.NewCodeSpan()
	cs.AppendChild(cs, ast.NewString([]byte(s[i+n:end])))
	return cs, end + n
}

func autolink(s string, i int) (ast.Node, int) {
	rest := s[i:]
	var scheme int
	switch {
	case strings.HasPrefix(rest, "https://"):
		scheme = len("https://")
	case strings.HasPrefix(rest, "http://"):
		scheme = len("http://")
	default:
		return nil, 0
	}
	end := scheme
	for end < len(rest) && !strings.ContainsRune(" \t<>\"`", rune(rest[end])) {
		end++
	}
	url := trimURL(rest[:end])
	if len(url) <= scheme {
		return nil, 0
	}
	link := ast.NewLink()
	link.Destination = []byte(url)
	link.AppendChild(link, ast.NewString([]byte(url)))
	return link, i + len(url)
}

// trimURL drops trailing sentence punctuation and unbalanced parentheses.
func trimURL(url string) string {
	for len(url) > 0 {
		last := url[len(url)-1]
		switch {
		case strings.IndexByte(".,;:!?'*_~", last) >= 0:
			url = url[:len(url)-1]
		case last == ')' && strings.Count(url, "(") < strings.Count(url, ")"):
			url = url[:len(url)-1]
		default:
			return url
		}
	}
	return url
}

// ---------------------------------------------------------------------------
// Delimiter helpers
// ---------------------------------------------------------------------------

// findClose returns the offset of delim at or after from, skipping code
// spans. With single set, only a lone delimiter character matches.
func findClose(s string, from int, delim string, single bool) int {
	for j := from; j < len(s); {
		if s[j] == '`' {
			n := runLen(s, j, '`')
			if end := closingTicks(s, j+n, n); end >= 0 {
				j = end + n
			} else {
				j += n
			}
			continue
		}
		if !strings.HasPrefix(s[j:], delim) {
			j++
			continue
		}
		if single {
			if n := runLen(s, j, s[j]); n != 1 {
				j += n
				continue
			}
		}
		return j
	}
	return -1
}

// closingTicks finds a run of exactly n backticks at or after from.
func closingTicks(s string, from, n int) int {
	for j := from; j < len(s); {
		if s[j] != '`' {
			j++
			continue
		}
		m := runLen(s, j, '`')
		if m == n {
			return j
		}
		j += m
	}
	return -1
}

func runLen(s string, i int, c byte) int {
	n := 0
	for i+n < len(s) && s[i+n] == c {
		n++
	}
	return n
}

// spanContent reports whether s can be the body of a delimited span.
func spanContent(s string) bool {
	if s == "" {
		return false
	}
	return !isSpace(s[0]) && !isSpace(s[len(s)-1])
}

func safeURL(url string) bool {
	lower := strings.ToLower(url)
	for _, scheme := range []string{"javascript:", "vbscript:", "data:"} {
		if strings.HasPrefix(lower, scheme) {
			return false
		}
	}
	return true
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t'
}

func isWordByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

package markdown

import (
	"github.com/yuin/goldmark/ast"
)

// Node kinds goldmark has no equivalent for.
var (
	KindFencedCode = ast.NewNodeKind("FencedCode")
	KindUnderline  = ast.NewNodeKind("Underline")
	KindHighlight  = ast.NewNodeKind("Highlight")
	KindKbd        = ast.NewNodeKind("Kbd")
	KindLineBreak  = ast.NewNodeKind("LineBreak")
)

// FencedCode is a ``` block. Code is kept verbatim, without the fences.
type FencedCode struct {
	ast.BaseBlock
	Language string
	Code     string
}

func newFencedCode(lang, code string) *FencedCode {
	return &FencedCode{Language: lang, Code: code}
}

func (n *FencedCode) Kind() ast.NodeKind { return KindFencedCode }

func (n *FencedCode) IsRaw() bool { return true }

func (n *FencedCode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Language": n.Language,
		"Code":     n.Code,
	}, nil)
}

// Underline is __text__.
type Underline struct {
	ast.BaseInline
}

func (n *Underline) Kind() ast.NodeKind { return KindUnderline }

func (n *Underline) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

// Highlight is ==text==.
type Highlight struct {
	ast.BaseInline
}

func (n *Highlight) Kind() ast.NodeKind { return KindHighlight }

func (n *Highlight) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

// Kbd is [[key]]. Its single child is the literal key text.
type Kbd struct {
	ast.BaseInline
}

func (n *Kbd) Kind() ast.NodeKind { return KindKbd }

func (n *Kbd) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

// LineBreak separates two lines of the same paragraph.
type LineBreak struct {
	ast.BaseInline
}

func (n *LineBreak) Kind() ast.NodeKind { return KindLineBreak }

func (n *LineBreak) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

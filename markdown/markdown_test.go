package markdown

import (
	"strings"
	"testing"
)

func TestPlainText(t *testing.T) {
	expect(t, Render("Hello world"), "<p>Hello world</p>")
}

func TestEmpty(t *testing.T) {
	expect(t, Render(""), "")
	expect(t, Render("  \n\n "), "")
}

func TestBold(t *testing.T) {
	expect(t, Render("**hi**"), "<p><strong>hi</strong></p>")
}

func TestInlineSpans(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"*hi*", "<p><em>hi</em></p>"},
		{"***hi***", "<p><strong><em>hi</em></strong></p>"},
		{"__hi__", "<p><u>hi</u></p>"},
		{"~~hi~~", "<p><del>hi</del></p>"},
		{"==hi==", "<p><mark>hi</mark></p>"},
		{"use `fmt.Println`", "<p>use <code>fmt.Println</code></p>"},
		{"press [[Ctrl]]+[[C]]", "<p>press <kbd>Ctrl</kbd>+<kbd>C</kbd></p>"},
		{"a **b** *c* d", "<p>a <strong>b</strong> <em>c</em> d</p>"},
	}
	for _, tt := range tests {
		expect(t, Render(tt.in), tt.want)
	}
}

func TestEscaping(t *testing.T) {
	expect(t, Render("<script>alert(1)</script> & co"),
		"<p>&lt;script&gt;alert(1)&lt;/script&gt; &amp; co</p>")
	expect(t, Render("`<b>`"), "<p><code>&lt;b&gt;</code></p>")
}

func TestCodeSpanIsLiteral(t *testing.T) {
	expect(t, Render("`*a* **b** [x](y)`"), "<p><code>*a* **b** [x](y)</code></p>")
	expect(t, Render("**a `**` b**"), "<p><strong>a <code>**</code> b</strong></p>")
}

func TestNoNestedStarsInsideBold(t *testing.T) {
	expect(t, Render("**a *b* c**"), "<p><strong>a *b* c</strong></p>")
}

func TestUnmatchedDelimitersStayLiteral(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"**bold", "<p>**bold</p>"},
		{"*it", "<p>*it</p>"},
		{"2 * 3 * 4", "<p>2 * 3 * 4</p>"},
		{"~~gone", "<p>~~gone</p>"},
		{"`code", "<p>`code</p>"},
		{"[label](http", "<p>[label](http</p>"},
		{"[[key", "<p>[[key</p>"},
	}
	for _, tt := range tests {
		expect(t, Render(tt.in), tt.want)
	}
}

func TestLinks(t *testing.T) {
	expect(t, Render("[Go](https://go.dev)"),
		`<p><a href="https://go.dev" target="_blank" rel="noopener noreferrer">Go</a></p>`)
	expect(t, Render("see https://go.dev/doc."),
		`<p>see <a href="https://go.dev/doc" target="_blank" rel="noopener noreferrer">https://go.dev/doc</a>.</p>`)
	expect(t, Render("[**bold** site](https://a.b)"),
		`<p><a href="https://a.b" target="_blank" rel="noopener noreferrer"><strong>bold</strong> site</a></p>`)
}

func TestLinkLabelIsNotAutolinked(t *testing.T) {
	got := Render("[https://a.b](https://c.d)")
	if strings.Count(got, "<a ") != 1 {
		t.Fatalf("expected exactly one anchor, got: %q", got)
	}
}

func TestUnsafeLinkIsLiteral(t *testing.T) {
	got := Render("[x](javascript:alert(1))")
	if strings.Contains(got, "<a") {
		t.Fatalf("javascript link rendered as anchor: %q", got)
	}
}

func TestHrefEscaping(t *testing.T) {
	got := Render(`[x](https://a.b/?q="><script>)`)
	if strings.Contains(got, `"><script>`) {
		t.Fatalf("href not escaped: %q", got)
	}
}

func TestHeadings(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"# Title", "<h1>Title</h1>"},
		{"## Sub **bold**", "<h2>Sub <strong>bold</strong></h2>"},
		{"###### six", "<h6>six</h6>"},
		{"####### seven", "<p>####### seven</p>"},
		{"#nospace", "<p>#nospace</p>"},
		{"# T\ntext", "<h1>T</h1><p>text</p>"},
	}
	for _, tt := range tests {
		expect(t, Render(tt.in), tt.want)
	}
}

func TestRuleAndQuote(t *testing.T) {
	expect(t, Render("---"), "<hr>")
	expect(t, Render("***"), "<hr>")
	expect(t, Render("a\n---\nb"), "<p>a</p><hr><p>b</p>")
	expect(t, Render("> quoted"), "<blockquote>quoted</blockquote>")
	expect(t, Render("> a\n> b"), "<blockquote>a</blockquote><blockquote>b</blockquote>")
}

func TestLists(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"- a\n- b", "<ul><li>a</li><li>b</li></ul>"},
		{"* a\n+ b", "<ul><li>a</li><li>b</li></ul>"},
		{"1. a\n2. b", "<ol><li>a</li><li>b</li></ol>"},
		{"3. c", `<ol start="3"><li>c</li></ol>`},
		{"- a\n\n- b", "<ul><li>a</li></ul><ul><li>b</li></ul>"},
		{"- a\n1. b", "<ul><li>a</li></ul><ol><li>b</li></ol>"},
		{"intro\n- a", "<p>intro</p><ul><li>a</li></ul>"},
	}
	for _, tt := range tests {
		expect(t, Render(tt.in), tt.want)
	}
}

func TestTaskList(t *testing.T) {
	got := Render("- [ ] todo\n- [x] done")
	want := `<ul class="task-list">` +
		`<li class="task-list-item"><input type="checkbox" disabled> todo</li>` +
		`<li class="task-list-item"><input type="checkbox" disabled checked> done</li>` +
		`</ul>`
	expect(t, got, want)
}

func TestTable(t *testing.T) {
	got := Render("| a | b |\n|---|:-:|\n| 1 | **2** |")
	expect(t, got, "<table><tr><th>a</th><th>b</th></tr><tr><td>1</td><td><strong>2</strong></td></tr></table>")

	expect(t, Render("| x |\n| y |"), "<table><tr><td>x</td></tr><tr><td>y</td></tr></table>")
	expect(t, Render("|---|"), "")
}

func TestParagraphs(t *testing.T) {
	expect(t, Render("a\nb"), "<p>a<br>b</p>")
	expect(t, Render("a\n\nb"), "<p>a</p><p>b</p>")
	expect(t, Render("a\r\nb"), "<p>a<br>b</p>")
	expect(t, Render("\n\na\n\n\n"), "<p>a</p>")
}

func TestFencedCode(t *testing.T) {
	got := Render("```go\nx := 1 < 2\n*y*\n```")
	expect(t, got, "<pre><code class=\"language-go\">x := 1 &lt; 2\n*y*</code></pre>")

	got = Render("before\n```\nplain\n```\nafter")
	expect(t, got, "<p>before</p><pre><code>plain</code></pre><p>after</p>")
}

func TestUnclosedFenceIsLiteral(t *testing.T) {
	expect(t, Render("```go\nx"), "<p>```go<br>x</p>")
	expect(t, Render("```py\n# c\n- x"), "<p>```py<br># c<br>- x</p>")
	expect(t, Render("```\n**b** <i>\n\n| t |\n\n"), "<p>```<br>**b** &lt;i&gt;<br><br>| t |</p>")
}

func TestRenderPartialDefersLastLine(t *testing.T) {
	expect(t, Render("***"), "<hr>")
	expect(t, RenderPartial("***"), "<p>***</p>")
	expect(t, RenderPartial("***\n"), "<hr>")
	expect(t, RenderPartial("| a | b |\n| 1 |"), "<table><tr><td>a</td><td>b</td></tr></table><p>| 1 |</p>")
	expect(t, RenderPartial("# Title"), "<h1>Title</h1>")
}

func TestBlocksNeverInParagraph(t *testing.T) {
	inputs := []string{
		"text\n# h\nmore",
		"a\n> q\nb",
		"a\n- x\nb",
		"a\n| c |\nb",
		"a\n```\ncode\n```\nb",
	}
	for _, in := range inputs {
		got := Render(in)
		for _, tag := range []string{"<h1>", "<blockquote>", "<ul>", "<table>", "<pre>", "<hr>"} {
			if strings.Contains(got, "<p>"+tag) {
				t.Errorf("Render(%q) wraps %s in a paragraph: %q", in, tag, got)
			}
		}
		if strings.Contains(got, "<br><") && !strings.Contains(got, "<br><strong>") {
			t.Errorf("Render(%q) has a break at a block boundary: %q", in, got)
		}
		if strings.Contains(got, "<p></p>") {
			t.Errorf("Render(%q) has an empty paragraph: %q", in, got)
		}
	}
}

func TestEscapeHTML(t *testing.T) {
	expect(t, EscapeHTML(`<a href="x">&</a>`), `&lt;a href="x"&gt;&amp;&lt;/a&gt;`)
}

func expect(t *testing.T, got, want string) {
	t.Helper()
	if got != want {
		t.Errorf("\ngot:  %q\nwant: %q", got, want)
	}
}

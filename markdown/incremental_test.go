package markdown

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

const sample = "# Release notes\n\n" +
	"Thanks for asking! Here is **what changed** in *this* release:\n\n" +
	"- [x] faster `render`\n- [ ] ~~old~~ ==new== flag\n\n" +
	"1. first\n2. second\n\n" +
	"| key | value |\n|-----|-------|\n| [[Esc]] | close |\n\n" +
	"> Quote with a [link](https://example.com) and https://go.dev.\n\n" +
	"```go\nfmt.Println(\"<done>\")\n```\n---\nBye & see you __soon__!"

func prefixes(s string) []string {
	runes := []rune(s)
	out := make([]string, 0, len(runes))
	for i := 1; i <= len(runes); i++ {
		out = append(out, string(runes[:i]))
	}
	return out
}

func TestEveryPrefixRenders(t *testing.T) {
	for _, p := range prefixes(sample) {
		got := Render(p)
		if strings.Contains(got, "<p></p>") {
			t.Fatalf("empty paragraph for prefix %q: %q", p, got)
		}
		if strings.Contains(got, "<script") || strings.Contains(got, "<done>") {
			t.Fatalf("unescaped markup for prefix %q: %q", p, got)
		}
	}
}

func TestMultibytePrefixes(t *testing.T) {
	for _, p := range prefixes("**你好** 世界 - *ünïcödé* 🎉") {
		_ = Render(p)
	}
	expect(t, Render("**你好**"), "<p><strong>你好</strong></p>")
}

// A heading that has been closed by a newline keeps its tag as more text
// is revealed after it.
func TestClosedHeadingDoesNotRegress(t *testing.T) {
	text := "# Title\nbody text follows here"
	closed := strings.Index(text, "\n") + 1
	for _, p := range prefixes(text)[closed:] {
		got := Render(p)
		if !strings.HasPrefix(got, "<h1>Title</h1>") {
			t.Fatalf("prefix %q lost its heading: %q", p, got)
		}
	}
}

func TestClosedBoldDoesNotRegress(t *testing.T) {
	text := "**bold** then more"
	for _, p := range prefixes(text)[len("**bold**")-1:] {
		got := Render(p)
		if !strings.HasPrefix(got, "<p><strong>bold</strong>") {
			t.Fatalf("prefix %q lost its emphasis: %q", p, got)
		}
	}
}

// Code being typed out inside a fence is never read as markdown.
func TestOpenFenceNeverTransforms(t *testing.T) {
	text := "```py\n# comment\n- item **x**\n| a |\n---\n```"
	for _, p := range prefixes(text)[:len(text)-1] {
		got := Render(p)
		for _, tag := range []string{"<h1>", "<ul>", "<strong>", "<table>", "<hr>"} {
			if strings.Contains(got, tag) {
				t.Fatalf("prefix %q rendered %s: %q", p, tag, got)
			}
		}
	}
	expect(t, Render(text), "<pre><code class=\"language-py\"># comment\n- item **x**\n| a |\n---</code></pre>")
}

// While a line is being typed, it does not flash in as a rule, and a table
// header keeps its header cells.
func TestPartialPrefixesDoNotFlicker(t *testing.T) {
	text := "***bold*** start\n\n| a | b |\n|---|---|\n| 1 | 2 |"
	sep := strings.Index(text, "|---|---|\n") + len("|---|---|\n")
	for i, p := range prefixes(text) {
		got := RenderPartial(p)
		if strings.Contains(got, "<hr>") {
			t.Fatalf("prefix %q rendered a rule: %q", p, got)
		}
		if i >= sep && !strings.Contains(got, "<th>a</th><th>b</th>") {
			t.Fatalf("prefix %q lost its header: %q", p, got)
		}
	}
}

func TestTextWithoutSyntaxIsOneParagraph(t *testing.T) {
	inputs := []string{
		"hello",
		"just some words, nothing else",
		"numbers 1 2 3 and (parens)",
	}
	for _, in := range inputs {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(Render(in)))
		if err != nil {
			t.Fatalf("parse html: %v", err)
		}
		body := doc.Find("body")
		if body.Children().Length() != 1 || !body.Children().First().Is("p") {
			t.Fatalf("%q: expected a single <p>, got %q", in, Render(in))
		}
		if got := body.Find("p").Text(); got != in {
			t.Fatalf("%q: paragraph text %q", in, got)
		}
	}
}

func TestSampleStructure(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(Render(sample)))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	checks := []struct {
		selector string
		count    int
	}{
		{"h1", 1},
		{"ul.task-list > li.task-list-item", 2},
		{"input[type=checkbox][checked]", 1},
		{"ol > li", 2},
		{"table tr", 2},
		{"table th", 2},
		{"table kbd", 1},
		{"blockquote a[target=_blank]", 2},
		{"pre > code.language-go", 1},
		{"hr", 1},
		{"u", 1},
		{"mark", 1},
		{"del", 1},
	}
	for _, c := range checks {
		if got := doc.Find(c.selector).Length(); got != c.count {
			t.Errorf("selector %q: got %d nodes, want %d", c.selector, got, c.count)
		}
	}
	if code := doc.Find("pre > code").Text(); code != `fmt.Println("<done>")` {
		t.Errorf("code block text: %q", code)
	}
}

func FuzzRender(f *testing.F) {
	for _, seed := range []string{
		sample,
		"***",
		"**a*b**c*",
		"[[]]",
		"[](",
		"| | |\n|-|",
		"```\n```",
		"`` ` ``",
		"http://",
		"> \n- [x]",
	} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, s string) {
		got := Render(s)
		if strings.Contains(got, "<script") {
			t.Fatalf("unescaped tag in %q", got)
		}
	})
}

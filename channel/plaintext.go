package channel

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var blankRunRe = regexp.MustCompile(`\n{3,}`)

// PlainText converts rendered message HTML to text for a terminal.
func PlainText(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	var b strings.Builder
	writePlain(&b, doc.Find("body").Contents())
	return strings.TrimSpace(blankRunRe.ReplaceAllString(b.String(), "\n\n"))
}

func writePlain(b *strings.Builder, sel *goquery.Selection) {
	sel.Each(func(_ int, s *goquery.Selection) {
		switch name := goquery.NodeName(s); name {
		case "#text":
			b.WriteString(s.Text())
		case "br":
			b.WriteString("\n")
		case "hr":
			b.WriteString("\n\n----\n\n")
		case "input":
			if _, checked := s.Attr("checked"); checked {
				b.WriteString("[x]")
			} else {
				b.WriteString("[ ]")
			}
		case "pre":
			b.WriteString("\n\n")
			b.WriteString(strings.TrimRight(s.Text(), "\n"))
			b.WriteString("\n\n")
		case "blockquote":
			var inner strings.Builder
			writePlain(&inner, s.Contents())
			b.WriteString("\n\n")
			for _, line := range strings.Split(strings.TrimSpace(inner.String()), "\n") {
				b.WriteString("> " + line + "\n")
			}
			b.WriteString("\n")
		case "li":
			b.WriteString(listMarker(s))
			writePlain(b, s.Contents())
			b.WriteString("\n")
		case "tr":
			cells := s.Children().Map(func(_ int, c *goquery.Selection) string {
				var cell strings.Builder
				writePlain(&cell, c.Contents())
				return strings.TrimSpace(cell.String())
			})
			b.WriteString(strings.Join(cells, " | "))
			b.WriteString("\n")
		case "a":
			text := s.Text()
			b.WriteString(text)
			if href, ok := s.Attr("href"); ok && href != text {
				b.WriteString(" (" + href + ")")
			}
		case "p", "h1", "h2", "h3", "h4", "h5", "h6", "ul", "ol", "table":
			b.WriteString("\n\n")
			writePlain(b, s.Contents())
			b.WriteString("\n\n")
		default:
			writePlain(b, s.Contents())
		}
	})
}

func listMarker(li *goquery.Selection) string {
	parent := li.Parent()
	if parent.HasClass("task-list") {
		return ""
	}
	if goquery.NodeName(parent) != "ol" {
		return "- "
	}
	start := 1
	if v, ok := parent.Attr("start"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			start = n
		}
	}
	return strconv.Itoa(start+li.Index()) + ". "
}

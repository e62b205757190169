package search

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// StripTags removes markup such as <strong> highlights from a fragment and
// decodes entities.
func StripTags(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return collapseSpace(fragment)
	}

	z := html.NewTokenizer(strings.NewReader(fragment))
	var buf strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return collapseSpace(buf.String())
		case html.TextToken:
			buf.Write(z.Text())
		}
	}
}

// VisibleText returns the human-readable text of an HTML document
func VisibleText(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", err
	}

	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "nav", "footer", "svg":
				return
			}
		}

		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(doc)
	return collapseSpace(buf.String()), nil
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

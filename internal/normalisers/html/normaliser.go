package html

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// ContentType is reported for every file this normaliser handles.
const ContentType = "text/html"

const (
	// invisible elements are dropped with their content.
	invisible = "script, style, noscript, template, svg, iframe"

	// blocks start and end on their own line.
	blocks = "p, div, br, hr, h1, h2, h3, h4, h5, h6, li, tr, td, th, " +
		"blockquote, pre, table, section, article, header, footer, nav, main"
)

var whitespace = regexp.MustCompile(`\s+`)

// Normaliser extracts readable text from HTML.
type Normaliser struct{}

// New creates a new HTML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Extensions returns the extensions this normaliser handles.
func (n *Normaliser) Extensions() []string {
	return []string{".html", ".htm", ".xhtml"}
}

// Normalise takes the title from the <title> element and the content from
// the body. Entities are decoded.
func (n *Normaliser) Normalise(name string, content []byte) (*driven.NormaliseResult, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", domain.ErrInvalidInput, name, err)
	}

	title := collapseSpaces(doc.Find("title").First().Text())

	body := doc.Find("body")
	body.Find(invisible).Remove()
	for _, n := range body.Nodes {
		collapseText(n)
	}
	body.Find(blocks).Each(func(_ int, s *goquery.Selection) {
		s.PrependNodes(newline())
		s.AppendNodes(newline())
	})

	return &driven.NormaliseResult{
		Title:       title,
		Content:     cleanLines(body.Text()),
		ContentType: ContentType,
	}, nil
}

// collapseText folds whitespace runs in every text node below n into a
// single space, as a browser renders them.
func collapseText(n *html.Node) {
	if n.Type == html.TextNode {
		n.Data = whitespace.ReplaceAllString(n.Data, " ")
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collapseText(c)
	}
}

func newline() *html.Node {
	return &html.Node{Type: html.TextNode, Data: "\n"}
}

// cleanLines collapses whitespace within each line and drops blank lines.
func cleanLines(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = collapseSpaces(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

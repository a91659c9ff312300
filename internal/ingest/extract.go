package ingest

import (
	"errors"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

// ErrNoContent means the page had no recognizable article body. The entry is
// dropped rather than indexed: partial data is worse than none.
var ErrNoContent = errors.New("article content not found")

// Extractor pulls the main article text out of a page's markup.
type Extractor interface {
	Extract(pageHTML, pageURL string) (string, error)
}

// SelectorExtractor locates a known content container by CSS selector.
type SelectorExtractor struct {
	Selector string
}

func (e SelectorExtractor) Extract(pageHTML, _ string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return "", err
	}
	sel := doc.Find(e.Selector).First()
	if sel.Length() == 0 {
		return "", ErrNoContent
	}

	var parts []string
	for _, node := range sel.Nodes {
		collectText(node, &parts)
	}
	text := strings.Join(parts, "\n")
	if text == "" {
		return "", ErrNoContent
	}
	return text, nil
}

// collectText gathers trimmed text nodes in document order, one line each.
func collectText(n *html.Node, parts *[]string) {
	if n.Type == html.TextNode {
		if t := strings.TrimSpace(n.Data); t != "" {
			*parts = append(*parts, t)
		}
		return
	}
	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}

// ReadabilityExtractor is a selector-free alternative for feeds without a
// stable content container.
type ReadabilityExtractor struct{}

func (ReadabilityExtractor) Extract(pageHTML, pageURL string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		u = &url.URL{}
	}
	article, err := readability.FromReader(strings.NewReader(pageHTML), u)
	if err != nil {
		return "", ErrNoContent
	}
	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return "", ErrNoContent
	}
	return text, nil
}

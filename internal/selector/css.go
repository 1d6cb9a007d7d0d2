package selector

import (
	"bytes"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// CSSEngine interprets selector strings as CSS selectors via goquery.
type CSSEngine struct {
	logger *slog.Logger
}

// NewCSSEngine creates a new CSS selector engine.
func NewCSSEngine(logger *slog.Logger) *CSSEngine {
	return &CSSEngine{
		logger: logger.With("component", "css_engine"),
	}
}

func (e *CSSEngine) Name() string { return "css" }

// Parse implements Engine.
func (e *CSSEngine) Parse(body []byte) (Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	return &cssDocument{doc: doc}, nil
}

type cssDocument struct {
	doc *goquery.Document
}

func (d *cssDocument) SelectAll(selector string) []Node {
	var nodes []Node
	d.doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		nodes = append(nodes, &cssNode{sel: sel})
	})
	return nodes
}

func (d *cssDocument) SelectFirst(selector string) (Node, bool) {
	sel := d.doc.Find(selector).First()
	if sel.Length() == 0 {
		return nil, false
	}
	return &cssNode{sel: sel}, true
}

type cssNode struct {
	sel *goquery.Selection
}

func (n *cssNode) Text() string {
	return strings.TrimSpace(n.sel.Text())
}

func (n *cssNode) HTML() string {
	html, err := n.sel.Html()
	if err != nil {
		return ""
	}
	return html
}

func (n *cssNode) Attr(name string) string {
	val, _ := n.sel.Attr(name)
	return val
}

func (n *cssNode) SelectFirst(selector string) (Node, bool) {
	sel := n.sel.Find(selector).First()
	if sel.Length() == 0 {
		return nil, false
	}
	return &cssNode{sel: sel}, true
}

package selector

import (
	"bytes"
	"log/slog"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// XPathEngine interprets selector strings as XPath expressions via htmlquery.
type XPathEngine struct {
	logger *slog.Logger
}

// NewXPathEngine creates a new XPath selector engine.
func NewXPathEngine(logger *slog.Logger) *XPathEngine {
	return &XPathEngine{
		logger: logger.With("component", "xpath_engine"),
	}
}

func (e *XPathEngine) Name() string { return "xpath" }

// Parse implements Engine.
func (e *XPathEngine) Parse(body []byte) (Document, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	return &xpathDocument{root: doc, logger: e.logger}, nil
}

type xpathDocument struct {
	root   *html.Node
	logger *slog.Logger
}

func (d *xpathDocument) SelectAll(selector string) []Node {
	found, err := htmlquery.QueryAll(d.root, selector)
	if err != nil {
		d.logger.Warn("invalid xpath", "selector", selector, "error", err)
		return nil
	}
	nodes := make([]Node, 0, len(found))
	for _, n := range found {
		nodes = append(nodes, &xpathNode{node: n, logger: d.logger})
	}
	return nodes
}

func (d *xpathDocument) SelectFirst(selector string) (Node, bool) {
	found, err := htmlquery.Query(d.root, selector)
	if err != nil {
		d.logger.Warn("invalid xpath", "selector", selector, "error", err)
		return nil, false
	}
	if found == nil {
		return nil, false
	}
	return &xpathNode{node: found, logger: d.logger}, true
}

type xpathNode struct {
	node   *html.Node
	logger *slog.Logger
}

func (n *xpathNode) Text() string {
	return strings.TrimSpace(htmlquery.InnerText(n.node))
}

func (n *xpathNode) HTML() string {
	return htmlquery.OutputHTML(n.node, false)
}

func (n *xpathNode) Attr(name string) string {
	return htmlquery.SelectAttr(n.node, name)
}

func (n *xpathNode) SelectFirst(selector string) (Node, bool) {
	found, err := htmlquery.Query(n.node, selector)
	if err != nil {
		n.logger.Warn("invalid xpath", "selector", selector, "error", err)
		return nil, false
	}
	if found == nil {
		return nil, false
	}
	return &xpathNode{node: found, logger: n.logger}, true
}

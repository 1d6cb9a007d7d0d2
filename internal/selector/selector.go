// Package selector hides the concrete HTML-query library behind a small
// strategy interface. Extraction code works only with Engine, Document and
// Node; the selector strings in the configuration stay opaque to it.
package selector

import (
	"fmt"
	"log/slog"
)

// Engine parses raw HTML into a queryable Document.
type Engine interface {
	// Name returns the engine identifier ("css" or "xpath").
	Name() string

	// Parse builds a Document from raw HTML bytes.
	Parse(body []byte) (Document, error)
}

// Document is a parsed page that can be queried with selector strings.
type Document interface {
	// SelectAll returns every node matching the selector, in document order.
	SelectAll(selector string) []Node

	// SelectFirst returns the first node matching the selector.
	SelectFirst(selector string) (Node, bool)
}

// Node is a single matched element.
type Node interface {
	// Text returns the trimmed text content of the node.
	Text() string

	// HTML returns the inner HTML of the node.
	HTML() string

	// Attr returns the value of the named attribute, or "" if absent.
	Attr(name string) string

	// SelectFirst returns the first descendant matching the selector.
	SelectFirst(selector string) (Node, bool)
}

// ForName returns the engine registered under the given name.
func ForName(name string, logger *slog.Logger) (Engine, error) {
	switch name {
	case "", "css":
		return NewCSSEngine(logger), nil
	case "xpath":
		return NewXPathEngine(logger), nil
	default:
		return nil, fmt.Errorf("unknown selector engine %q", name)
	}
}

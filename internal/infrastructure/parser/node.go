package parser

import (
	"html"

	"github.com/PuerkitoBio/goquery"
	nethtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// NodeKind is the closed set of element kinds the walker dispatches on.
type NodeKind int

const (
	KindOther NodeKind = iota
	KindHeading
	KindParagraph
)

func (k NodeKind) String() string {
	switch k {
	case KindHeading:
		return "heading"
	case KindParagraph:
		return "paragraph"
	default:
		return "other"
	}
}

// Node wraps a single element of a parsed document.
type Node struct {
	sel *goquery.Selection
}

// Kind classifies the element: h2-h4 are headings, p and li hold phrases.
// An li that wraps block elements is a container and is descended into.
func (n Node) Kind() NodeKind {
	if n.sel == nil || len(n.sel.Nodes) == 0 {
		return KindOther
	}
	node := n.sel.Nodes[0]
	if node.Type != nethtml.ElementNode {
		return KindOther
	}
	switch node.DataAtom {
	case atom.H2, atom.H3, atom.H4:
		return KindHeading
	case atom.P:
		return KindParagraph
	case atom.Li:
		if hasBlockChild(node) {
			return KindOther
		}
		return KindParagraph
	default:
		return KindOther
	}
}

// Text is the raw text content of the element and its descendants.
func (n Node) Text() string {
	if n.sel == nil {
		return ""
	}
	return n.sel.Text()
}

// Markup serializes the element's inner HTML.
func (n Node) Markup() (string, error) {
	if n.sel == nil {
		return "", nil
	}
	return n.sel.Html()
}

// Children returns element children in document order.
func (n Node) Children() []Node {
	if n.sel == nil {
		return nil
	}
	kids := n.sel.Children()
	out := make([]Node, 0, kids.Length())
	for i := range kids.Nodes {
		out = append(out, Node{sel: kids.Eq(i)})
	}
	return out
}

// IsListItem reports whether the element is an li.
func (n Node) IsListItem() bool {
	return n.sel != nil && len(n.sel.Nodes) > 0 && n.sel.Nodes[0].DataAtom == atom.Li
}

// Part is one piece of a mixed container: either a run of inline markup or
// a block-level child.
type Part struct {
	Inline string
	Block  *Node
}

// Parts splits the element's content into inline runs and block children in
// document order. Adjacent text and inline elements share one run.
func (n Node) Parts() []Part {
	if n.sel == nil {
		return nil
	}
	var (
		parts []Part
		run   []byte
	)
	flush := func() {
		if len(run) > 0 {
			parts = append(parts, Part{Inline: string(run)})
			run = run[:0]
		}
	}

	contents := n.sel.Contents()
	for i, c := range contents.Nodes {
		switch {
		case c.Type == nethtml.TextNode:
			run = append(run, html.EscapeString(c.Data)...)
		case c.Type == nethtml.ElementNode && isBlock(c):
			flush()
			block := Node{sel: contents.Eq(i)}
			parts = append(parts, Part{Block: &block})
		case c.Type == nethtml.ElementNode:
			markup, err := goquery.OuterHtml(contents.Eq(i))
			if err == nil {
				run = append(run, markup...)
			}
		}
	}
	flush()
	return parts
}

func isBlock(n *nethtml.Node) bool {
	switch n.DataAtom {
	case atom.P, atom.Div, atom.Ul, atom.Ol, atom.Blockquote, atom.H2, atom.H3, atom.H4:
		return true
	}
	return false
}

func hasBlockChild(n *nethtml.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == nethtml.ElementNode && isBlock(c) {
			return true
		}
	}
	return false
}

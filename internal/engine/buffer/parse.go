package buffer

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parse builds a document from HTML-like markup. Nested blocks are
// flattened and <br> ends the current block. Elements the composer does not
// know are kept as generic inline containers.
func Parse(markup string, opts ...Option) (*Document, error) {
	d := New(opts...)
	if markup == "" {
		return d, nil
	}
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), ctx)
	if err != nil {
		return nil, fmt.Errorf("parsing markup: %w", err)
	}

	p := &parser{blockTag: d.blockTag}
	for _, n := range nodes {
		p.top(n)
	}
	d.root.Children = p.finish()
	for _, b := range d.blocks() {
		b.Children = normalizeInline(b.Children)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// parser accumulates blocks and any inline content seen at the top level.
type parser struct {
	blockTag   string
	blocks     []*Node
	pending    []*Node
	afterBreak bool
}

func (p *parser) top(n *html.Node) {
	switch {
	case n.Type == html.ElementNode && IsBlockTag(n.Data):
		p.flush(false)
		p.block(n.Data, attrsOf(n), n)
	case n.Type == html.ElementNode && n.DataAtom == atom.Br:
		p.flush(true)
		p.afterBreak = true
	default:
		p.pending = append(p.pending, p.inline(n)...)
	}
}

// flush turns pending top-level inline content into a block. Whitespace-only
// content between blocks is dropped unless a <br> forces a block.
func (p *parser) flush(force bool) {
	if !force && isBlank(p.pending) {
		p.pending = nil
		return
	}
	b := NewContainer(p.blockTag)
	b.Children = p.pending
	p.blocks = append(p.blocks, b)
	p.pending = nil
}

func (p *parser) finish() []*Node {
	if len(p.blocks) == 0 && !p.afterBreak {
		return p.pending
	}
	if len(p.pending) > 0 || p.afterBreak {
		p.flush(p.afterBreak && len(p.pending) == 0)
	}
	return p.blocks
}

// block appends a block for n, flattening nested blocks into siblings.
func (p *parser) block(tag string, attrs []Attr, n *html.Node) {
	open := func() *Node {
		b := NewContainer(tag)
		b.Attrs = attrs
		p.blocks = append(p.blocks, b)
		return b
	}
	cur := open()
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case c.Type == html.ElementNode && c.DataAtom == atom.Br:
			cur = open()
		case c.Type == html.ElementNode && IsBlockTag(c.Data):
			p.block(c.Data, attrsOf(c), c)
			cur = nil
		default:
			in := p.inline(c)
			if len(in) == 0 {
				continue
			}
			if cur == nil {
				cur = open()
			}
			cur.Children = append(cur.Children, in...)
		}
	}
}

// inline converts n to inline nodes. Block elements found inside inline
// content lose their tag and contribute their children.
func (p *parser) inline(n *html.Node) []*Node {
	switch n.Type {
	case html.TextNode:
		return []*Node{NewText(n.Data)}
	case html.ElementNode:
		if n.DataAtom == atom.Br {
			return nil
		}
		var children []*Node
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			children = append(children, p.inline(ch)...)
		}
		if IsBlockTag(n.Data) {
			return children
		}
		c := NewContainer(n.Data)
		c.Attrs = attrsOf(n)
		c.Children = children
		return []*Node{c}
	default:
		return nil
	}
}

func attrsOf(n *html.Node) []Attr {
	if len(n.Attr) == 0 {
		return nil
	}
	attrs := make([]Attr, 0, len(n.Attr))
	for _, a := range n.Attr {
		attrs = append(attrs, Attr{Key: a.Key, Val: a.Val})
	}
	return attrs
}

func isBlank(nodes []*Node) bool {
	var sb strings.Builder
	textOf(&sb, nodes)
	return strings.TrimSpace(sb.String()) == ""
}

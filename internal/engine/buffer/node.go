package buffer

import "strings"

// Kind distinguishes text runs from containers.
type Kind uint8

const (
	// KindText is a run of text.
	KindText Kind = iota
	// KindContainer is an element with children.
	KindContainer
)

// LinkTag is the tag of link containers.
const LinkTag = "a"

var blockTags = map[string]bool{
	"p":          true,
	"div":        true,
	"h1":         true,
	"h2":         true,
	"h3":         true,
	"h4":         true,
	"h5":         true,
	"h6":         true,
	"pre":        true,
	"blockquote": true,
	"li":         true,
}

// IsBlockTag reports whether tag names a block container.
func IsBlockTag(tag string) bool {
	return blockTags[strings.ToLower(tag)]
}

// Attr is a container attribute.
type Attr struct {
	Key string
	Val string
}

// Node is a text run or a container in the document tree.
type Node struct {
	Kind     Kind
	Tag      string // containers only
	Attrs    []Attr // containers only
	Text     string // text runs only
	Children []*Node
}

// NewText creates a text run.
func NewText(text string) *Node {
	return &Node{Kind: KindText, Text: text}
}

// NewContainer creates a container with the given children.
func NewContainer(tag string, children ...*Node) *Node {
	return &Node{Kind: KindContainer, Tag: strings.ToLower(tag), Children: children}
}

// NewLink creates a link container around text.
func NewLink(href, text string) *Node {
	n := NewContainer(LinkTag, NewText(text))
	n.Attrs = []Attr{{Key: "href", Val: href}}
	return n
}

// IsText returns true for text runs.
func (n *Node) IsText() bool {
	return n.Kind == KindText
}

// IsBlock returns true for block containers.
func (n *Node) IsBlock() bool {
	return n.Kind == KindContainer && blockTags[n.Tag]
}

// IsLink returns true for link containers.
func (n *Node) IsLink() bool {
	return n.Kind == KindContainer && n.Tag == LinkTag
}

// Format returns the inline format the node represents, or 0.
func (n *Node) Format() Format {
	if n.Kind != KindContainer {
		return 0
	}
	return tagFormats[n.Tag]
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(key string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// Len returns the node's length in UTF-16 code units. Block children of a
// container are separated by one code unit each.
func (n *Node) Len() int {
	if n.IsText() {
		return CodeUnits(n.Text)
	}
	total := 0
	blocks := 0
	for _, c := range n.Children {
		total += c.Len()
		if c.IsBlock() {
			blocks++
		}
	}
	if blocks > 1 {
		total += blocks - 1
	}
	return total
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	c := &Node{Kind: n.Kind, Tag: n.Tag, Text: n.Text}
	if len(n.Attrs) > 0 {
		c.Attrs = append([]Attr(nil), n.Attrs...)
	}
	if len(n.Children) > 0 {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = child.Clone()
		}
	}
	return c
}

// shell returns a childless copy of a container.
func (n *Node) shell() *Node {
	c := &Node{Kind: n.Kind, Tag: n.Tag}
	if len(n.Attrs) > 0 {
		c.Attrs = append([]Attr(nil), n.Attrs...)
	}
	return c
}

// sameElement reports whether two containers have equal tags and attributes.
func sameElement(a, b *Node) bool {
	if a.Kind != KindContainer || b.Kind != KindContainer || a.Tag != b.Tag {
		return false
	}
	if len(a.Attrs) != len(b.Attrs) {
		return false
	}
	for i := range a.Attrs {
		if a.Attrs[i] != b.Attrs[i] {
			return false
		}
	}
	return true
}

// hasFormat reports whether n is, or contains, a container of format f.
func hasFormat(n *Node, f Format) bool {
	if n.IsText() {
		return false
	}
	if n.Format() == f {
		return true
	}
	for _, c := range n.Children {
		if hasFormat(c, f) {
			return true
		}
	}
	return false
}

// textOf appends the text runs below nodes.
func textOf(sb *strings.Builder, nodes []*Node) {
	for _, n := range nodes {
		if n.IsText() {
			sb.WriteString(n.Text)
			continue
		}
		textOf(sb, n.Children)
	}
}

// inlineLen returns the total length of a list of inline nodes.
func inlineLen(nodes []*Node) int {
	total := 0
	for _, n := range nodes {
		total += n.Len()
	}
	return total
}

package buffer

import (
	"strings"

	"golang.org/x/net/html"
)

// Markup serializes the document with a pre-order walk. Text is escaped;
// attributes keep their original order.
func (d *Document) Markup() string {
	var sb strings.Builder
	writeNodes(&sb, d.root.Children)
	return sb.String()
}

// String implements fmt.Stringer.
func (d *Document) String() string {
	return d.Markup()
}

func writeNodes(sb *strings.Builder, nodes []*Node) {
	for _, n := range nodes {
		writeNode(sb, n)
	}
}

func writeNode(sb *strings.Builder, n *Node) {
	if n.IsText() {
		sb.WriteString(html.EscapeString(n.Text))
		return
	}
	sb.WriteByte('<')
	sb.WriteString(n.Tag)
	for _, a := range n.Attrs {
		sb.WriteByte(' ')
		sb.WriteString(a.Key)
		sb.WriteString(`="`)
		sb.WriteString(html.EscapeString(a.Val))
		sb.WriteByte('"')
	}
	sb.WriteByte('>')
	writeNodes(sb, n.Children)
	sb.WriteString("</")
	sb.WriteString(n.Tag)
	sb.WriteByte('>')
}

package buffer

import (
	"strings"
	"unicode/utf8"
)

// Document is the rich-text tree. It is the single source of truth for the
// composer's content.
type Document struct {
	root     *Node
	tags     [len(defaultTags)]string
	blockTag string
}

// New creates an empty document in inline mode.
func New(opts ...Option) *Document {
	d := &Document{
		root:     NewContainer(""),
		tags:     defaultTags,
		blockTag: DefaultBlockTag,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	return &Document{
		root:     d.root.Clone(),
		tags:     d.tags,
		blockTag: d.blockTag,
	}
}

// Root returns the root container. Callers must not modify it.
func (d *Document) Root() *Node {
	return d.root
}

// Tag returns the tag used when f is newly applied.
func (d *Document) Tag(f Format) string {
	return d.tags[f.index()]
}

// IsBlockMode reports whether the root holds block containers.
func (d *Document) IsBlockMode() bool {
	return len(d.root.Children) > 0 && d.root.Children[0].IsBlock()
}

// blocks returns the containers that directly hold inline content. In
// inline mode that is the root itself.
func (d *Document) blocks() []*Node {
	if d.IsBlockMode() {
		return d.root.Children
	}
	return []*Node{d.root}
}

// Len returns the length of the plain-text projection in UTF-16 code units.
func (d *Document) Len() int {
	return d.root.Len()
}

// PlainText returns the plain-text projection of the document.
func (d *Document) PlainText() string {
	var sb strings.Builder
	for i, b := range d.blocks() {
		if i > 0 {
			sb.WriteByte('\n')
		}
		textOf(&sb, b.Children)
	}
	return sb.String()
}

// TextIn returns the plain text covered by [start, end).
func (d *Document) TextIn(start, end int) (string, error) {
	if err := CheckRange(start, end, d.Len()); err != nil {
		return "", err
	}
	plain := d.PlainText()
	return plain[byteIndex(plain, start):byteIndex(plain, end)], nil
}

// CharBefore returns the character that ends at offset in the projection.
func (d *Document) CharBefore(offset int) (rune, bool) {
	if offset <= 0 || offset > d.Len() {
		return 0, false
	}
	plain := d.PlainText()
	r, size := utf8.DecodeLastRuneInString(plain[:byteIndex(plain, offset)])
	return r, size > 0
}

// Snap rounds offset down to a code point boundary and clamps it to [0, Len()].
func (d *Document) Snap(offset int) int {
	if offset <= 0 {
		return 0
	}
	return snapUnits(d.PlainText(), offset)
}

// locate returns the index of the block holding offset and the offset
// relative to that block. A block owns both of its edges; the separator
// between two blocks belongs to neither.
func (d *Document) locate(offset int) (int, int) {
	blocks := d.blocks()
	pos := 0
	for i, b := range blocks {
		l := inlineLen(b.Children)
		if offset <= pos+l {
			return i, offset - pos
		}
		pos += l + 1
	}
	last := len(blocks) - 1
	return last, inlineLen(blocks[last].Children)
}

// eachBlockRange calls fn for every block that has a non-empty
// intersection with [start, end), passing block-relative offsets.
func (d *Document) eachBlockRange(start, end int, fn func(b *Node, rs, re int)) {
	pos := 0
	for _, b := range d.blocks() {
		l := inlineLen(b.Children)
		s, e := max(start, pos), min(end, pos+l)
		if s < e {
			fn(b, s-pos, e-pos)
		}
		pos += l + 1
	}
}

// run is a text run visited in document order.
type run struct {
	node    *Node
	start   int
	end     int
	formats FormatSet
	inLink  bool
}

// walkRuns visits every text run with its absolute position. It stops when
// fn returns false.
func (d *Document) walkRuns(fn func(r run) bool) {
	pos := 0
	for i, b := range d.blocks() {
		if i > 0 {
			pos++
		}
		if !walkInline(b.Children, &pos, 0, false, fn) {
			return
		}
	}
}

func walkInline(nodes []*Node, pos *int, formats FormatSet, inLink bool, fn func(r run) bool) bool {
	for _, n := range nodes {
		if n.IsText() {
			l := CodeUnits(n.Text)
			r := run{node: n, start: *pos, end: *pos + l, formats: formats, inLink: inLink}
			*pos += l
			if !fn(r) {
				return false
			}
			continue
		}
		f := formats
		if fm := n.Format(); fm != 0 {
			f = f.With(fm)
		}
		if !walkInline(n.Children, pos, f, inLink || n.IsLink(), fn) {
			return false
		}
	}
	return true
}

// runAt finds the run that determines the formatting at a caret. The run
// ending at offset wins; at the start of a block the run starting there is used.
func (d *Document) runAt(offset int) (run, bool) {
	var left, right run
	var haveLeft, haveRight bool
	d.walkRuns(func(r run) bool {
		if r.start < offset && offset <= r.end {
			left, haveLeft = r, true
			return false
		}
		if !haveRight && r.start == offset && r.end > r.start {
			right, haveRight = r, true
		}
		return r.start <= offset
	})
	if haveLeft {
		return left, true
	}
	return right, haveRight
}

// FormatsAt returns the formats active at a collapsed caret.
func (d *Document) FormatsAt(offset int) FormatSet {
	r, ok := d.runAt(offset)
	if !ok {
		return 0
	}
	return r.formats
}

// LinkAt reports whether the caret at offset sits in link text.
func (d *Document) LinkAt(offset int) bool {
	r, ok := d.runAt(offset)
	return ok && r.inLink
}

// FormatsIn returns the formats shared by all text in [start, end). An empty
// range reports FormatsAt(start).
func (d *Document) FormatsIn(start, end int) FormatSet {
	if start >= end {
		return d.FormatsAt(start)
	}
	all := FormatSet(0xff)
	seen := false
	d.walkRuns(func(r run) bool {
		if r.start >= end {
			return false
		}
		if r.end > start && r.end > r.start {
			all &= r.formats
			seen = true
		}
		return true
	})
	if !seen {
		return d.FormatsAt(start)
	}
	return all
}

// LinkIn reports whether any text in [start, end) is link text.
func (d *Document) LinkIn(start, end int) bool {
	if start >= end {
		return d.LinkAt(start)
	}
	found := false
	d.walkRuns(func(r run) bool {
		if r.start >= end {
			return false
		}
		if r.end > start && r.end > r.start && r.inLink {
			found = true
			return false
		}
		return true
	})
	return found
}

// Validate checks the structural invariants of the tree.
func (d *Document) Validate() error {
	if d.root.Kind != KindContainer {
		return &StructuralError{Reason: "root is not a container"}
	}
	blocks := 0
	for _, c := range d.root.Children {
		if c.IsBlock() {
			blocks++
		}
	}
	if blocks != 0 && blocks != len(d.root.Children) {
		return &StructuralError{Reason: "root mixes block and inline children"}
	}
	for _, b := range d.blocks() {
		if err := validateInline(b.Children, false); err != nil {
			return err
		}
	}
	return nil
}

func validateInline(nodes []*Node, inLink bool) error {
	for _, n := range nodes {
		if n.IsText() {
			if n.Text == "" {
				return &StructuralError{Reason: "empty text run"}
			}
			continue
		}
		if n.IsBlock() {
			return &StructuralError{Reason: "block <" + n.Tag + "> inside inline content"}
		}
		if len(n.Children) == 0 {
			return &StructuralError{Reason: "empty inline container <" + n.Tag + ">"}
		}
		if inLink && n.IsLink() {
			return &StructuralError{Reason: "nested link"}
		}
		if err := validateInline(n.Children, inLink || n.IsLink()); err != nil {
			return err
		}
	}
	return nil
}

package buffer

// InsertText inserts text at offset so that it carries exactly the given
// formats. Text joins an adjacent run when that run already has those
// formats; otherwise it is wrapped in new format containers.
func (d *Document) InsertText(offset int, text string, formats FormatSet) error {
	if err := CheckRange(offset, offset, d.Len()); err != nil {
		return err
	}
	if text = CleanText(text); text == "" {
		return nil
	}
	bi, rel := d.locate(offset)
	b := d.blocks()[bi]
	if !insertIntoRun(b.Children, rel, text, formats) {
		left, right := splitInline(b.Children, rel)
		b.Children = concat(left, []*Node{d.wrapText(text, formats)}, right)
	}
	b.Children = normalizeInline(b.Children)
	return nil
}

// InsertNode inserts an inline node at offset.
func (d *Document) InsertNode(offset int, n *Node) error {
	if err := CheckRange(offset, offset, d.Len()); err != nil {
		return err
	}
	if n.IsBlock() {
		return &StructuralError{Reason: "cannot insert block <" + n.Tag + "> as inline content"}
	}
	bi, rel := d.locate(offset)
	b := d.blocks()[bi]
	left, right := splitInline(b.Children, rel)
	b.Children = normalizeInline(concat(left, []*Node{n}, right))
	return nil
}

// wrapText nests a text run inside containers for formats, outermost first.
func (d *Document) wrapText(text string, formats FormatSet) *Node {
	n := NewText(text)
	fs := formats.Formats()
	for i := len(fs) - 1; i >= 0; i-- {
		n = NewContainer(d.Tag(fs[i]), n)
	}
	return n
}

// DeleteRange removes [start, end). Removing a block separator merges the
// two blocks; containers left empty are pruned.
func (d *Document) DeleteRange(start, end int) error {
	if err := CheckRange(start, end, d.Len()); err != nil {
		return err
	}
	if start == end {
		return nil
	}
	bi, rs := d.locate(start)
	bj, re := d.locate(end)
	blocks := d.blocks()
	first, last := blocks[bi], blocks[bj]
	left, _ := splitInline(first.Children, rs)
	_, right := splitInline(last.Children, re)
	first.Children = normalizeInline(concat(left, right))
	if bj > bi {
		d.root.Children = concat(d.root.Children[:bi+1], d.root.Children[bj+1:])
	}
	d.collapseEmpty()
	return nil
}

// collapseEmpty returns a document reduced to one empty block to the empty
// inline root.
func (d *Document) collapseEmpty() {
	if d.IsBlockMode() && len(d.root.Children) == 1 && len(d.root.Children[0].Children) == 0 {
		d.root.Children = nil
	}
}

// SplitBlock splits the block holding offset into two sibling blocks. Formats
// open at the split point continue into both halves. An inline-mode document
// is first promoted to a single block.
func (d *Document) SplitBlock(offset int) error {
	if err := CheckRange(offset, offset, d.Len()); err != nil {
		return err
	}
	if !d.IsBlockMode() {
		p := NewContainer(d.blockTag)
		p.Children = d.root.Children
		d.root.Children = []*Node{p}
	}
	bi, rel := d.locate(offset)
	b := d.root.Children[bi]
	left, right := splitInline(b.Children, rel)
	next := b.shell()
	b.Children = normalizeInline(left)
	next.Children = normalizeInline(right)
	d.root.Children = concat(d.root.Children[:bi+1], []*Node{next}, d.root.Children[bi+1:])
	return nil
}

// ApplyFormat makes all text in [start, end) carry f. Boundary nodes are
// split so only the range is affected.
func (d *Document) ApplyFormat(start, end int, f Format) error {
	if err := CheckRange(start, end, d.Len()); err != nil {
		return err
	}
	tag := d.Tag(f)
	d.eachBlockRange(start, end, func(b *Node, rs, re int) {
		left, mid, right := sliceInline(b.Children, rs, re)
		b.Children = normalizeInline(concat(left, wrapMissing(mid, f, tag), right))
	})
	return nil
}

// RemoveFormat strips f from all text in [start, end).
func (d *Document) RemoveFormat(start, end int, f Format) error {
	if err := CheckRange(start, end, d.Len()); err != nil {
		return err
	}
	d.eachBlockRange(start, end, func(b *Node, rs, re int) {
		left, mid, right := sliceInline(b.Children, rs, re)
		mid = unwrapWhere(mid, func(n *Node) bool { return n.Format() == f })
		b.Children = normalizeInline(concat(left, mid, right))
	})
	return nil
}

// WrapLink turns [start, end) into link text pointing at href. Links already
// inside the range are replaced.
func (d *Document) WrapLink(start, end int, href string) error {
	if err := CheckRange(start, end, d.Len()); err != nil {
		return err
	}
	d.eachBlockRange(start, end, func(b *Node, rs, re int) {
		left, mid, right := sliceInline(b.Children, rs, re)
		link := NewContainer(LinkTag)
		link.Attrs = []Attr{{Key: "href", Val: href}}
		link.Children = unwrapWhere(mid, (*Node).IsLink)
		b.Children = normalizeInline(concat(left, []*Node{link}, right))
	})
	return nil
}

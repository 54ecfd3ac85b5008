package buffer

// Inline content is a list of nodes without blocks. The helpers below never
// modify the nodes they are given except where noted; nodes that do not
// straddle a split point are reused as-is.

// splitInline splits nodes at the code unit offset at. Nodes that straddle
// the offset are split into fresh left and right halves.
func splitInline(nodes []*Node, at int) (left, right []*Node) {
	pos := 0
	for i, n := range nodes {
		l := n.Len()
		switch {
		case at >= pos+l:
			left = append(left, n)
		case at <= pos:
			right = append(right, nodes[i:]...)
			return left, right
		default:
			ln, rn := splitNode(n, at-pos)
			left = append(left, ln)
			right = append(right, rn)
			right = append(right, nodes[i+1:]...)
			return left, right
		}
		pos += l
	}
	return left, right
}

// splitNode splits a single node at rel, where 0 < rel < n.Len().
func splitNode(n *Node, rel int) (*Node, *Node) {
	if n.IsText() {
		bi := byteIndex(n.Text, rel)
		return NewText(n.Text[:bi]), NewText(n.Text[bi:])
	}
	lc, rc := splitInline(n.Children, rel)
	l, r := n.shell(), n.shell()
	l.Children, r.Children = lc, rc
	return l, r
}

// sliceInline returns the parts of nodes before start and from end on, and the middle.
func sliceInline(nodes []*Node, start, end int) (left, mid, right []*Node) {
	left, rest := splitInline(nodes, start)
	mid, right = splitInline(rest, end-start)
	return left, mid, right
}

func concat(parts ...[]*Node) []*Node {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]*Node, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// normalizeInline prunes empty text runs and containers and merges equal
// neighbours. Children of kept containers are normalized in place.
func normalizeInline(nodes []*Node) []*Node {
	out := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		if n.IsText() {
			if n.Text == "" {
				continue
			}
		} else {
			n.Children = normalizeInline(n.Children)
			if len(n.Children) == 0 {
				continue
			}
		}
		if k := len(out); k > 0 {
			last := out[k-1]
			if last.IsText() && n.IsText() {
				out[k-1] = NewText(last.Text + n.Text)
				continue
			}
			if sameElement(last, n) {
				merged := last.shell()
				merged.Children = normalizeInline(concat(last.Children, n.Children))
				out[k-1] = merged
				continue
			}
		}
		out = append(out, n)
	}
	return out
}

// wrapMissing wraps every maximal run of siblings that carries no f in a new
// container with the given tag. Containers that hold f further down, and
// lone containers, are descended into so existing elements stay outermost.
func wrapMissing(nodes []*Node, f Format, tag string) []*Node {
	var out, group []*Node
	flush := func() {
		if len(group) == 0 {
			return
		}
		if len(group) == 1 && !group[0].IsText() {
			n := group[0]
			n.Children = wrapMissing(n.Children, f, tag)
			out = append(out, n)
			group = nil
			return
		}
		w := NewContainer(tag)
		w.Children = group
		out = append(out, w)
		group = nil
	}
	for _, n := range nodes {
		switch {
		case !hasFormat(n, f):
			group = append(group, n)
		case n.Format() == f:
			flush()
			out = append(out, n)
		default:
			flush()
			n.Children = wrapMissing(n.Children, f, tag)
			out = append(out, n)
		}
	}
	flush()
	return out
}

// unwrapWhere replaces every container matching pred with its children.
func unwrapWhere(nodes []*Node, pred func(*Node) bool) []*Node {
	var out []*Node
	for _, n := range nodes {
		if n.IsText() {
			out = append(out, n)
			continue
		}
		children := unwrapWhere(n.Children, pred)
		if pred(n) {
			out = append(out, children...)
			continue
		}
		n.Children = children
		out = append(out, n)
	}
	return out
}

// insertIntoRun inserts text into an existing run whose formats equal want.
// Runs ending at rel are preferred over runs starting there, so typing at the
// end of a bold word continues the word. Link text is never extended at its
// edges. It reports false when no suitable run exists.
func insertIntoRun(nodes []*Node, rel int, text string, want FormatSet) bool {
	for _, leftAffinity := range []bool{true, false} {
		pos := 0
		if tryInsert(nodes, &pos, rel, text, want, 0, false, leftAffinity) {
			return true
		}
	}
	return false
}

func tryInsert(nodes []*Node, pos *int, rel int, text string, want, have FormatSet, inLink, leftAffinity bool) bool {
	for _, n := range nodes {
		if *pos > rel {
			return false
		}
		if !n.IsText() {
			f := have
			if fm := n.Format(); fm != 0 {
				f = f.With(fm)
			}
			if tryInsert(n.Children, pos, rel, text, want, f, inLink || n.IsLink(), leftAffinity) {
				return true
			}
			continue
		}
		start := *pos
		end := start + CodeUnits(n.Text)
		*pos = end
		if have != want {
			continue
		}
		var ok bool
		if leftAffinity {
			ok = rel > start && rel <= end && !(inLink && rel == end)
		} else {
			ok = rel >= start && rel < end && !(inLink && rel == start)
		}
		if ok {
			bi := byteIndex(n.Text, rel-start)
			n.Text = n.Text[:bi] + text + n.Text[bi:]
			return true
		}
	}
	return false
}

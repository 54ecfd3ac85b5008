package engine

import (
	"strings"

	"github.com/dshills/composer/internal/engine/action"
	"github.com/dshills/composer/internal/engine/buffer"
	"github.com/dshills/composer/internal/engine/cursor"
)

// raised is an action requested during a transaction. It is enqueued on
// commit, after pending scopes have been moved through the edits.
type raised struct {
	req   action.Request
	scope buffer.Range
	cont  continuation
}

// txn is the working state of one operation. Every document mutation goes
// through it so the edits can be replayed on pending action scopes.
type txn struct {
	doc     *buffer.Document
	sel     cursor.Selection
	pending buffer.FormatSet
	edits   []cursor.Edit
	raised  []raised

	// moved is set when the operation placed the selection itself.
	// Otherwise commit moves the old selection through edits.
	moved bool
}

func (tx *txn) moveTo(sel cursor.Selection) {
	tx.sel = sel
	tx.moved = true
}

func (tx *txn) record(e cursor.Edit) {
	if !e.IsNoOp() {
		tx.edits = append(tx.edits, e)
	}
}

// span checks [start, end) against the document and moves offsets inside a
// surrogate pair to the start of the pair.
func (tx *txn) span(start, end int) (buffer.Range, error) {
	if err := buffer.CheckRange(start, end, tx.doc.Len()); err != nil {
		return buffer.Range{}, err
	}
	return buffer.NewRange(tx.doc.Snap(start), tx.doc.Snap(end)), nil
}

// insertText inserts text carrying formats and returns the offset after it.
func (tx *txn) insertText(at int, text string, formats buffer.FormatSet) (int, error) {
	text = buffer.CleanText(text)
	if err := tx.doc.InsertText(at, text, formats); err != nil {
		return at, err
	}
	n := buffer.CodeUnits(text)
	tx.record(cursor.NewInsert(at, n))
	return at + n, nil
}

// insertNode inserts an inline node and returns the offset after it.
func (tx *txn) insertNode(at int, n *buffer.Node) (int, error) {
	if err := tx.doc.InsertNode(at, n); err != nil {
		return at, err
	}
	l := n.Len()
	tx.record(cursor.NewInsert(at, l))
	return at + l, nil
}

func (tx *txn) deleteRange(start, end int) error {
	if err := tx.doc.DeleteRange(start, end); err != nil {
		return err
	}
	tx.record(cursor.NewDelete(start, end))
	return nil
}

// splitBlock splits the block at offset, adding one separator code unit.
func (tx *txn) splitBlock(at int) error {
	if err := tx.doc.SplitBlock(at); err != nil {
		return err
	}
	tx.record(cursor.NewInsert(at, 1))
	return nil
}

// caretFormats returns the formats typed text at the current selection
// would carry.
func (tx *txn) caretFormats() buffer.FormatSet {
	if tx.sel.IsCollapsed() {
		return tx.doc.FormatsAt(tx.sel.Start) ^ tx.pending
	}
	return tx.doc.FormatsIn(tx.sel.Start, tx.sel.End)
}

// replace replaces [start, end) with text and leaves the caret after it.
// Line breaks in text split the block.
func (tx *txn) replace(start, end int, text string, formats buffer.FormatSet) error {
	if err := tx.deleteRange(start, end); err != nil {
		return err
	}
	at := start
	text = strings.NewReplacer("\r\n", "\n", "\r", "\n").Replace(text)
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			if err := tx.splitBlock(at); err != nil {
				return err
			}
			at++
		}
		var err error
		if at, err = tx.insertText(at, line, formats); err != nil {
			return err
		}
	}
	tx.moveTo(cursor.NewCaret(at))
	tx.pending = 0
	return nil
}

func (tx *txn) raise(req action.Request, scope buffer.Range, cont continuation) {
	tx.raised = append(tx.raised, raised{req: req, scope: scope, cont: cont})
}

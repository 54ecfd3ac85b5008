package engine

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/dshills/composer/internal/engine/buffer"
	"github.com/dshills/composer/internal/engine/cursor"
)

// ============================================================================
// Selection
// ============================================================================

// Select sets the selection. Offsets past the end are clamped; start > end
// and negative offsets are rejected. Moving the selection discards formats
// toggled on the previous caret.
func (c *Composer) Select(start, end int) (ComposerUpdate, error) {
	sel, err := cursor.Validate(start, end, c.doc.Len())
	if err != nil {
		return c.fail("select", err)
	}
	sel = c.snapSelection(c.doc, sel)
	if sel != c.sel.Selection() {
		c.sel.Put(sel)
		c.pending = 0
	}
	c.logger.Debug("selection set", zap.Int("start", sel.Start), zap.Int("end", sel.End))
	return c.keep(), nil
}

// ============================================================================
// Text Operations
// ============================================================================

// ReplaceText replaces the selection with text, or inserts it at the caret.
// The caret ends up after the inserted text. Typing a mention trigger at a
// word start raises a mention action.
func (c *Composer) ReplaceText(text string) (ComposerUpdate, error) {
	return c.apply("replace_text", func(tx *txn) error {
		sel := tx.sel
		if err := tx.replace(sel.Start, sel.End, text, tx.caretFormats()); err != nil {
			return err
		}
		c.detectMention(tx, sel.Start, text)
		return nil
	})
}

// ReplaceTextIn replaces [start, end) with text regardless of the current
// selection. The caret ends up after the inserted text.
func (c *Composer) ReplaceTextIn(text string, start, end int) (ComposerUpdate, error) {
	return c.apply("replace_text_in", func(tx *txn) error {
		r, err := tx.span(start, end)
		if err != nil {
			return err
		}
		formats := tx.doc.FormatsIn(r.Start, r.End)
		if r.IsEmpty() && tx.sel == cursor.NewCaret(r.Start) {
			formats ^= tx.pending
		}
		if err := tx.replace(r.Start, r.End, text, formats); err != nil {
			return err
		}
		c.detectMention(tx, r.Start, text)
		return nil
	})
}

// Backspace deletes the selection, or the grapheme cluster before the caret.
func (c *Composer) Backspace() (ComposerUpdate, error) {
	return c.apply("backspace", func(tx *txn) error {
		sel := tx.sel
		if !sel.IsCollapsed() {
			return tx.deleteAndCollapse(sel.Start, sel.End)
		}
		if sel.Start == 0 {
			return nil
		}
		return tx.deleteAndCollapse(tx.doc.PrevGrapheme(sel.Start), sel.Start)
	})
}

// Delete deletes the selection, or the grapheme cluster after the caret.
func (c *Composer) Delete() (ComposerUpdate, error) {
	return c.apply("delete", func(tx *txn) error {
		sel := tx.sel
		if !sel.IsCollapsed() {
			return tx.deleteAndCollapse(sel.Start, sel.End)
		}
		if sel.Start >= tx.doc.Len() {
			return nil
		}
		return tx.deleteAndCollapse(sel.Start, tx.doc.NextGrapheme(sel.Start))
	})
}

// DeleteIn deletes [start, end) regardless of the current selection and
// leaves the caret at start.
func (c *Composer) DeleteIn(start, end int) (ComposerUpdate, error) {
	return c.apply("delete_in", func(tx *txn) error {
		r, err := tx.span(start, end)
		if err != nil {
			return err
		}
		return tx.deleteAndCollapse(r.Start, r.End)
	})
}

// Enter splits the block at the caret, replacing the selection if there is
// one. Text typed at the start of the new block keeps the formats that were
// active before the split.
func (c *Composer) Enter() (ComposerUpdate, error) {
	return c.apply("enter", func(tx *txn) error {
		sel := tx.sel
		formats := tx.caretFormats()
		if !sel.IsCollapsed() {
			if err := tx.deleteRange(sel.Start, sel.End); err != nil {
				return err
			}
		}
		if err := tx.splitBlock(sel.Start); err != nil {
			return err
		}
		at := sel.Start + 1
		tx.moveTo(cursor.NewCaret(at))
		tx.pending = formats ^ tx.doc.FormatsAt(at)
		return nil
	})
}

// Clear empties the document.
func (c *Composer) Clear() (ComposerUpdate, error) {
	return c.apply("clear", func(tx *txn) error {
		return tx.deleteAndCollapse(0, tx.doc.Len())
	})
}

// SetContentFromMarkup replaces the whole document with parsed markup and
// puts the caret at the end.
func (c *Composer) SetContentFromMarkup(markup string) (ComposerUpdate, error) {
	return c.apply("set_content", func(tx *txn) error {
		doc, err := buffer.Parse(markup, c.docOpts...)
		if err != nil {
			return err
		}
		oldLen := tx.doc.Len()
		tx.doc = doc
		tx.record(cursor.NewReplace(0, oldLen, doc.Len()))
		tx.moveTo(cursor.NewCaret(doc.Len()))
		tx.pending = 0
		return nil
	})
}

// ============================================================================
// Formatting
// ============================================================================

// Bold toggles bold. See ToggleFormat.
func (c *Composer) Bold() (ComposerUpdate, error) {
	return c.ToggleFormat(Bold)
}

// Italic toggles italic.
func (c *Composer) Italic() (ComposerUpdate, error) {
	return c.ToggleFormat(Italic)
}

// Underline toggles underline.
func (c *Composer) Underline() (ComposerUpdate, error) {
	return c.ToggleFormat(Underline)
}

// StrikeThrough toggles strike-through.
func (c *Composer) StrikeThrough() (ComposerUpdate, error) {
	return c.ToggleFormat(StrikeThrough)
}

// InlineCode toggles inline code.
func (c *Composer) InlineCode() (ComposerUpdate, error) {
	return c.ToggleFormat(InlineCode)
}

// ToggleFormat toggles f. On a collapsed caret the format is toggled for
// the next typed text only. On a range the format is removed if all of the
// range carries it and applied otherwise; boundary nodes are split so only
// the range changes.
func (c *Composer) ToggleFormat(f Format) (ComposerUpdate, error) {
	if !slices.Contains(buffer.AllFormats, f) {
		return c.fail("toggle_format", fmt.Errorf("%w: %d", ErrUnknownFormat, f))
	}
	return c.apply(f.String(), func(tx *txn) error {
		sel := tx.sel
		if sel.IsCollapsed() {
			tx.pending = tx.pending.Toggle(f)
			return nil
		}
		if tx.doc.FormatsIn(sel.Start, sel.End).Has(f) {
			return tx.doc.RemoveFormat(sel.Start, sel.End, f)
		}
		return tx.doc.ApplyFormat(sel.Start, sel.End, f)
	})
}

// ToggleFormatByName toggles the format with the given name, e.g. "bold"
// or "inline_code".
func (c *Composer) ToggleFormatByName(name string) (ComposerUpdate, error) {
	f, ok := buffer.ParseFormat(name)
	if !ok {
		return c.fail("toggle_format", fmt.Errorf("%w: %q", ErrUnknownFormat, name))
	}
	return c.ToggleFormat(f)
}

// deleteAndCollapse deletes [start, end) and leaves the caret at start.
func (tx *txn) deleteAndCollapse(start, end int) error {
	if err := tx.deleteRange(start, end); err != nil {
		return err
	}
	tx.moveTo(cursor.NewCaret(start))
	tx.pending = 0
	return nil
}

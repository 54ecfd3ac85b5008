package cursor

import "github.com/dshills/composer/internal/engine/buffer"

// Tracker owns the current selection and keeps it inside the document.
// The zero value is a caret at offset 0.
type Tracker struct {
	sel Selection
}

// Selection returns the current selection.
func (t *Tracker) Selection() Selection {
	return t.sel
}

// Validate checks host-supplied offsets and returns the selection Set would
// store. Offsets past length are clamped; negative offsets and start > end
// are rejected.
func Validate(start, end, length int) (Selection, error) {
	if start > end {
		return Selection{}, &buffer.RangeError{Start: start, End: end, Length: length, Err: buffer.ErrRangeInvalid}
	}
	if start < 0 {
		return Selection{}, &buffer.RangeError{Start: start, End: end, Length: length, Err: buffer.ErrOffsetOutOfRange}
	}
	return NewSelection(start, end).Clamp(length), nil
}

// Set replaces the selection. See Validate for the accepted input.
func (t *Tracker) Set(start, end, length int) error {
	sel, err := Validate(start, end, length)
	if err != nil {
		return err
	}
	t.sel = sel
	return nil
}

// Put stores a selection produced by the engine itself. The caller
// guarantees 0 <= Start <= End <= length.
func (t *Tracker) Put(sel Selection) {
	t.sel = sel
}

// Transform shifts the selection so it tracks the same text after edit.
func (t *Tracker) Transform(edit Edit) {
	t.sel = TransformSelection(t.sel, edit)
}

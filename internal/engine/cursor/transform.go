package cursor

import "fmt"

// Edit describes a replacement in code units: Range is removed and NewLen
// code units are inserted at Range.Start.
type Edit struct {
	Range  Range
	NewLen int
}

// NewInsert creates an Edit that inserts n code units at offset.
func NewInsert(offset, n int) Edit {
	return Edit{Range: Range{Start: offset, End: offset}, NewLen: n}
}

// NewDelete creates an Edit that deletes [start, end).
func NewDelete(start, end int) Edit {
	return Edit{Range: Range{Start: start, End: end}}
}

// NewReplace creates an Edit that replaces [start, end) with n code units.
func NewReplace(start, end, n int) Edit {
	return Edit{Range: Range{Start: start, End: end}, NewLen: n}
}

// String returns a human-readable representation of the edit.
func (e Edit) String() string {
	if e.Range.IsEmpty() {
		return fmt.Sprintf("Insert(%d, +%d)", e.Range.Start, e.NewLen)
	}
	if e.NewLen == 0 {
		return fmt.Sprintf("Delete%s", e.Range.String())
	}
	return fmt.Sprintf("Replace%s with +%d", e.Range.String(), e.NewLen)
}

// Delta returns the change in document length.
func (e Edit) Delta() int {
	return e.NewLen - e.Range.Len()
}

// IsNoOp returns true if this edit does nothing.
func (e Edit) IsNoOp() bool {
	return e.Range.IsEmpty() && e.NewLen == 0
}

// AdjustForDeletion moves an offset after [start, end) is deleted. Offsets
// inside the range collapse to its start.
func AdjustForDeletion(offset int, r Range) int {
	// Before deletion: unchanged
	if offset <= r.Start {
		return offset
	}

	// Within deletion: move to start
	if offset < r.End {
		return r.Start
	}

	// After deletion: shift left
	return offset - r.Len()
}

// AdjustForInsertion moves an offset after n code units are inserted at
// at. Offsets at the insertion point move to the end of the inserted text.
func AdjustForInsertion(offset, at, n int) int {
	if offset < at {
		return offset
	}
	return offset + n
}

// TransformOffset updates an offset after an edit.
func TransformOffset(offset int, edit Edit) int {
	offset = AdjustForDeletion(offset, edit.Range)
	if edit.NewLen > 0 {
		offset = AdjustForInsertion(offset, edit.Range.Start, edit.NewLen)
	}
	return offset
}

// TransformSelection updates a selection after an edit.
func TransformSelection(sel Selection, edit Edit) Selection {
	return Selection{
		Start: TransformOffset(sel.Start, edit),
		End:   TransformOffset(sel.End, edit),
	}
}

// TransformRange updates a range after an edit.
func TransformRange(r Range, edit Edit) Range {
	return Range{
		Start: TransformOffset(r.Start, edit),
		End:   TransformOffset(r.End, edit),
	}
}

package cursor

import (
	"fmt"

	"github.com/dshills/composer/internal/engine/buffer"
)

// Range is an alias for buffer.Range for convenience.
type Range = buffer.Range

// Selection represents a range of selected text, Start <= End.
// Selection is an immutable value type.
type Selection struct {
	Start int
	End   int
}

// NewSelection creates a selection from start to end.
func NewSelection(start, end int) Selection {
	return Selection{Start: start, End: end}
}

// NewCaret creates a collapsed selection at offset.
func NewCaret(offset int) Selection {
	return Selection{Start: offset, End: offset}
}

// IsCollapsed returns true if the selection has no extent.
func (s Selection) IsCollapsed() bool {
	return s.Start == s.End
}

// Len returns the length of the selection in code units.
func (s Selection) Len() int {
	return s.End - s.Start
}

// Range returns the selection as a range.
func (s Selection) Range() Range {
	return Range{Start: s.Start, End: s.End}
}

// Clamp returns the selection clamped to [0, length].
func (s Selection) Clamp(length int) Selection {
	return Selection{
		Start: min(max(s.Start, 0), length),
		End:   min(max(s.End, 0), length),
	}
}

// String returns a string representation of the selection.
func (s Selection) String() string {
	if s.IsCollapsed() {
		return fmt.Sprintf("Caret(%d)", s.Start)
	}
	return fmt.Sprintf("Selection(%d→%d)", s.Start, s.End)
}

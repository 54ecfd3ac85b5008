package buffer

import (
	"errors"
	"fmt"
)

// Errors returned by buffer operations.
var (
	// ErrOffsetOutOfRange indicates an offset is outside [0, Len()].
	ErrOffsetOutOfRange = errors.New("offset out of range")

	// ErrRangeInvalid indicates an invalid range (e.g., end < start).
	ErrRangeInvalid = errors.New("invalid range")

	// ErrStructural indicates a broken tree invariant.
	ErrStructural = errors.New("structural invariant violated")
)

// RangeError reports an offset or range rejected by validation.
// The operation that produced it had no effect.
type RangeError struct {
	Start  int
	End    int
	Length int
	Err    error // ErrOffsetOutOfRange or ErrRangeInvalid
}

func (e *RangeError) Error() string {
	if errors.Is(e.Err, ErrRangeInvalid) {
		return fmt.Sprintf("range [%d:%d): start after end", e.Start, e.End)
	}
	return fmt.Sprintf("range [%d:%d) outside [0:%d]", e.Start, e.End, e.Length)
}

func (e *RangeError) Unwrap() error {
	return e.Err
}

// StructuralError reports a tree that violates the document invariants.
// It should be unreachable; seeing one means a mutation has a bug.
type StructuralError struct {
	Reason string
}

func (e *StructuralError) Error() string {
	return "structural error: " + e.Reason
}

func (e *StructuralError) Unwrap() error {
	return ErrStructural
}

// CheckRange validates [start, end) against a document of the given length.
func CheckRange(start, end, length int) error {
	if start > end {
		return &RangeError{Start: start, End: end, Length: length, Err: ErrRangeInvalid}
	}
	if start < 0 || end > length {
		return &RangeError{Start: start, End: end, Length: length, Err: ErrOffsetOutOfRange}
	}
	return nil
}

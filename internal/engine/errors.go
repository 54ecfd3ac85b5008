package engine

import (
	"errors"
	"fmt"

	"github.com/dshills/composer/internal/engine/action"
	"github.com/dshills/composer/internal/engine/buffer"
)

// Errors returned by composer operations.
var (
	// ErrOffsetOutOfRange indicates an offset outside [0, Len()].
	ErrOffsetOutOfRange = buffer.ErrOffsetOutOfRange

	// ErrRangeInvalid indicates a range whose start is after its end.
	ErrRangeInvalid = buffer.ErrRangeInvalid

	// ErrStructural indicates a mutation that would break the document tree.
	ErrStructural = buffer.ErrStructural

	// ErrResponseMismatch indicates a response of the wrong kind for its action.
	ErrResponseMismatch = action.ErrResponseMismatch

	// ErrUnknownFormat indicates a format name that is not recognized.
	ErrUnknownFormat = errors.New("unknown format")
)

// OperationError reports a failed composer operation.
// The composer state is unchanged when one is returned.
type OperationError struct {
	Op  string
	Err error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("composer: %s: %v", e.Op, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// IsRangeError reports whether err was caused by invalid offsets.
func IsRangeError(err error) bool {
	var rerr *buffer.RangeError
	return errors.As(err, &rerr)
}

// IsStructuralError reports whether err was caused by a broken tree.
func IsStructuralError(err error) bool {
	return errors.Is(err, ErrStructural)
}

// ErrEmptyURL indicates a link or mention response without a target.
var ErrEmptyURL = errors.New("link target is empty")

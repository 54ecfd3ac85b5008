// Package cursor tracks the composer's selection.
//
// A Selection is an ordered pair of UTF-16 code unit offsets into the
// document's plain-text projection, with Start <= End. It is collapsed (a
// caret) when Start == End.
//
// The Tracker owns the current selection. Set validates host input:
// offsets past the end are clamped to the document length, while a start
// after the end is rejected instead of silently swapped.
//
// Edits shift tracked offsets according to one law:
//
//   - Inserting L code units at k shifts every offset >= k by +L.
//   - Deleting [a, b) collapses offsets inside the range to a and shifts
//     offsets >= b by -(b-a).
//   - A replacement is a deletion followed by an insertion at a.
//
// Basic usage:
//
//	var tr cursor.Tracker
//	tr.Set(0, 5, doc.Len())
//
//	// After deleting [1, 3)
//	tr.Transform(cursor.NewDelete(1, 3))
//	tr.Selection() // [0:3)
//
// Selection is an immutable value type. Tracker is not thread-safe.
package cursor

// Package update turns composer state into the updates a host renders.
//
// After every operation the engine hands the serialized document, the
// selection and the active formats to an [Emitter]. The emitter compares
// them with what it emitted last:
//
//   - If the markup is unchanged the text update is Keep. The selection is
//     still reported so hosts can move their caret without re-rendering.
//   - Otherwise the text update is ReplaceAll with the full markup.
//
// The menu state works the same way: Keep when the active formats match
// the last emitted ones, Update otherwise.
//
// Markup crosses the host boundary as UTF-16 code units ([Markup]). Hosts
// that exchange raw bytes can use [Markup.Bytes] and [DecodeMarkup], which
// encode UTF-16LE without a byte order mark.
package update

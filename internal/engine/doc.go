// Package engine provides the rich-text composer behind a WYSIWYG editor.
//
// The engine package serves as the main facade. A [Composer] owns a
// formatted document, the selection and the queue of pending actions, and
// exposes the operations a host text widget sends: select, replace_text,
// backspace, delete, enter, format toggles and action responses. Every
// operation returns a [ComposerUpdate] telling the host whether it must
// re-render.
//
// # Architecture
//
// The engine is built on several sub-packages:
//
//   - buffer: tree of text runs and containers, markup parsing and serialization
//   - cursor: selection tracking and the offset transform law
//   - action: pending host requests (links, mentions) and their continuations
//   - update: Keep/ReplaceAll decisions and UTF-16 markup
//
// # Offsets
//
// All offsets are UTF-16 code units into the plain-text projection of the
// document. Adjacent blocks are separated by one code unit, so pressing
// Enter in "ab|cd" leaves the caret at 3.
//
// # Basic Usage
//
//	c := engine.New()
//
//	u, _ := c.ReplaceText("hello") // ReplaceAll "hello", caret 5
//	u, _ = c.Select(0, 5)          // Keep
//	u, _ = c.Bold()                // ReplaceAll "<b>hello</b>", 0..5
//
// # Actions
//
// Link and mention edits need input from the host. The update carries a
// [ComposerAction]; the host answers later with ActionResponse:
//
//	u, _ := c.Link()
//	id := u.Actions[0].ID
//	// ... host asks the user for a URL ...
//	c.ActionResponse(id, engine.Response{Kind: action.ResponseLink, URL: url})
//
// Responses for unknown or cancelled actions return a Keep update.
//
// # Errors
//
// Invalid offsets return a [*buffer.RangeError] wrapped in an
// [*OperationError] and leave the composer untouched. Every mutation runs
// on a copy of the document and is validated before it is committed, so a
// broken tree is reported as a [*buffer.StructuralError] instead of being
// kept.
//
// # Thread Safety
//
// A Composer is not thread-safe. The host must serialize calls, typically
// from its UI event loop. Independent composers share no state.
package engine

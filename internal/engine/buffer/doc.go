// Package buffer provides the rich-text document model behind the composer.
//
// A Document is a tree of Nodes. Text runs hold Unicode text; containers
// hold a tag, attributes and ordered children. Inline formatting is
// structural: making a range bold wraps it in a bold container rather than
// tagging characters with attributes, so nested formats compose through the
// tree and serialization is a pre-order walk.
//
// The root is either in inline mode (its children are inline nodes) or in
// block mode (its children are paragraph-like block containers, each holding
// inline content only).
//
// # Addressing
//
// All offsets are UTF-16 code units into the plain-text projection of the
// document: every text run in tree order, with a single "\n" code unit
// between adjacent blocks. Platform text widgets index text the same way.
//
//	doc, _ := buffer.Parse("<p>ab</p><p>cd</p>")
//	doc.Len()       // 5
//	doc.PlainText() // "ab\ncd"
//
// # Mutations
//
// Mutations validate their offsets, operate on the tree and finish with a
// normalization pass that prunes empty text runs and inline containers and
// merges equal neighbours:
//
//	doc := buffer.New()
//	doc.InsertText(0, "hello", 0)
//	doc.ApplyFormat(0, 5, buffer.Bold)
//	doc.Markup() // "<b>hello</b>"
//
// A Document is not safe for concurrent use. Callers that need an atomic
// apply-or-reject step mutate a Clone and swap it in after Validate succeeds.
package buffer

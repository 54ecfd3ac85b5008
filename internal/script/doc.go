// Package script runs editing scenarios written in Lua against the
// composer engine.
//
// Scripts run in a sandboxed gopher-lua state: only the base, table,
// string and math libraries are open, file loading is removed, and
// require resolves nothing but the composer module. Execution is bounded
// by a context deadline.
//
// The composer module is available both as a global and through
// require("composer"):
//
//	local c = composer.new("<b>hi</b>", 2, 2)
//	local u = c:replace_text("!")
//	print(u.text.markup)           -- <b>hi!</b>
//	composer.expect(c, "<b>hi!</b>", 3, 3)
//
// Operations return an update table and, when the engine rejects the
// call, an error string as a second value.
package script

// Package action tracks composer operations that wait on host input.
//
// Some edits cannot finish without data only the host has: the target of a
// link, or the user picked for a mention. The engine raises a [Request],
// stores a continuation in a [Queue] under a fresh identifier and returns
// to the host immediately. The host later answers with a [Response] and
// the engine resumes the continuation. Nothing blocks in between.
//
// # Identifiers
//
// Identifiers come from an [IDGenerator]. The default generates UUIDv4
// strings; [NewCounterGenerator] produces "action-1", "action-2", ... for
// deterministic hosts and tests. A queue never hands out the same
// identifier twice.
//
// # Scopes
//
// Each pending action is scoped to a range of the document. Edits made
// while the action is pending move the scope with the offset law used for
// selections. An edit that deletes the text a scope starts on cancels the
// action instead; its continuation is dropped.
//
// # Thread Safety
//
// Queue is not thread-safe. It is owned by a single composer, which the
// host drives from one goroutine.
package action

// Package bridge lets a host process drive composer sessions over a
// line-oriented JSON protocol.
//
// Each request is one JSON object:
//
//	{"id": 7, "session": "<uuid>", "op": "replace_text", "text": "hi"}
//
// and is answered by exactly one JSON object carrying the same id:
//
//	{"id": 7, "ok": true, "session": "<uuid>", "update": {...}}
//
// Failed operations answer with "ok": false and an "error" object whose
// "kind" is one of request, session, range, structural, mismatch, format
// or invalid. Composer errors still carry the update emitted for the
// unchanged state.
//
// Requests arrive either as lines on a stream (Serve) or as text
// messages on a websocket (Handler). Sessions are independent; calls on
// one session are serialized.
package bridge

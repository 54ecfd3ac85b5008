package action

import (
	"sort"

	"github.com/dshills/composer/internal/engine/buffer"
	"github.com/dshills/composer/internal/engine/cursor"
)

// Entry is a pending action with its scope and continuation.
type Entry[C any] struct {
	Action ComposerAction
	Scope  buffer.Range
	Cont   C

	seq uint64
}

// Queue stores pending actions keyed by identifier.
type Queue[C any] struct {
	ids     IDGenerator
	entries map[string]*Entry[C]
	issued  map[string]struct{}
	seq     uint64
}

// NewQueue creates an empty queue. A nil generator uses UUIDs.
func NewQueue[C any](ids IDGenerator) *Queue[C] {
	if ids == nil {
		ids = UUIDGenerator{}
	}
	return &Queue[C]{
		ids:     ids,
		entries: make(map[string]*Entry[C]),
		issued:  make(map[string]struct{}),
	}
}

// Enqueue stores a continuation for req scoped to scope and returns the
// action to report to the host.
func (q *Queue[C]) Enqueue(req Request, scope buffer.Range, cont C) ComposerAction {
	id := q.ids.NewID()
	for {
		if _, used := q.issued[id]; !used {
			break
		}
		id = q.ids.NewID()
	}
	q.issued[id] = struct{}{}
	q.seq++

	a := ComposerAction{ID: id, Request: req}
	q.entries[id] = &Entry[C]{Action: a, Scope: scope, Cont: cont, seq: q.seq}
	return a
}

// Take removes and returns the pending entry for id.
// Unknown or already answered identifiers return false.
func (q *Queue[C]) Take(id string) (Entry[C], bool) {
	e, ok := q.entries[id]
	if !ok {
		var zero Entry[C]
		return zero, false
	}
	delete(q.entries, id)
	return *e, true
}

// Restore puts back an entry previously returned by Take, keeping its
// identifier and position in the queue.
func (q *Queue[C]) Restore(e Entry[C]) {
	if _, ok := q.issued[e.Action.ID]; !ok {
		return
	}
	q.entries[e.Action.ID] = &e
}

// SetText replaces the request text of a pending action.
func (q *Queue[C]) SetText(id, text string) bool {
	e, ok := q.entries[id]
	if ok {
		e.Action.Request.Text = text
	}
	return ok
}

// Cancel drops the pending action for id.
func (q *Queue[C]) Cancel(id string) bool {
	if _, ok := q.entries[id]; !ok {
		return false
	}
	delete(q.entries, id)
	return true
}

// Transform moves every scope through edit and cancels actions whose
// scope start was deleted. It returns the cancelled identifiers in queue
// order.
func (q *Queue[C]) Transform(edit cursor.Edit) []string {
	var cancelled []string
	for _, e := range q.ordered() {
		if invalidates(edit.Range, e.Scope) {
			delete(q.entries, e.Action.ID)
			cancelled = append(cancelled, e.Action.ID)
			continue
		}
		e.Scope = cursor.TransformRange(e.Scope, edit)
	}
	return cancelled
}

// invalidates reports whether deleting del destroys scope. A non-empty
// scope dies with its first code unit; an empty scope dies when the
// deletion spans it.
func invalidates(del, scope buffer.Range) bool {
	if del.IsEmpty() {
		return false
	}
	if scope.IsEmpty() {
		return del.Start < scope.Start && scope.Start < del.End
	}
	return del.Contains(scope.Start)
}

// Len returns the number of pending actions.
func (q *Queue[C]) Len() int {
	return len(q.entries)
}

// All returns the pending actions in the order they were raised.
func (q *Queue[C]) All() []ComposerAction {
	entries := q.ordered()
	out := make([]ComposerAction, len(entries))
	for i, e := range entries {
		out[i] = e.Action
	}
	return out
}

// Entries returns copies of the pending entries in the order they were
// raised.
func (q *Queue[C]) Entries() []Entry[C] {
	entries := q.ordered()
	out := make([]Entry[C], len(entries))
	for i, e := range entries {
		out[i] = *e
	}
	return out
}

func (q *Queue[C]) ordered() []*Entry[C] {
	out := make([]*Entry[C], 0, len(q.entries))
	for _, e := range q.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

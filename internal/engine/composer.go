package engine

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/dshills/composer/internal/engine/action"
	"github.com/dshills/composer/internal/engine/buffer"
	"github.com/dshills/composer/internal/engine/cursor"
	"github.com/dshills/composer/internal/engine/update"
)

// Re-export commonly used types for convenience.
type (
	// Range is a code unit range in the plain-text projection.
	Range = buffer.Range

	// Selection is the current selection.
	Selection = cursor.Selection

	// Format is an inline format.
	Format = buffer.Format

	// FormatSet is a set of inline formats.
	FormatSet = buffer.FormatSet

	// ComposerUpdate is the result of an operation.
	ComposerUpdate = update.ComposerUpdate

	// ComposerState is the dump_state snapshot.
	ComposerState = update.State

	// ComposerAction is a pending host request.
	ComposerAction = action.ComposerAction

	// Request is what an action asks the host for.
	Request = action.Request

	// Response is the host's answer to an action.
	Response = action.Response
)

// Re-export constants.
const (
	Bold          = buffer.Bold
	Italic        = buffer.Italic
	Underline     = buffer.Underline
	StrikeThrough = buffer.StrikeThrough
	InlineCode    = buffer.InlineCode
)

// continuation finishes an action once the host has answered it. scope is
// the action's range moved through every edit made since it was raised.
type continuation func(tx *txn, scope buffer.Range, resp action.Response) error

// Composer is the edit operation engine. It exclusively owns the document,
// the selection and the action queue; they change only through its
// operations.
type Composer struct {
	doc     *buffer.Document
	sel     cursor.Tracker
	pending buffer.FormatSet // toggled on a collapsed caret, applied to the next typed text
	queue   *action.Queue[continuation]
	emitter *update.Emitter

	// Configuration
	logger   *zap.Logger
	docOpts  []buffer.Option
	triggers []string
	ids      action.IDGenerator
}

func newComposer(opts []Option) *Composer {
	c := &Composer{
		logger:   zap.NewNop(),
		triggers: []string{DefaultMentionTrigger},
		ids:      action.UUIDGenerator{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.queue = action.NewQueue[continuation](c.ids)
	return c
}

// New creates a composer with an empty document and the caret at 0.
func New(opts ...Option) *Composer {
	c := newComposer(opts)
	c.doc = buffer.New(c.docOpts...)
	c.emitter = update.NewEmitter("")
	return c
}

// NewFromMarkup creates a composer from existing markup with the given
// selection. The host is assumed to already display markup as given.
func NewFromMarkup(markup string, start, end int, opts ...Option) (*Composer, error) {
	c := newComposer(opts)
	doc, err := buffer.Parse(markup, c.docOpts...)
	if err != nil {
		return nil, &OperationError{Op: "new", Err: err}
	}
	c.doc = doc
	if err := c.sel.Set(start, end, doc.Len()); err != nil {
		return nil, &OperationError{Op: "new", Err: err}
	}
	c.sel.Put(c.snapSelection(doc, c.sel.Selection()))
	c.emitter = update.NewEmitter(markup)
	return c, nil
}

// ============================================================================
// Read Operations
// ============================================================================

// Selection returns the current selection.
func (c *Composer) Selection() Selection {
	return c.sel.Selection()
}

// Len returns the document length in UTF-16 code units.
func (c *Composer) Len() int {
	return c.doc.Len()
}

// PlainText returns the plain-text projection of the document.
func (c *Composer) PlainText() string {
	return c.doc.PlainText()
}

// Markup returns the serialized document.
func (c *Composer) Markup() string {
	return c.doc.Markup()
}

// PendingActions returns the actions waiting for a response, oldest first.
func (c *Composer) PendingActions() []ComposerAction {
	return c.queue.All()
}

// PendingFormats returns formats toggled on the caret but not yet typed.
func (c *Composer) PendingFormats() FormatSet {
	return c.pending
}

// ActiveFormats returns the formats the toolbar should show as active.
func (c *Composer) ActiveFormats() FormatSet {
	return c.active().Formats
}

// DumpState returns the markup and selection. It never changes state.
func (c *Composer) DumpState() ComposerState {
	sel := c.sel.Selection()
	return ComposerState{
		Markup: update.NewMarkup(c.doc.Markup()),
		Start:  sel.Start,
		End:    sel.End,
	}
}

func (c *Composer) active() update.Active {
	sel := c.sel.Selection()
	if sel.IsCollapsed() {
		return update.Active{
			Formats: c.doc.FormatsAt(sel.Start) ^ c.pending,
			Link:    c.doc.LinkAt(sel.Start),
		}
	}
	return update.Active{
		Formats: c.doc.FormatsIn(sel.Start, sel.End),
		Link:    c.doc.LinkIn(sel.Start, sel.End),
	}
}

// snapSelection moves offsets inside a surrogate pair to its start.
func (c *Composer) snapSelection(doc *buffer.Document, sel Selection) Selection {
	return cursor.NewSelection(doc.Snap(sel.Start), doc.Snap(sel.End))
}

// ============================================================================
// Transactions
// ============================================================================

// emit reports the current state, adding actions raised or changed by the
// operation.
func (c *Composer) emit(actions []ComposerAction) ComposerUpdate {
	return c.emitter.Emit(c.doc.Markup(), c.sel.Selection(), c.active(), actions)
}

// fail logs a rejected operation and wraps err.
func (c *Composer) fail(op string, err error) (ComposerUpdate, error) {
	c.logger.Debug("operation rejected", zap.String("op", op), zap.Error(err))
	return c.emit(nil), &OperationError{Op: op, Err: err}
}

// apply runs fn against a copy of the composer state and commits it only
// if fn succeeds and the resulting tree is valid.
func (c *Composer) apply(op string, fn func(tx *txn) error) (u ComposerUpdate, err error) {
	tx := &txn{
		doc:     c.doc.Clone(),
		sel:     c.sel.Selection(),
		pending: c.pending,
	}

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("operation panicked", zap.String("op", op), zap.Any("panic", r))
			u, err = c.fail(op, &buffer.StructuralError{Reason: fmt.Sprint(r)})
		}
	}()

	if err := fn(tx); err != nil {
		return c.fail(op, err)
	}
	if err := tx.doc.Validate(); err != nil {
		c.logger.Error("operation broke document", zap.String("op", op), zap.Error(err))
		return c.fail(op, err)
	}
	return c.commit(op, tx), nil
}

// commit installs the transaction's state and moves pending actions
// through its edits.
func (c *Composer) commit(op string, tx *txn) ComposerUpdate {
	c.doc = tx.doc
	if tx.moved {
		c.sel.Put(tx.sel)
	}
	c.pending = tx.pending

	var cancelled []string
	for _, e := range tx.edits {
		if !tx.moved {
			c.sel.Transform(e)
		}
		cancelled = append(cancelled, c.queue.Transform(e)...)
	}

	var actions []ComposerAction
	for _, r := range tx.raised {
		actions = append(actions, c.queue.Enqueue(r.req, r.scope, r.cont))
	}
	refreshed, dropped := c.refreshMentions()
	actions = append(actions, refreshed...)
	cancelled = append(cancelled, dropped...)

	sel := c.sel.Selection()
	c.logger.Debug("operation applied",
		zap.String("op", op),
		zap.Int("start", sel.Start),
		zap.Int("end", sel.End),
		zap.Int("len", c.doc.Len()),
		zap.Int("edits", len(tx.edits)),
		zap.Strings("cancelled", cancelled),
	)
	return c.emit(actions)
}

// keep returns the update for an operation that changed nothing.
func (c *Composer) keep() ComposerUpdate {
	return c.emit(nil)
}

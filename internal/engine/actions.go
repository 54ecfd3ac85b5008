package engine

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/dshills/composer/internal/engine/action"
	"github.com/dshills/composer/internal/engine/buffer"
	"github.com/dshills/composer/internal/engine/cursor"
)

// Link asks the host for a link target for the current selection. The
// update carries a RequestLink action; the link is created when the host
// answers with a ResponseLink.
func (c *Composer) Link() (ComposerUpdate, error) {
	return c.apply("link", func(tx *txn) error {
		sel := tx.sel
		text, err := tx.doc.TextIn(sel.Start, sel.End)
		if err != nil {
			return err
		}
		tx.raise(action.Request{Kind: action.RequestLink, Text: text}, sel.Range(), completeLink)
		return nil
	})
}

// SetLink links the current selection to url. On a collapsed caret the
// url itself is inserted as link text.
func (c *Composer) SetLink(url string) (ComposerUpdate, error) {
	return c.apply("set_link", func(tx *txn) error {
		return tx.setLink(tx.sel.Range(), url, "")
	})
}

// ActionResponse feeds the host's answer to the pending action id.
// Unknown, answered and cancelled ids are ignored and return a Keep
// update. A response of the wrong kind is rejected with
// ErrResponseMismatch and the action stays pending.
func (c *Composer) ActionResponse(id string, resp Response) (ComposerUpdate, error) {
	e, ok := c.queue.Take(id)
	if !ok {
		c.logger.Debug("ignoring response for unknown action", zap.String("id", id))
		return c.keep(), nil
	}
	if !resp.Answers(e.Action.Request) {
		c.queue.Restore(e)
		return c.fail("action_response", fmt.Errorf("%w: %s response for %s request",
			ErrResponseMismatch, resp.Kind, e.Action.Request.Kind))
	}

	u, err := c.apply("action_response", func(tx *txn) error {
		scope, err := tx.span(e.Scope.Start, e.Scope.End)
		if err != nil {
			return err
		}
		return e.Cont(tx, scope, resp)
	})
	if err != nil {
		c.queue.Restore(e)
		return u, err
	}
	c.logger.Debug("action completed",
		zap.String("id", id),
		zap.Stringer("request", e.Action.Request.Kind),
		zap.Stringer("response", resp.Kind),
	)
	return u, nil
}

// completeLink links the scope, or inserts a link at an empty scope.
func completeLink(tx *txn, scope buffer.Range, resp action.Response) error {
	if resp.Kind == action.ResponseDismiss {
		return nil
	}
	return tx.setLink(scope, resp.URL, resp.Text)
}

// completeMention replaces the typed mention with a link followed by a
// space and puts the caret after the space.
func completeMention(tx *txn, scope buffer.Range, resp action.Response) error {
	if resp.Kind == action.ResponseDismiss {
		return nil
	}
	if resp.URL == "" {
		return ErrEmptyURL
	}
	text := resp.Text
	if text == "" {
		var err error
		if text, err = tx.doc.TextIn(scope.Start, scope.End); err != nil {
			return err
		}
	}
	formats := tx.doc.FormatsIn(scope.Start, scope.End)
	if err := tx.deleteRange(scope.Start, scope.End); err != nil {
		return err
	}
	end, err := tx.insertText(scope.Start, text, formats)
	if err != nil {
		return err
	}
	if err := tx.doc.WrapLink(scope.Start, end, resp.URL); err != nil {
		return err
	}
	after, err := tx.insertText(end, " ", formats)
	if err != nil {
		return err
	}
	tx.moveTo(cursor.NewCaret(after))
	tx.pending = 0
	return nil
}

// setLink turns scope into a link to url. A non-empty text replaces the
// scoped text first; an empty scope inserts text, or url when text is empty.
func (tx *txn) setLink(scope buffer.Range, url, text string) error {
	if url == "" {
		return ErrEmptyURL
	}
	text = buffer.CleanText(text)
	if scope.IsEmpty() && text == "" {
		text = url
	}
	if text != "" {
		current, err := tx.doc.TextIn(scope.Start, scope.End)
		if err != nil {
			return err
		}
		if current != text {
			formats := tx.doc.FormatsIn(scope.Start, scope.End)
			if err := tx.replace(scope.Start, scope.End, text, formats); err != nil {
				return err
			}
			scope.End = scope.Start + buffer.CodeUnits(text)
		}
	}
	return tx.doc.WrapLink(scope.Start, scope.End, url)
}

// detectMention raises a mention action when text is a trigger typed at a
// word start outside a link.
func (c *Composer) detectMention(tx *txn, at int, text string) {
	if !slices.Contains(c.triggers, text) {
		return
	}
	if r, ok := tx.doc.CharBefore(at); ok && !unicode.IsSpace(r) {
		return
	}
	end := at + buffer.CodeUnits(text)
	if tx.doc.LinkIn(at, end) {
		return
	}
	tx.raise(action.Request{Kind: action.RequestMention, Trigger: text}, buffer.NewRange(at, end), completeMention)
}

// refreshMentions updates the query of every pending mention from the
// document. Mentions whose text no longer starts with the trigger, or
// that contain whitespace, are cancelled. It returns the actions whose
// query changed and the cancelled ids.
func (c *Composer) refreshMentions() (changed []ComposerAction, cancelled []string) {
	for _, e := range c.queue.Entries() {
		req := e.Action.Request
		if req.Kind != action.RequestMention {
			continue
		}
		query, ok := c.mentionQuery(e.Scope, req.Trigger)
		if !ok {
			c.queue.Cancel(e.Action.ID)
			cancelled = append(cancelled, e.Action.ID)
			continue
		}
		if query != req.Text {
			c.queue.SetText(e.Action.ID, query)
			a := e.Action
			a.Request.Text = query
			changed = append(changed, a)
		}
	}
	return changed, cancelled
}

func (c *Composer) mentionQuery(scope buffer.Range, trigger string) (string, bool) {
	text, err := c.doc.TextIn(scope.Start, scope.End)
	if err != nil {
		return "", false
	}
	query, ok := strings.CutPrefix(text, trigger)
	if !ok || strings.IndexFunc(query, unicode.IsSpace) >= 0 {
		return "", false
	}
	return query, true
}

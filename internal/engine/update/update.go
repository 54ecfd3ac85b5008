package update

import (
	"github.com/dshills/composer/internal/engine/action"
	"github.com/dshills/composer/internal/engine/buffer"
	"github.com/dshills/composer/internal/engine/cursor"
)

// TextKind says whether the host must re-render the document.
type TextKind uint8

const (
	// Keep means the markup is unchanged since the last update.
	Keep TextKind = iota
	// ReplaceAll means the host must replace its content with Markup.
	ReplaceAll
)

// String returns the wire name of the kind.
func (k TextKind) String() string {
	if k == ReplaceAll {
		return "replace_all"
	}
	return "keep"
}

// TextUpdate describes the document change of one operation.
// Start and End always carry the current selection.
type TextUpdate struct {
	Kind   TextKind
	Markup Markup // set only for ReplaceAll
	Start  int
	End    int
}

// MenuKind says whether the active formats changed.
type MenuKind uint8

const (
	// MenuKeep means the toolbar state is unchanged.
	MenuKeep MenuKind = iota
	// MenuUpdate means Formats and Link carry new state.
	MenuUpdate
)

// String returns the wire name of the kind.
func (k MenuKind) String() string {
	if k == MenuUpdate {
		return "update"
	}
	return "keep"
}

// Active is the formatting state at the selection.
type Active struct {
	Formats buffer.FormatSet
	Link    bool
}

// MenuState drives toggle-button highlighting in the host.
type MenuState struct {
	Kind MenuKind
	Active
}

// ComposerUpdate is the result of one composer operation.
type ComposerUpdate struct {
	Text    TextUpdate
	Menu    MenuState
	Actions []action.ComposerAction
}

// IsKeep reports whether the update asks for no re-render and carries no
// menu change or actions.
func (u ComposerUpdate) IsKeep() bool {
	return u.Text.Kind == Keep && u.Menu.Kind == MenuKeep && len(u.Actions) == 0
}

// State is a snapshot of the composer for dump_state.
type State struct {
	Markup Markup
	Start  int
	End    int
}

// Emitter computes updates relative to what it last emitted.
// The zero value treats the empty document as already rendered.
type Emitter struct {
	lastMarkup string
	lastActive Active
}

// NewEmitter creates an emitter whose host already shows markup.
func NewEmitter(markup string) *Emitter {
	return &Emitter{lastMarkup: markup}
}

// Emit builds the update for the given state and records it as emitted.
func (e *Emitter) Emit(markup string, sel cursor.Selection, active Active, actions []action.ComposerAction) ComposerUpdate {
	u := ComposerUpdate{
		Text: TextUpdate{Kind: Keep, Start: sel.Start, End: sel.End},
		Menu: MenuState{Kind: MenuKeep},
	}
	if markup != e.lastMarkup {
		u.Text.Kind = ReplaceAll
		u.Text.Markup = NewMarkup(markup)
		e.lastMarkup = markup
	}
	if active != e.lastActive {
		u.Menu = MenuState{Kind: MenuUpdate, Active: active}
		e.lastActive = active
	}
	if len(actions) > 0 {
		u.Actions = append([]action.ComposerAction(nil), actions...)
	}
	return u
}

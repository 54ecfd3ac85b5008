package engine

import (
	"strings"
	"testing"

	"github.com/dshills/composer/internal/engine/action"
	"github.com/dshills/composer/internal/engine/buffer"
	"github.com/dshills/composer/internal/engine/update"
)

const (
	markStart = '\ue000'
	markEnd   = '\ue001'
	markCaret = '\ue002'
)

var (
	toSentinels   = strings.NewReplacer("{", string(markStart), "}|", string(markEnd), "|", string(markCaret))
	dropSentinels = strings.NewReplacer(string(markStart), "", string(markEnd), "", string(markCaret), "")
)

// cm builds a composer from markup with the selection marked inline: "|" is
// a caret, "{" and "}|" delimit a selection.
func cm(t *testing.T, marked string, opts ...Option) *Composer {
	t.Helper()

	withMarks := toSentinels.Replace(marked)
	doc, err := buffer.Parse(withMarks)
	if err != nil {
		t.Fatalf("parse %q: %v", marked, err)
	}

	start, end := -1, -1
	pos := 0
	for _, r := range doc.PlainText() {
		switch r {
		case markStart:
			start = pos
		case markEnd:
			end = pos
		case markCaret:
			start, end = pos, pos
		default:
			pos += buffer.CodeUnits(string(r))
		}
	}
	if start < 0 || end < 0 {
		t.Fatalf("no selection marked in %q", marked)
	}

	opts = append([]Option{WithIDGenerator(action.NewCounterGenerator(""))}, opts...)
	c, err := NewFromMarkup(dropSentinels.Replace(withMarks), start, end, opts...)
	if err != nil {
		t.Fatalf("NewFromMarkup(%q): %v", marked, err)
	}
	return c
}

// newTest creates an empty composer with deterministic action ids.
func newTest(opts ...Option) *Composer {
	return New(append([]Option{WithIDGenerator(action.NewCounterGenerator(""))}, opts...)...)
}

func assertState(t *testing.T, c *Composer, markup string, start, end int) {
	t.Helper()
	if got := c.Markup(); got != markup {
		t.Errorf("expected markup %q, got %q", markup, got)
	}
	if got := c.Selection(); got.Start != start || got.End != end {
		t.Errorf("expected selection %d..%d, got %d..%d", start, end, got.Start, got.End)
	}
}

func assertReplaceAll(t *testing.T, u ComposerUpdate, markup string, start, end int) {
	t.Helper()
	if u.Text.Kind != update.ReplaceAll {
		t.Fatalf("expected replace_all, got %v", u.Text.Kind)
	}
	if got := u.Text.Markup.String(); got != markup {
		t.Errorf("expected markup %q, got %q", markup, got)
	}
	if u.Text.Start != start || u.Text.End != end {
		t.Errorf("expected selection %d..%d, got %d..%d", start, end, u.Text.Start, u.Text.End)
	}
}

func assertKeep(t *testing.T, u ComposerUpdate) {
	t.Helper()
	if u.Text.Kind != update.Keep {
		t.Errorf("expected keep, got %v with %q", u.Text.Kind, u.Text.Markup.String())
	}
}

// must returns a function that fails the test on error and passes the
// update through.
func must(t *testing.T) func(ComposerUpdate, error) ComposerUpdate {
	return func(u ComposerUpdate, err error) ComposerUpdate {
		t.Helper()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return u
	}
}

package update

import (
	"bytes"
	"testing"

	"github.com/dshills/composer/internal/engine/action"
	"github.com/dshills/composer/internal/engine/buffer"
	"github.com/dshills/composer/internal/engine/cursor"
)

func TestMarkupCodeUnits(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"<b>hi</b>", 9},
		{"héllo", 5},
		{"😀", 2},
	}
	for _, tt := range tests {
		m := NewMarkup(tt.in)
		if m.Len() != tt.want {
			t.Errorf("%q: expected %d code units, got %d", tt.in, tt.want, m.Len())
		}
		if m.String() != tt.in {
			t.Errorf("expected %q, got %q", tt.in, m.String())
		}
	}
}

func TestMarkupBytes(t *testing.T) {
	m := NewMarkup("a😀")
	b, err := m.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	want := []byte{'a', 0, 0x3d, 0xd8, 0x00, 0xde}
	if !bytes.Equal(b, want) {
		t.Errorf("expected % x, got % x", want, b)
	}

	back, err := DecodeMarkup(b)
	if err != nil {
		t.Fatalf("DecodeMarkup: %v", err)
	}
	if back.String() != "a😀" {
		t.Errorf("expected %q, got %q", "a😀", back.String())
	}
}

func TestEmitterTextUpdate(t *testing.T) {
	e := NewEmitter("")

	u := e.Emit("", cursor.NewCaret(0), Active{}, nil)
	if u.Text.Kind != Keep {
		t.Errorf("unchanged markup: expected keep, got %v", u.Text.Kind)
	}
	if !u.IsKeep() {
		t.Error("expected full keep")
	}

	u = e.Emit("hello", cursor.NewCaret(5), Active{}, nil)
	if u.Text.Kind != ReplaceAll {
		t.Fatalf("expected replace_all, got %v", u.Text.Kind)
	}
	if u.Text.Markup.String() != "hello" || u.Text.Start != 5 || u.Text.End != 5 {
		t.Errorf("unexpected update %+v", u.Text)
	}

	u = e.Emit("hello", cursor.NewSelection(0, 5), Active{}, nil)
	if u.Text.Kind != Keep {
		t.Errorf("selection-only change: expected keep, got %v", u.Text.Kind)
	}
	if u.Text.Start != 0 || u.Text.End != 5 {
		t.Errorf("expected selection 0..5 in keep update, got %d..%d", u.Text.Start, u.Text.End)
	}
	if u.Text.Markup != nil {
		t.Error("keep update should not carry markup")
	}
}

func TestEmitterMenuState(t *testing.T) {
	var e Emitter
	bold := Active{Formats: buffer.NewFormatSet(buffer.Bold)}

	u := e.Emit("", cursor.NewCaret(0), bold, nil)
	if u.Menu.Kind != MenuUpdate || !u.Menu.Formats.Has(buffer.Bold) {
		t.Fatalf("expected bold menu update, got %+v", u.Menu)
	}

	u = e.Emit("", cursor.NewCaret(0), bold, nil)
	if u.Menu.Kind != MenuKeep {
		t.Errorf("expected menu keep, got %v", u.Menu.Kind)
	}

	u = e.Emit("", cursor.NewCaret(0), Active{Link: true}, nil)
	if u.Menu.Kind != MenuUpdate || !u.Menu.Link || !u.Menu.Formats.IsEmpty() {
		t.Errorf("expected link-only update, got %+v", u.Menu)
	}
}

func TestEmitterActions(t *testing.T) {
	var e Emitter
	actions := []action.ComposerAction{{ID: "action-1", Request: action.Request{Kind: action.RequestLink}}}

	u := e.Emit("", cursor.NewCaret(0), Active{}, actions)
	if len(u.Actions) != 1 || u.Actions[0].ID != "action-1" {
		t.Fatalf("expected action-1, got %v", u.Actions)
	}
	if u.IsKeep() {
		t.Error("update with actions is not a keep")
	}

	actions[0].ID = "changed"
	if u.Actions[0].ID != "action-1" {
		t.Error("update should not alias the caller's slice")
	}
}

func TestKindStrings(t *testing.T) {
	if Keep.String() != "keep" || ReplaceAll.String() != "replace_all" {
		t.Error("unexpected text kind names")
	}
	if MenuKeep.String() != "keep" || MenuUpdate.String() != "update" {
		t.Error("unexpected menu kind names")
	}
}

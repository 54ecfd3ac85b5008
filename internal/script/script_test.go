package script

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dshills/composer/internal/engine"
	"github.com/dshills/composer/internal/engine/action"
)

func newTestState(t *testing.T, opts ...Option) (*State, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	base := []Option{
		WithOutput(&out),
		WithEngineOptions(engine.WithIDGenerator(action.NewCounterGenerator(""))),
	}
	s := NewState(append(base, opts...)...)
	t.Cleanup(func() { s.Close() })
	return s, &out
}

func run(t *testing.T, s *State, code string) {
	t.Helper()
	if err := s.Run(context.Background(), "test", code); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}

func TestComposerModule_Editing(t *testing.T) {
	s, out := newTestState(t)
	run(t, s, `
local c = composer.new()
local u = c:replace_text("hello")
print(u.text.kind, u.text.markup, u.text.start, u.text["end"])

c:select(0, 5)
u = c:bold()
print(u.text.markup, u.menu.kind, u.menu.bold, #u.menu.formats)

composer.expect(c, "<b>hello</b>", 0, 5)
print(c:text(), c:len())
`)

	want := "replace_all\thello\t5\t5\n<b>hello</b>\tupdate\ttrue\t1\nhello\t5\n"
	if got := out.String(); got != want {
		t.Errorf("output:\n%s\nwant:\n%s", got, want)
	}
}

func TestComposerModule_Require(t *testing.T) {
	s, out := newTestState(t)
	run(t, s, `
local composer = require("composer")
local c = composer.new("<b>hi</b>", 2)
c:replace_text("!")
local st = c:dump_state()
print(st.markup, st.start, st["end"])
print(tostring(c))
`)

	want := "<b>hi!</b>\t3\t3\ncomposer(\"<b>hi!</b>\", 3..3)\n"
	if got := out.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestComposerModule_Errors(t *testing.T) {
	s, out := newTestState(t)
	run(t, s, `
local c = composer.new("abc")
local u, err = c:delete_in(2, 1)
print(u.text.kind, err ~= nil)
local u2, err2 = c:format("blink")
print(err2 ~= nil)
local bad, msg = composer.new("abc", 3, 1)
print(bad == nil, msg ~= nil)
`)

	want := "keep\ttrue\ntrue\ntrue\ttrue\n"
	if got := out.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestComposerModule_Mention(t *testing.T) {
	s, out := newTestState(t)
	run(t, s, `
local c = composer.new()
local u = c:replace_text("@")
local a = u.actions[1]
print(a.id, a.kind, a.trigger)
u = c:replace_text("al")
print(u.actions[1].text, #c:pending_actions())
u = c:action_response(a.id, {kind = "mention", url = "u", text = "Alice"})
print(u.text.markup)
local s, e = c:selection()
print(s, e)
`)

	want := "action-1\tmention\t@\nal\t1\n<a href=\"u\">Alice</a> \n6\t6\n"
	if got := out.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestComposerModule_ExpectFails(t *testing.T) {
	s, _ := newTestState(t)
	err := s.Run(context.Background(), "expect", `composer.expect(composer.new("a"), "b")`)
	if err == nil {
		t.Fatal("expected failure")
	}
	if !strings.Contains(err.Error(), `expected markup "b"`) {
		t.Errorf("error = %v", err)
	}
	var serr *ScriptError
	if !errors.As(err, &serr) || serr.Name != "expect" {
		t.Errorf("error = %T %v, want *ScriptError named expect", err, err)
	}
}

func TestSandbox(t *testing.T) {
	tests := []struct {
		name string
		code string
	}{
		{"no os", `os.exit(1)`},
		{"no io", `io.open("/etc/passwd")`},
		{"no dofile", `dofile("/tmp/x.lua")`},
		{"no load", `load("return 1")()`},
		{"require os", `require("os")`},
		{"require file", `require("socket")`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestState(t)
			if err := s.Run(context.Background(), tt.name, tt.code); err == nil {
				t.Error("expected sandbox to reject code")
			}
		})
	}

	s, out := newTestState(t)
	run(t, s, `print(require("string").upper("ok"), math.max(1, 2))`)
	if got := out.String(); got != "OK\t2\n" {
		t.Errorf("output = %q", got)
	}
}

func TestState_Timeout(t *testing.T) {
	s, _ := newTestState(t, WithTimeout(50*time.Millisecond))
	err := s.Run(context.Background(), "loop", `while true do end`)
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("Run() error = %v, want ErrTimeout", err)
	}
}

func TestState_SyntaxError(t *testing.T) {
	s, _ := newTestState(t)
	err := s.Run(context.Background(), "broken", `local x = `)
	var serr *ScriptError
	if !errors.As(err, &serr) {
		t.Errorf("Run() error = %v, want *ScriptError", err)
	}
}

func TestState_RunFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.lua")
	code := `local c = composer.new()
c:replace_text("ab")
c:enter()
composer.expect(c, "<p>ab</p><p></p>", 3, 3)
print("done")
`
	if err := os.WriteFile(path, []byte(code), 0644); err != nil {
		t.Fatal(err)
	}

	s, out := newTestState(t)
	if err := s.RunFile(context.Background(), path); err != nil {
		t.Fatalf("RunFile() error = %v", err)
	}
	if out.String() != "done\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestState_Closed(t *testing.T) {
	s, _ := newTestState(t)
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Run(context.Background(), "x", `print(1)`); !errors.Is(err, ErrStateClosed) {
		t.Errorf("Run() after Close = %v, want ErrStateClosed", err)
	}
}

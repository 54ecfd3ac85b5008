package script

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/dshills/composer/internal/engine"
	"github.com/dshills/composer/internal/engine/action"
	"github.com/dshills/composer/internal/engine/update"
)

// ModuleName is the global and require name of the composer module.
const ModuleName = "composer"

const composerTypeName = "composer.Composer"

// module implements the composer Lua API.
type module struct {
	engineOpts []engine.Option
	logger     *zap.Logger
}

func newModule(opts []engine.Option, logger *zap.Logger) *module {
	return &module{engineOpts: opts, logger: logger}
}

// install registers the module as a global and as a preloaded module.
func (m *module) install(L *lua.LState) {
	mt := L.NewTypeMetatable(composerTypeName)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), m.methods()))
	L.SetField(mt, "__tostring", L.NewFunction(m.tostring))

	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"new":    m.new,
		"expect": m.expect,
	})
	L.SetGlobal(ModuleName, mod)
	L.PreloadModule(ModuleName, func(L *lua.LState) int {
		L.Push(mod)
		return 1
	})
}

func (m *module) methods() map[string]lua.LGFunction {
	return map[string]lua.LGFunction{
		"select": m.op(func(L *lua.LState, c *engine.Composer) (engine.ComposerUpdate, error) {
			return c.Select(L.CheckInt(2), L.CheckInt(3))
		}),
		"replace_text": m.op(func(L *lua.LState, c *engine.Composer) (engine.ComposerUpdate, error) {
			return c.ReplaceText(L.CheckString(2))
		}),
		"replace_text_in": m.op(func(L *lua.LState, c *engine.Composer) (engine.ComposerUpdate, error) {
			return c.ReplaceTextIn(L.CheckString(2), L.CheckInt(3), L.CheckInt(4))
		}),
		"delete_in": m.op(func(L *lua.LState, c *engine.Composer) (engine.ComposerUpdate, error) {
			return c.DeleteIn(L.CheckInt(2), L.CheckInt(3))
		}),
		"set_content": m.op(func(L *lua.LState, c *engine.Composer) (engine.ComposerUpdate, error) {
			return c.SetContentFromMarkup(L.CheckString(2))
		}),
		"format": m.op(func(L *lua.LState, c *engine.Composer) (engine.ComposerUpdate, error) {
			return c.ToggleFormatByName(L.CheckString(2))
		}),
		"set_link": m.op(func(L *lua.LState, c *engine.Composer) (engine.ComposerUpdate, error) {
			return c.SetLink(L.CheckString(2))
		}),
		"action_response": m.op(func(L *lua.LState, c *engine.Composer) (engine.ComposerUpdate, error) {
			return c.ActionResponse(L.CheckString(2), checkResponse(L, 3))
		}),
		"backspace":      m.op(simple((*engine.Composer).Backspace)),
		"delete":         m.op(simple((*engine.Composer).Delete)),
		"enter":          m.op(simple((*engine.Composer).Enter)),
		"clear":          m.op(simple((*engine.Composer).Clear)),
		"bold":           m.op(simple((*engine.Composer).Bold)),
		"italic":         m.op(simple((*engine.Composer).Italic)),
		"underline":      m.op(simple((*engine.Composer).Underline)),
		"strike_through": m.op(simple((*engine.Composer).StrikeThrough)),
		"inline_code":    m.op(simple((*engine.Composer).InlineCode)),
		"link":           m.op(simple((*engine.Composer).Link)),

		"dump_state":      m.dumpState,
		"markup":          m.markup,
		"text":            m.text,
		"len":             m.length,
		"selection":       m.selection,
		"pending_actions": m.pendingActions,
	}
}

type opFunc func(L *lua.LState, c *engine.Composer) (engine.ComposerUpdate, error)

func simple(fn func(*engine.Composer) (engine.ComposerUpdate, error)) opFunc {
	return func(_ *lua.LState, c *engine.Composer) (engine.ComposerUpdate, error) {
		return fn(c)
	}
}

// op wraps an engine call. It returns the update and, on failure, the
// error message.
func (m *module) op(fn opFunc) lua.LGFunction {
	return func(L *lua.LState) int {
		c := checkComposer(L)
		u, err := fn(L, c)
		L.Push(updateTable(L, u))
		if err != nil {
			L.Push(lua.LString(err.Error()))
			return 2
		}
		return 1
	}
}

// composer.new([markup [, start, end]]) -> composer
func (m *module) new(L *lua.LState) int {
	var (
		c   *engine.Composer
		err error
	)
	if L.GetTop() == 0 || L.Get(1) == lua.LNil {
		c = engine.New(m.engineOpts...)
	} else {
		markup := L.CheckString(1)
		start := L.OptInt(2, 0)
		end := L.OptInt(3, start)
		c, err = engine.NewFromMarkup(markup, start, end, m.engineOpts...)
	}
	if err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}

	ud := L.NewUserData()
	ud.Value = c
	L.SetMetatable(ud, L.GetTypeMetatable(composerTypeName))
	L.Push(ud)
	return 1
}

// composer.expect(c, markup [, start, end]) raises an error unless the
// composer holds markup and, when given, the selection.
func (m *module) expect(L *lua.LState) int {
	c := checkComposer(L)
	want := L.CheckString(2)
	if got := c.Markup(); got != want {
		L.RaiseError("expected markup %q, got %q", want, got)
		return 0
	}
	if L.GetTop() >= 3 {
		start := L.CheckInt(3)
		end := L.OptInt(4, start)
		if sel := c.Selection(); sel.Start != start || sel.End != end {
			L.RaiseError("expected selection %d..%d, got %d..%d", start, end, sel.Start, sel.End)
			return 0
		}
	}
	m.logger.Debug("expectation met", zap.String("markup", want))
	return 0
}

func (m *module) dumpState(L *lua.LState) int {
	st := checkComposer(L).DumpState()
	t := L.NewTable()
	t.RawSetString("markup", lua.LString(st.Markup.String()))
	t.RawSetString("start", lua.LNumber(st.Start))
	t.RawSetString("end", lua.LNumber(st.End))
	L.Push(t)
	return 1
}

func (m *module) markup(L *lua.LState) int {
	L.Push(lua.LString(checkComposer(L).Markup()))
	return 1
}

func (m *module) text(L *lua.LState) int {
	L.Push(lua.LString(checkComposer(L).PlainText()))
	return 1
}

func (m *module) length(L *lua.LState) int {
	L.Push(lua.LNumber(checkComposer(L).Len()))
	return 1
}

// selection() -> start, end
func (m *module) selection(L *lua.LState) int {
	sel := checkComposer(L).Selection()
	L.Push(lua.LNumber(sel.Start))
	L.Push(lua.LNumber(sel.End))
	return 2
}

func (m *module) pendingActions(L *lua.LState) int {
	L.Push(actionsTable(L, checkComposer(L).PendingActions()))
	return 1
}

func (m *module) tostring(L *lua.LState) int {
	c := checkComposer(L)
	sel := c.Selection()
	L.Push(lua.LString(fmt.Sprintf("composer(%q, %d..%d)", c.Markup(), sel.Start, sel.End)))
	return 1
}

func checkComposer(L *lua.LState) *engine.Composer {
	ud := L.CheckUserData(1)
	if c, ok := ud.Value.(*engine.Composer); ok {
		return c
	}
	L.ArgError(1, "composer expected")
	return nil
}

// checkResponse reads {kind = "link"|"mention"|"dismiss", url = ..., text = ...}.
func checkResponse(L *lua.LState, n int) action.Response {
	t := L.CheckTable(n)
	kind, ok := action.ParseResponseKind(lua.LVAsString(t.RawGetString("kind")))
	if !ok {
		L.ArgError(n, "response kind must be link, mention or dismiss")
	}
	return action.Response{
		Kind: kind,
		URL:  lua.LVAsString(t.RawGetString("url")),
		Text: lua.LVAsString(t.RawGetString("text")),
	}
}

func updateTable(L *lua.LState, u engine.ComposerUpdate) *lua.LTable {
	text := L.NewTable()
	text.RawSetString("kind", lua.LString(u.Text.Kind.String()))
	if u.Text.Kind == update.ReplaceAll {
		text.RawSetString("markup", lua.LString(u.Text.Markup.String()))
	}
	text.RawSetString("start", lua.LNumber(u.Text.Start))
	text.RawSetString("end", lua.LNumber(u.Text.End))

	menu := L.NewTable()
	menu.RawSetString("kind", lua.LString(u.Menu.Kind.String()))
	if u.Menu.Kind == update.MenuUpdate {
		formats := L.NewTable()
		for _, name := range u.Menu.Formats.Names() {
			formats.Append(lua.LString(name))
			menu.RawSetString(name, lua.LTrue)
		}
		menu.RawSetString("formats", formats)
		menu.RawSetString("link", lua.LBool(u.Menu.Link))
	}

	t := L.NewTable()
	t.RawSetString("text", text)
	t.RawSetString("menu", menu)
	t.RawSetString("actions", actionsTable(L, u.Actions))
	return t
}

func actionsTable(L *lua.LState, actions []engine.ComposerAction) *lua.LTable {
	t := L.NewTable()
	for _, a := range actions {
		at := L.NewTable()
		at.RawSetString("id", lua.LString(a.ID))
		at.RawSetString("kind", lua.LString(a.Request.Kind.String()))
		at.RawSetString("trigger", lua.LString(a.Request.Trigger))
		at.RawSetString("text", lua.LString(a.Request.Text))
		t.Append(at)
	}
	return t
}

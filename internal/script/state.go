package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/dshills/composer/internal/engine"
)

// DefaultTimeout bounds a single Run.
const DefaultTimeout = 5 * time.Second

// State is a sandboxed Lua state with the composer module installed.
//
// gopher-lua states are not goroutine-safe; mu serializes Run calls.
type State struct {
	L *lua.LState

	mu sync.Mutex

	// Configuration
	timeout    time.Duration
	out        io.Writer
	logger     *zap.Logger
	engineOpts []engine.Option

	closed bool
}

// Option configures a State.
type Option func(*State)

// WithTimeout sets the deadline applied to each Run. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(s *State) {
		if d >= 0 {
			s.timeout = d
		}
	}
}

// WithOutput redirects print.
func WithOutput(w io.Writer) Option {
	return func(s *State) {
		if w != nil {
			s.out = w
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *State) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithEngineOptions sets the options for composers created by scripts.
func WithEngineOptions(opts ...engine.Option) Option {
	return func(s *State) {
		s.engineOpts = opts
	}
}

// NewState creates a sandboxed state.
func NewState(opts ...Option) *State {
	s := &State{
		timeout: DefaultTimeout,
		out:     os.Stdout,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(s.L)
	installSandbox(s.L, s.out)
	newModule(s.engineOpts, s.logger).install(s.L)
	return s
}

// openSafeLibraries opens only the libraries scripts may use. package is
// opened so require and preload work; the sandbox then locks it down.
func openSafeLibraries(L *lua.LState) {
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.LoadLibName, lua.OpenPackage},
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
}

// Run executes code. name labels the chunk in errors.
func (s *State) Run(ctx context.Context, name, code string) error {
	fn, err := s.compile(name, code)
	if err != nil {
		return err
	}
	return s.call(ctx, name, fn)
}

// RunFile executes the script at path.
func (s *State) RunFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return s.Run(ctx, path, string(data))
}

func (s *State) compile(name, code string) (*lua.LFunction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStateClosed
	}
	fn, err := s.L.Load(strings.NewReader(code), name)
	if err != nil {
		return nil, &ScriptError{Name: name, Err: err}
	}
	return fn, nil
}

func (s *State) call(ctx context.Context, name string, fn *lua.LFunction) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	s.L.SetContext(ctx)
	defer s.L.RemoveContext()

	defer func() {
		if r := recover(); r != nil {
			err = &ScriptError{Name: name, Err: fmt.Errorf("lua panic: %v", r)}
		}
	}()

	start := time.Now()
	s.L.Push(fn)
	if perr := s.L.PCall(0, lua.MultRet, nil); perr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			if errors.Is(ctxErr, context.DeadlineExceeded) {
				return &ScriptError{Name: name, Err: ErrTimeout}
			}
			return &ScriptError{Name: name, Err: ctxErr}
		}
		return &ScriptError{Name: name, Err: perr}
	}
	s.L.SetTop(0)

	s.logger.Debug("script finished", zap.String("name", name), zap.Duration("elapsed", time.Since(start)))
	return nil
}

// Close releases the Lua state.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.L.Close()
	s.closed = true
	return nil
}

package bridge

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/dshills/composer/internal/engine"
)

// maxLineSize bounds a single request line.
const maxLineSize = 4 << 20

// Server dispatches protocol requests to composer sessions.
type Server struct {
	mu         sync.RWMutex
	logger     *zap.Logger
	engineOpts []engine.Option
	codec      codec

	sessions *registry
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithEngineOptions sets the options used for new sessions.
func WithEngineOptions(opts ...engine.Option) Option {
	return func(s *Server) {
		s.engineOpts = opts
	}
}

// WithMaxSessions limits the number of open sessions. 0 means no limit.
func WithMaxSessions(n int) Option {
	return func(s *Server) {
		if n >= 0 {
			s.sessions.setMax(n)
		}
	}
}

// WithMarkupEncoding selects EncodingString or EncodingUTF16LE.
func WithMarkupEncoding(enc string) Option {
	return func(s *Server) {
		if enc == EncodingString || enc == EncodingUTF16LE {
			s.codec.encoding = enc
		}
	}
}

// NewServer creates a server with no sessions.
func NewServer(opts ...Option) *Server {
	s := &Server{
		logger:   zap.NewNop(),
		codec:    codec{encoding: EncodingString},
		sessions: newRegistry(0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reconfigure applies opts to a running server. Open sessions keep the
// engine options they were created with.
func (s *Server) Reconfigure(opts ...Option) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, opt := range opts {
		opt(s)
	}
	s.logger.Info("bridge reconfigured",
		zap.String("encoding", s.codec.encoding),
		zap.Int("sessions", s.sessions.len()))
}

// Sessions returns the open session ids.
func (s *Server) Sessions() []string {
	return s.sessions.ids()
}

// Close closes a session. It reports whether the session existed.
func (s *Server) Close(id string) bool {
	ok := s.sessions.remove(id)
	if ok {
		s.log().Info("session closed", zap.String("session", id))
	}
	return ok
}

func (s *Server) log() *zap.Logger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.logger
}

func (s *Server) config() (codec, []engine.Option) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.codec, s.engineOpts
}

// Serve reads requests from r, one per line, and writes one response
// line to w for each. It returns when r is exhausted or as soon as ctx is
// done, even while a read is blocked; the reading goroutine then exits
// when r next returns.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	lines := make(chan []byte)
	var scanErr error
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 64*1024), maxLineSize)
		for scanner.Scan() {
			select {
			case lines <- bytes.Clone(scanner.Bytes()):
			case <-ctx.Done():
				return
			}
		}
		scanErr = scanner.Err()
	}()

	bw := bufio.NewWriter(w)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		var line []byte
		select {
		case <-ctx.Done():
			return ctx.Err()
		case l, ok := <-lines:
			if !ok {
				if err := ctx.Err(); err != nil {
					return err
				}
				return scanErr
			}
			line = l
		}
		if len(line) == 0 {
			continue
		}
		if _, err := bw.Write(s.Handle(line)); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
		if err := bw.Flush(); err != nil {
			return err
		}
	}
}

// Handle processes one request and returns the encoded response.
func (s *Server) Handle(line []byte) []byte {
	out, _ := s.handle(line)
	return out
}

// handle also returns the id of a session created by the request.
func (s *Server) handle(line []byte) ([]byte, string) {
	codec, _ := s.config()
	req, err := parseRequest(line)
	resp := newResponse(req.id)
	var created string

	if err == nil {
		created, err = s.dispatch(codec, req, resp)
	}
	if err != nil {
		s.log().Debug("request failed",
			zap.String("op", req.op),
			zap.String("session", req.session),
			zap.Error(err))
		writeError(resp, err)
	} else {
		resp.set("ok", true)
	}

	out, encErr := resp.bytes()
	if encErr != nil {
		s.log().Error("encode response", zap.Error(encErr))
		fallback := newResponse(req.id)
		writeError(fallback, fmt.Errorf("encoding response: %w", encErr))
		out, _ = fallback.bytes()
	}
	return out, created
}

// op is a composer operation addressed by a request.
type op func(c *engine.Composer, req request) (engine.ComposerUpdate, error)

var ops = map[string]op{
	"select": func(c *engine.Composer, req request) (engine.ComposerUpdate, error) {
		start, end, err := req.span()
		if err != nil {
			return engine.ComposerUpdate{}, err
		}
		return c.Select(start, end)
	},
	"replace_text": func(c *engine.Composer, req request) (engine.ComposerUpdate, error) {
		text, err := req.str("text")
		if err != nil {
			return engine.ComposerUpdate{}, err
		}
		return c.ReplaceText(text)
	},
	"replace_text_in": func(c *engine.Composer, req request) (engine.ComposerUpdate, error) {
		text, err := req.str("text")
		if err != nil {
			return engine.ComposerUpdate{}, err
		}
		start, end, err := req.span()
		if err != nil {
			return engine.ComposerUpdate{}, err
		}
		return c.ReplaceTextIn(text, start, end)
	},
	"delete_in": func(c *engine.Composer, req request) (engine.ComposerUpdate, error) {
		start, end, err := req.span()
		if err != nil {
			return engine.ComposerUpdate{}, err
		}
		return c.DeleteIn(start, end)
	},
	"backspace":      simple((*engine.Composer).Backspace),
	"delete":         simple((*engine.Composer).Delete),
	"enter":          simple((*engine.Composer).Enter),
	"clear":          simple((*engine.Composer).Clear),
	"bold":           simple((*engine.Composer).Bold),
	"italic":         simple((*engine.Composer).Italic),
	"underline":      simple((*engine.Composer).Underline),
	"strike_through": simple((*engine.Composer).StrikeThrough),
	"inline_code":    simple((*engine.Composer).InlineCode),
	"link":           simple((*engine.Composer).Link),
	"format": func(c *engine.Composer, req request) (engine.ComposerUpdate, error) {
		name, err := req.str("format")
		if err != nil {
			return engine.ComposerUpdate{}, err
		}
		return c.ToggleFormatByName(name)
	},
	"set_link": func(c *engine.Composer, req request) (engine.ComposerUpdate, error) {
		url, err := req.str("url")
		if err != nil {
			return engine.ComposerUpdate{}, err
		}
		return c.SetLink(url)
	},
	"action_response": func(c *engine.Composer, req request) (engine.ComposerUpdate, error) {
		id, err := req.str("action_id")
		if err != nil {
			return engine.ComposerUpdate{}, err
		}
		resp, err := req.response()
		if err != nil {
			return engine.ComposerUpdate{}, err
		}
		return c.ActionResponse(id, resp)
	},
}

func simple(fn func(*engine.Composer) (engine.ComposerUpdate, error)) op {
	return func(c *engine.Composer, _ request) (engine.ComposerUpdate, error) {
		return fn(c)
	}
}

// dispatch runs req and fills resp. It returns the id of a session the
// request created.
func (s *Server) dispatch(codec codec, req request, resp *response) (string, error) {
	switch req.op {
	case "new":
		sess, err := s.newSession(codec, req)
		if err != nil {
			return "", err
		}
		resp.set("session", sess.id)
		return sess.id, sess.do(func(c *engine.Composer) error {
			codec.writeState(resp, "state", c.DumpState())
			return nil
		})

	case "close":
		if !s.Close(req.session) {
			return "", ErrSessionNotFound
		}
		resp.set("session", req.session)
		return "", nil

	case "sessions":
		resp.set("sessions", s.Sessions())
		return "", nil
	}

	sess, err := s.sessions.get(req.session)
	if err != nil {
		return "", err
	}
	resp.set("session", sess.id)

	switch req.op {
	case "dump_state":
		return "", sess.do(func(c *engine.Composer) error {
			codec.writeState(resp, "state", c.DumpState())
			return nil
		})

	case "set_content":
		markup, err := codec.markupIn(req, "markup")
		if err != nil {
			return "", err
		}
		return "", sess.do(func(c *engine.Composer) error {
			u, err := c.SetContentFromMarkup(markup)
			codec.writeUpdate(resp, "update", u)
			return err
		})
	}

	fn, ok := ops[req.op]
	if !ok {
		return "", &RequestError{Field: "op", Message: fmt.Sprintf("unknown operation %q", req.op)}
	}
	return "", sess.do(func(c *engine.Composer) error {
		u, err := fn(c, req)
		var rerr *RequestError
		if errors.As(err, &rerr) {
			return err
		}
		codec.writeUpdate(resp, "update", u)
		return err
	})
}

func (s *Server) newSession(codec codec, req request) (*session, error) {
	_, engineOpts := s.config()

	var c *engine.Composer
	if !req.body.Get("markup").Exists() {
		c = engine.New(engineOpts...)
	} else {
		markup, err := codec.markupIn(req, "markup")
		if err != nil {
			return nil, err
		}
		start, err := req.optInt("start", 0)
		if err != nil {
			return nil, err
		}
		end, err := req.optInt("end", start)
		if err != nil {
			return nil, err
		}
		if c, err = engine.NewFromMarkup(markup, start, end, engineOpts...); err != nil {
			return nil, err
		}
	}

	sess, err := s.sessions.add(c)
	if err != nil {
		return nil, err
	}
	s.log().Info("session opened", zap.String("session", sess.id))
	return sess, nil
}

package bridge

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/composer/internal/engine"
	"github.com/dshills/composer/internal/engine/action"
	"github.com/dshills/composer/internal/engine/update"
)

// Markup encodings on the wire.
const (
	// EncodingString sends markup as a JSON string.
	EncodingString = "string"

	// EncodingUTF16LE sends markup as base64 of its UTF-16LE code units.
	EncodingUTF16LE = "utf16le"
)

// Error kinds reported in failed responses.
const (
	KindRequest    = "request"
	KindSession    = "session"
	KindRange      = "range"
	KindStructural = "structural"
	KindMismatch   = "mismatch"
	KindFormat     = "format"
	KindInvalid    = "invalid"
)

// RequestError reports a malformed request.
type RequestError struct {
	Field   string
	Message string
}

func (e *RequestError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// request is one parsed protocol message.
type request struct {
	id      gjson.Result
	session string
	op      string
	body    gjson.Result
}

func parseRequest(line []byte) (request, error) {
	if !gjson.ValidBytes(line) {
		return request{}, &RequestError{Message: "invalid JSON"}
	}
	body := gjson.ParseBytes(line)
	if !body.IsObject() {
		return request{}, &RequestError{Message: "request must be an object"}
	}

	req := request{id: body.Get("id"), body: body}
	op := body.Get("op")
	if op.Type != gjson.String || op.Str == "" {
		return req, &RequestError{Field: "op", Message: "missing operation"}
	}
	req.op = op.Str
	req.session = body.Get("session").String()
	return req, nil
}

func (r request) str(field string) (string, error) {
	v := r.body.Get(field)
	if v.Type != gjson.String {
		return "", &RequestError{Field: field, Message: "expected string"}
	}
	return v.Str, nil
}

func (r request) optStr(field string) string {
	return r.body.Get(field).String()
}

func (r request) int(field string) (int, error) {
	v := r.body.Get(field)
	if v.Type != gjson.Number {
		return 0, &RequestError{Field: field, Message: "expected number"}
	}
	n := v.Int()
	if float64(n) != v.Num {
		return 0, &RequestError{Field: field, Message: "expected integer"}
	}
	return int(n), nil
}

// optInt returns def when field is absent.
func (r request) optInt(field string, def int) (int, error) {
	if !r.body.Get(field).Exists() {
		return def, nil
	}
	return r.int(field)
}

func (r request) span() (int, int, error) {
	start, err := r.int("start")
	if err != nil {
		return 0, 0, err
	}
	end, err := r.int("end")
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

func (r request) response() (action.Response, error) {
	v := r.body.Get("response")
	if !v.IsObject() {
		return action.Response{}, &RequestError{Field: "response", Message: "expected object"}
	}
	kind, ok := action.ParseResponseKind(v.Get("kind").String())
	if !ok {
		return action.Response{}, &RequestError{Field: "response.kind", Message: "expected link, mention or dismiss"}
	}
	return action.Response{
		Kind: kind,
		URL:  v.Get("url").String(),
		Text: v.Get("text").String(),
	}, nil
}

// codec converts markup and updates to and from the wire.
type codec struct {
	encoding string
}

func (c codec) markupIn(r request, field string) (string, error) {
	s, err := r.str(field)
	if err != nil || c.encoding != EncodingUTF16LE {
		return s, err
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return "", &RequestError{Field: field, Message: "invalid base64"}
	}
	m, err := update.DecodeMarkup(raw)
	if err != nil {
		return "", &RequestError{Field: field, Message: err.Error()}
	}
	return m.String(), nil
}

func (c codec) markupOut(m update.Markup) (string, error) {
	if c.encoding != EncodingUTF16LE {
		return m.String(), nil
	}
	raw, err := m.Bytes()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// response accumulates one reply with sjson.
type response struct {
	buf []byte
	err error
}

func newResponse(id gjson.Result) *response {
	r := &response{buf: []byte(`{}`)}
	if id.Exists() {
		r.setRaw("id", id.Raw)
	}
	return r
}

func (r *response) set(path string, value any) {
	if r.err != nil {
		return
	}
	r.buf, r.err = sjson.SetBytes(r.buf, path, value)
}

func (r *response) setRaw(path, raw string) {
	if r.err != nil {
		return
	}
	r.buf, r.err = sjson.SetRawBytes(r.buf, path, []byte(raw))
}

func (r *response) bytes() ([]byte, error) {
	return r.buf, r.err
}

func (c codec) writeUpdate(r *response, path string, u engine.ComposerUpdate) {
	r.set(path+".text.kind", u.Text.Kind.String())
	if u.Text.Kind == update.ReplaceAll {
		markup, err := c.markupOut(u.Text.Markup)
		if err != nil {
			r.err = err
			return
		}
		r.set(path+".text.markup", markup)
	}
	r.set(path+".text.start", u.Text.Start)
	r.set(path+".text.end", u.Text.End)

	r.set(path+".menu.kind", u.Menu.Kind.String())
	if u.Menu.Kind == update.MenuUpdate {
		r.set(path+".menu.formats", u.Menu.Formats.Names())
		r.set(path+".menu.link", u.Menu.Link)
	}

	r.setRaw(path+".actions", "[]")
	for _, a := range u.Actions {
		item := &response{buf: []byte(`{}`)}
		item.set("id", a.ID)
		item.set("request.kind", a.Request.Kind.String())
		if a.Request.Trigger != "" {
			item.set("request.trigger", a.Request.Trigger)
		}
		item.set("request.text", a.Request.Text)
		if item.err != nil {
			r.err = item.err
			return
		}
		r.setRaw(path+".actions.-1", string(item.buf))
	}
}

func (c codec) writeState(r *response, path string, st engine.ComposerState) {
	markup, err := c.markupOut(st.Markup)
	if err != nil {
		r.err = err
		return
	}
	r.set(path+".markup", markup)
	r.set(path+".start", st.Start)
	r.set(path+".end", st.End)
}

func writeError(r *response, err error) {
	r.set("ok", false)
	r.set("error.kind", errorKind(err))
	r.set("error.message", err.Error())
}

func errorKind(err error) string {
	var rerr *RequestError
	switch {
	case errors.As(err, &rerr):
		return KindRequest
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrTooManySessions):
		return KindSession
	case engine.IsRangeError(err):
		return KindRange
	case engine.IsStructuralError(err):
		return KindStructural
	case errors.Is(err, engine.ErrResponseMismatch):
		return KindMismatch
	case errors.Is(err, engine.ErrUnknownFormat):
		return KindFormat
	default:
		return KindInvalid
	}
}

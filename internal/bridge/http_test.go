package bridge

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, req string) gjson.Result {
	t.Helper()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(req)); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return gjson.ParseBytes(msg)
}

func TestWebSocket_Session(t *testing.T) {
	s := newTestServer()
	srv := httptest.NewServer(NewRouter(s))
	defer srv.Close()

	conn := dial(t, srv)
	res := roundTrip(t, conn, `{"id":1,"op":"new","markup":"<b>hi</b>","start":2,"end":2}`)
	id := res.Get("session").String()
	if id == "" || res.Get("state.markup").String() != "<b>hi</b>" {
		t.Fatalf("unexpected new reply %s", res.Raw)
	}

	res = roundTrip(t, conn, sessionOp(id, `"id":2,"op":"replace_text","text":"!"`))
	if got := res.Get("update.text.markup").String(); got != "<b>hi!</b>" {
		t.Errorf("markup = %q, want <b>hi!</b>", got)
	}

	resp, err := http.Get(srv.URL + "/sessions/" + id + "/state")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if got := gjson.GetBytes(body, "state.markup").String(); got != "<b>hi!</b>" {
		t.Errorf("state.markup = %q", got)
	}

	// Sessions opened by a connection close with it.
	conn.Close()
	deadline := time.Now().Add(5 * time.Second)
	for len(s.Sessions()) > 0 {
		if time.Now().After(deadline) {
			t.Fatalf("sessions still open: %v", s.Sessions())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestWebSocket_IgnoresBinary(t *testing.T) {
	srv := httptest.NewServer(NewRouter(newTestServer()))
	defer srv.Close()

	conn := dial(t, srv)
	defer conn.Close()

	if err := conn.WriteMessage(websocket.BinaryMessage, []byte{0xff}); err != nil {
		t.Fatal(err)
	}
	res := roundTrip(t, conn, `{"id":9,"op":"sessions"}`)
	if res.Get("id").Int() != 9 {
		t.Errorf("reply to wrong request: %s", res.Raw)
	}
}

func TestRouter_HTTP(t *testing.T) {
	s := newTestServer()
	srv := httptest.NewServer(NewRouter(s))
	defer srv.Close()

	tests := []struct {
		path   string
		status int
		check  func(body []byte) bool
	}{
		{"/healthz", http.StatusOK, func(b []byte) bool { return string(b) == "ok\n" }},
		{"/sessions", http.StatusOK, func(b []byte) bool { return gjson.GetBytes(b, "sessions").IsArray() }},
		{"/sessions/missing/state", http.StatusNotFound, func(b []byte) bool {
			return gjson.GetBytes(b, "error.kind").String() == KindSession
		}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := http.Get(srv.URL + tt.path)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if !tt.check(body) {
				t.Errorf("unexpected body %q", body)
			}
		})
	}

	resp, err := http.Post(srv.URL+"/sessions", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("POST /sessions status = %d, want 405", resp.StatusCode)
	}
}

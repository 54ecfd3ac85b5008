package bridge

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/dshills/composer/internal/engine"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// NewRouter returns the HTTP surface of the bridge:
//
//	GET /ws                    websocket, one request per text message
//	GET /healthz               liveness
//	GET /sessions              open session ids
//	GET /sessions/{id}/state   dump_state of one session
func NewRouter(s *Server) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/ws", s.ServeWS).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("ok\n"))
	}).Methods(http.MethodGet)
	r.HandleFunc("/sessions", s.serveSessions).Methods(http.MethodGet)
	r.HandleFunc("/sessions/{id}/state", s.serveState).Methods(http.MethodGet)
	return r
}

// ServeWS upgrades the connection and answers each text message as a
// request. Sessions opened over the connection are closed when it ends.
func (s *Server) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log().Warn("websocket upgrade", zap.Error(err))
		return
	}
	defer conn.Close()

	remote := r.RemoteAddr
	s.log().Info("websocket connected", zap.String("remote", remote))

	var owned []string
	defer func() {
		for _, id := range owned {
			s.Close(id)
		}
		s.log().Info("websocket disconnected",
			zap.String("remote", remote),
			zap.Int("sessions", len(owned)))
	}()

	for {
		kind, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log().Warn("websocket read", zap.Error(err))
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}

		out, created := s.handle(msg)
		if created != "" {
			owned = append(owned, created)
		}

		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, out); err != nil {
			s.log().Warn("websocket write", zap.Error(err))
			return
		}
	}
}

func (s *Server) serveSessions(w http.ResponseWriter, _ *http.Request) {
	resp := &response{buf: []byte(`{}`)}
	resp.set("sessions", s.Sessions())
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) serveState(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	sess, err := s.sessions.get(id)
	resp := &response{buf: []byte(`{}`)}
	if err != nil {
		writeError(resp, err)
		writeJSON(w, http.StatusNotFound, resp)
		return
	}

	codec, _ := s.config()
	_ = sess.do(func(c *engine.Composer) error {
		codec.writeState(resp, "state", c.DumpState())
		return nil
	})
	resp.set("ok", true)
	resp.set("session", id)
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, resp *response) {
	out, err := resp.bytes()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(out)
	_, _ = w.Write([]byte("\n"))
}

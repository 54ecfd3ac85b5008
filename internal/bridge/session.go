package bridge

import (
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/composer/internal/engine"
)

// Session errors.
var (
	// ErrSessionNotFound indicates an unknown or closed session id.
	ErrSessionNotFound = errors.New("session not found")

	// ErrTooManySessions indicates the session limit was reached.
	ErrTooManySessions = errors.New("too many sessions")
)

// session owns one composer. The composer is single-threaded, so every
// call goes through mu.
type session struct {
	id string
	mu sync.Mutex
	c  *engine.Composer
}

func (s *session) do(fn func(c *engine.Composer) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.c)
}

// registry tracks open sessions.
type registry struct {
	mu       sync.RWMutex
	sessions map[string]*session
	max      int // 0 means unlimited
}

func newRegistry(max int) *registry {
	return &registry{
		sessions: make(map[string]*session),
		max:      max,
	}
}

func (r *registry) add(c *engine.Composer) (*session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.max > 0 && len(r.sessions) >= r.max {
		return nil, ErrTooManySessions
	}
	s := &session{id: uuid.NewString(), c: c}
	r.sessions[s.id] = s
	return s, nil
}

func (r *registry) get(id string) (*session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (r *registry) remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

func (r *registry) setMax(max int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.max = max
}

func (r *registry) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// ids returns the open session ids in sorted order.
func (r *registry) ids() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

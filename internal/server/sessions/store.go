// Package sessions keeps per-browser state in memory: the authenticated
// username (if any), the guest conversation, and pending flash messages.
// Nothing here is durable; a lost session only loses guest history.
package sessions

import (
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/confidant/internal/server/chat"
)

// Flash is a one-shot notice rendered on the next page load.
type Flash struct {
	Level string // "success" or "error"
	Text  string
}

// Session is the state attached to one browser.
type Session struct {
	ID       string
	Username string            // empty for guests
	Guest    chat.Conversation // nil until the guest sends a message
	flashes  []Flash
}

// IsGuest reports whether the session carries no authenticated identity.
func (s *Session) IsGuest() bool {
	return s.Username == ""
}

// AddFlash queues a notice for the next render.
func (s *Session) AddFlash(level, text string) {
	s.flashes = append(s.flashes, Flash{Level: level, Text: text})
}

// TakeFlashes drains and returns the queued notices.
func (s *Session) TakeFlashes() []Flash {
	out := s.flashes
	s.flashes = nil
	return out
}

// Store is an in-memory session map guarded by a RWMutex. Sessions live for
// the process lifetime; identity travels in a signed cookie.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*Session),
	}
}

// Create makes a fresh session with a random ID.
func (s *Store) Create() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := &Session{ID: uuid.NewString()}
	s.sessions[sess.ID] = sess
	return sess
}

// Get returns the session for id, or nil when it is unknown.
func (s *Store) Get(id string) *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.sessions[id]
}

// Delete removes the session for id, if present.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
}

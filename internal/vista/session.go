// Package vista resolves the query specification a list request should
// run under, from submitted forms, saved vistas, session hand-offs, or
// per-view defaults.
package vista

import (
	"sync"

	"github.com/google/uuid"
)

// SessionStore carries a one-shot query hand-off between requests, used
// when a mutation redirects back to a list that should re-run the query
// the user came from. Entries are consumed by Take.
type SessionStore interface {
	Put(userID uuid.UUID, modelName, query string)
	Take(userID uuid.UUID, modelName string) (string, bool)
	Clear(userID uuid.UUID, modelName string)
}

type sessionKey struct {
	userID    uuid.UUID
	modelName string
}

type memorySessionStore struct {
	mu      sync.Mutex
	entries map[sessionKey]string
}

// NewMemorySessionStore returns an in-process session store.
func NewMemorySessionStore() SessionStore {
	return &memorySessionStore{entries: make(map[sessionKey]string)}
}

func (s *memorySessionStore) Put(userID uuid.UUID, modelName, query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[sessionKey{userID, modelName}] = query
}

func (s *memorySessionStore) Take(userID uuid.UUID, modelName string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := sessionKey{userID, modelName}
	query, ok := s.entries[key]
	if ok {
		delete(s.entries, key)
	}
	return query, ok
}

func (s *memorySessionStore) Clear(userID uuid.UUID, modelName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sessionKey{userID, modelName})
}

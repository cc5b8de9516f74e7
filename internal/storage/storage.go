package storage

import (
	"sync"
	"time"

	"github.com/lehigh-university-libraries/stylist/internal/studio"
)

// SessionStore keeps studio sessions in memory. Nothing is persisted.
type SessionStore struct {
	sessions map[string]*studio.Session
	mu       sync.RWMutex
}

func New() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*studio.Session),
	}
}

func (s *SessionStore) Get(sessionID string) (*studio.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, exists := s.sessions[sessionID]
	return session, exists
}

func (s *SessionStore) Set(session *studio.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
}

// Create stores and returns a new idle session created by origin.
func (s *SessionStore) Create(origin studio.Origin) *studio.Session {
	session := studio.NewSessionFor(origin)
	s.Set(session)
	return session
}

func (s *SessionStore) GetAll() map[string]*studio.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]*studio.Session, len(s.sessions))
	for k, v := range s.sessions {
		result[k] = v
	}
	return result
}

func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// Prune drops sessions idle for longer than maxIdle and returns how many
// were removed. Sessions with an edit in flight are kept.
func (s *SessionStore) Prune(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, session := range s.sessions {
		if session.Idle(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

package repository

import (
	"sync"
	"sync/atomic"
	"time"

	"anoa.com/signupform/internal/modules/notification/service"
	signup "anoa.com/signupform/internal/modules/signup/service"
	"github.com/google/uuid"
)

// Session is one open sign-up form. Lock it around every controller call so
// that a draft handles one input event at a time.
type Session struct {
	ID         uuid.UUID
	Controller *signup.FormController
	Inbox      *service.Inbox
	CreatedAt  time.Time

	mu       sync.Mutex
	// lastSeen is read without mu so a sweep never waits on a busy session.
	lastSeen atomic.Int64
}

func (s *Session) Lock() {
	s.lastSeen.Store(time.Now().UnixNano())
	s.mu.Lock()
}

func (s *Session) Unlock() { s.mu.Unlock() }

func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

type SessionRepository interface {
	Create(s *Session)
	Get(id uuid.UUID) (*Session, bool)
	Delete(id uuid.UUID) bool
	// Sweep closes and removes sessions not seen since cutoff.
	Sweep(cutoff time.Time) int
	Count() int
}

type sessionRepository struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

func NewSessionRepository() SessionRepository {
	return &sessionRepository{sessions: make(map[uuid.UUID]*Session)}
}

func (r *sessionRepository) Create(s *Session) {
	now := time.Now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.lastSeen.Store(now.UnixNano())

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
}

func (r *sessionRepository) Get(id uuid.UUID) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

func (r *sessionRepository) Delete(id uuid.UUID) bool {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		closeSession(s)
	}
	return ok
}

func (r *sessionRepository) Sweep(cutoff time.Time) int {
	var expired []*Session

	r.mu.Lock()
	for id, s := range r.sessions {
		if s.LastSeen().Before(cutoff) {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range expired {
		closeSession(s)
	}
	return len(expired)
}

func (r *sessionRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func closeSession(s *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Controller.Close()
}

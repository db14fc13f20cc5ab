package server

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/wayfare-dev/wayfare/pkg/middleware"
	"github.com/wayfare-dev/wayfare/pkg/protocol"
)

// ErrMaxSessionsReached is returned when the session limit is hit.
var ErrMaxSessionsReached = errors.New("server: maximum sessions reached")

// SessionManager tracks active sessions.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	limit    int
	logger   *slog.Logger
}

// NewSessionManager creates a session manager. limit of 0 means unlimited.
func NewSessionManager(limit int, logger *slog.Logger) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Session),
		limit:    limit,
		logger:   logger,
	}
}

// register adds a new session, enforcing the limit. The session ID is a
// fresh UUID.
func (m *SessionManager) register(s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.limit > 0 && len(m.sessions) >= m.limit {
		return ErrMaxSessionsReached
	}
	m.sessions[s.ID] = s
	middleware.RecordSessionOpen()
	return nil
}

// NewSessionID generates a session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// Get returns a session by ID, or nil.
func (m *SessionManager) Get(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[id]
}

// remove drops a session from tracking.
func (m *SessionManager) remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// Count returns the number of active sessions.
func (m *SessionManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Shutdown closes every session, notifying clients first.
func (m *SessionManager) Shutdown() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.sendClose(protocol.CloseServerShutdown, "server shutting down")
		s.Close()
	}

	if len(sessions) > 0 {
		m.logger.Info("closed sessions on shutdown", "count", len(sessions))
	}
}

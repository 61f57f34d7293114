package server

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultSessionTimeout is how long an idle streamable HTTP session is kept.
const DefaultSessionTimeout = 24 * time.Hour

const sessionIDPrefix = "boxmcp-session-"

// sessionInfo tracks session metadata for cleanup
type sessionInfo struct {
	lastAccess time.Time
}

// SessionIDManager issues and tracks the Mcp-Session-Id values of the
// streamable HTTP transport. Sessions idle for longer than the timeout are
// reported as terminated, which makes clients initialize a new one.
type SessionIDManager struct {
	sessions       map[string]*sessionInfo
	terminated     map[string]time.Time // Ended sessions, kept for one more timeout
	mu             sync.Mutex
	cleanupTicker  *time.Ticker
	cleanupDone    chan struct{}
	stopOnce       sync.Once
	sessionTimeout time.Duration
	logger         *slog.Logger
	now            func() time.Time
}

// NewSessionIDManager creates a session manager with the default timeout.
func NewSessionIDManager() *SessionIDManager {
	return NewSessionIDManagerWithLogger(DefaultSessionTimeout, slog.Default())
}

// NewSessionIDManagerWithLogger creates a session manager with a custom
// timeout and logger and starts its cleanup loop.
func NewSessionIDManagerWithLogger(timeout time.Duration, logger *slog.Logger) *SessionIDManager {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = DefaultSessionTimeout
	}

	cleanupEvery := 10 * time.Minute
	if timeout < cleanupEvery {
		cleanupEvery = timeout
	}

	m := &SessionIDManager{
		sessions:       make(map[string]*sessionInfo),
		terminated:     make(map[string]time.Time),
		cleanupTicker:  time.NewTicker(cleanupEvery),
		cleanupDone:    make(chan struct{}),
		sessionTimeout: timeout,
		logger:         logger,
		now:            time.Now,
	}

	go m.cleanupExpiredSessions()

	return m
}

// Generate creates a new session.
func (m *SessionIDManager) Generate() string {
	id := sessionIDPrefix + uuid.NewString()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = &sessionInfo{lastAccess: m.now()}
	return id
}

// Validate checks a session ID sent by a client and refreshes its idle timer.
func (m *SessionIDManager) Validate(sessionID string) (isTerminated bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.terminated[sessionID]; ok {
		return true, nil
	}
	info, ok := m.sessions[sessionID]
	if !ok {
		return false, fmt.Errorf("invalid session id: %s", sessionID)
	}
	if m.now().Sub(info.lastAccess) > m.sessionTimeout {
		m.expire(sessionID)
		return true, nil
	}
	info.lastAccess = m.now()
	return false, nil
}

// Terminate ends a session on the client's request.
func (m *SessionIDManager) Terminate(sessionID string) (isNotAllowed bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[sessionID]; !ok {
		if _, ok := m.terminated[sessionID]; ok {
			return false, nil
		}
		return false, fmt.Errorf("invalid session id: %s", sessionID)
	}
	m.expire(sessionID)
	return false, nil
}

// ActiveSessions returns the number of live sessions.
func (m *SessionIDManager) ActiveSessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// expire must be called with mu held.
func (m *SessionIDManager) expire(sessionID string) {
	delete(m.sessions, sessionID)
	m.terminated[sessionID] = m.now()
}

// cleanupExpiredSessions periodically removes expired sessions
func (m *SessionIDManager) cleanupExpiredSessions() {
	for {
		select {
		case <-m.cleanupTicker.C:
			if n := m.removeExpired(); n > 0 {
				m.logger.Info("cleaned up expired sessions", "count", n)
			}
		case <-m.cleanupDone:
			return
		}
	}
}

func (m *SessionIDManager) removeExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	expired := 0
	for sessionID, info := range m.sessions {
		if now.Sub(info.lastAccess) > m.sessionTimeout {
			m.expire(sessionID)
			expired++
		}
	}
	for sessionID, at := range m.terminated {
		if now.Sub(at) > m.sessionTimeout {
			delete(m.terminated, sessionID)
		}
	}
	return expired
}

// Stop stops the session cleanup goroutine
func (m *SessionIDManager) Stop() {
	m.stopOnce.Do(func() {
		m.cleanupTicker.Stop()
		close(m.cleanupDone)
	})
}

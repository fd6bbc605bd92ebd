package whatsapp

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// sessionTTL bounds how long an operator's last moto is remembered.
const sessionTTL = 30 * time.Minute

// Session is what we remember about one operator between messages.
type Session struct {
	LastMotoID string
	UpdatedAt  time.Time
}

// SessionManager remembers the last moto each operator addressed, so follow-up commands
// such as "/release" can omit it.
type SessionManager struct {
	sessions  map[string]Session
	clock     clockwork.Clock
	mu        sync.RWMutex
	lastSweep time.Time
}

// NewSessionManager creates a new session manager.
func NewSessionManager(clock clockwork.Clock) *SessionManager {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &SessionManager{
		sessions:  make(map[string]Session),
		clock:     clock,
		lastSweep: clock.Now(),
	}
}

// LastMoto returns the moto the operator addressed recently, if any.
func (sm *SessionManager) LastMoto(userID string) (string, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	state, exists := sm.sessions[userID]
	if !exists || sm.clock.Since(state.UpdatedAt) > sessionTTL {
		return "", false
	}
	return state.LastMotoID, true
}

// Remember records the moto the operator just addressed. Expired sessions are
// dropped at most once per sessionTTL.
func (sm *SessionManager) Remember(userID, motoID string) {
	now := sm.clock.Now()

	sm.mu.Lock()
	defer sm.mu.Unlock()
	if now.Sub(sm.lastSweep) > sessionTTL {
		for id, state := range sm.sessions {
			if now.Sub(state.UpdatedAt) > sessionTTL {
				delete(sm.sessions, id)
			}
		}
		sm.lastSweep = now
	}
	sm.sessions[userID] = Session{LastMotoID: motoID, UpdatedAt: now}
}

// ClearSession removes a user's session.
func (sm *SessionManager) ClearSession(userID string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	delete(sm.sessions, userID)
}

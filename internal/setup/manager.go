package setup

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"guild-relay-go/internal/model"
)

// Manager owns the table of active setup sessions. It is the single source
// of truth for "is a wizard active for guild G". All table access happens
// under one coarse lock; manager operations are short and never block on I/O.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	gauge    prometheus.Gauge
}

// NewManager creates a session manager with the given idle TTL. The gauge
// tracks the active-session count and may be nil.
func NewManager(ttl time.Duration, gauge prometheus.Gauge) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		gauge:    gauge,
	}
}

// SessionUpdate enumerates the mutable session fields. Only set fields are
// applied.
type SessionUpdate struct {
	CurrentRule *RuleDraft
	AppendRule  *model.ForwardRule
}

// CreateSession returns the guild's unexpired session if one exists
// (regardless of which user asks), or creates a fresh one.
func (m *Manager) CreateSession(guildID, userID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.sessions[guildID]; ok {
		if !existing.IsExpired(m.ttl) {
			return existing
		}
		delete(m.sessions, guildID)
	}

	session := newSession(guildID, userID)
	m.sessions[guildID] = session
	m.updateGauge()
	return session
}

// GetSession returns the guild's active session, lazily evicting an expired
// one. Returns nil when no live session exists.
func (m *Manager) GetSession(guildID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[guildID]
	if !ok {
		return nil
	}
	if session.IsExpired(m.ttl) {
		delete(m.sessions, guildID)
		m.updateGauge()
		return nil
	}
	return session
}

// DraftSnapshot returns a copy of the guild's current draft rule, or nil
// when the guild has no session or the flow has not started yet.
func (m *Manager) DraftSnapshot(guildID string) *RuleDraft {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[guildID]
	if !ok || session.CurrentRule == nil {
		return nil
	}
	draft := *session.CurrentRule
	return &draft
}

// MutateDraft applies fn to the guild's draft under the table lock, swaps
// the mutated copy in and refreshes activity. Returns a copy of the result,
// or nil when no session exists.
func (m *Manager) MutateDraft(guildID string, fn func(*RuleDraft)) *RuleDraft {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[guildID]
	if !ok {
		return nil
	}

	var draft RuleDraft
	if session.CurrentRule != nil {
		draft = *session.CurrentRule
	}
	fn(&draft)
	session.CurrentRule = &draft
	session.touch()

	out := draft
	return &out
}

// UpdateSession applies an update to the guild's session and refreshes its
// activity timestamp. Returns false when no session exists.
func (m *Manager) UpdateSession(guildID string, update SessionUpdate) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[guildID]
	if !ok {
		return false
	}

	if update.CurrentRule != nil {
		session.CurrentRule = update.CurrentRule
	}
	if update.AppendRule != nil {
		session.ForwardingRules = append(session.ForwardingRules, *update.AppendRule)
	}
	session.touch()
	return true
}

// CleanupSession removes the guild's session. Returns false if none existed.
func (m *Manager) CleanupSession(guildID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[guildID]; !ok {
		return false
	}
	delete(m.sessions, guildID)
	m.updateGauge()
	return true
}

// CleanupExpiredSessions removes every expired session and returns how many
// were dropped. Called periodically by the scheduler.
func (m *Manager) CleanupExpiredSessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := m.removeExpired()
	if n > 0 {
		m.updateGauge()
		logrus.Infof("Cleaned up %d expired setup sessions", n)
	}
	return n
}

// Count returns the number of live sessions. Stale entries that have not
// been swept yet are evicted first so they never inflate the count.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.removeExpired() > 0 {
		m.updateGauge()
	}
	return len(m.sessions)
}

func (m *Manager) removeExpired() int {
	var expired []string
	for guildID, session := range m.sessions {
		if session.IsExpired(m.ttl) {
			expired = append(expired, guildID)
		}
	}
	for _, guildID := range expired {
		delete(m.sessions, guildID)
	}
	return len(expired)
}

// updateGauge publishes the live-session count, skipping entries that have
// expired but not been evicted yet.
func (m *Manager) updateGauge() {
	if m.gauge == nil {
		return
	}
	live := 0
	for _, session := range m.sessions {
		if !session.IsExpired(m.ttl) {
			live++
		}
	}
	m.gauge.Set(float64(live))
}

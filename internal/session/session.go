// Package session manages advising conversations: UUID-identified sessions
// with bounded history, idle eviction, and usage counters.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/coursewise/advisor-go/internal/catalog"
	apperrors "github.com/coursewise/advisor-go/internal/errors"
	"github.com/coursewise/advisor-go/internal/logger"
	"github.com/coursewise/advisor-go/internal/metrics"
)

// Role labels who produced a conversation turn.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdvisor Role = "advisor"
)

// Turn is one exchange in a conversation.
type Turn struct {
	Role   Role
	Text   string
	Intent string // set on advisor turns
	At     time.Time
}

// Session is one advising conversation. Profile updates and history appends
// go through the Manager so eviction and counters stay consistent.
type Session struct {
	ID        string
	Profile   catalog.StudentProfile
	CreatedAt time.Time

	mu            sync.Mutex
	history       []Turn
	lastActive    time.Time
	queries       int
	narratorCalls int
}

// Config controls session lifecycle.
type Config struct {
	TTL             time.Duration // Idle time before eviction
	HistoryLimit    int           // Turns kept per session
	CleanupInterval time.Duration // How often the eviction loop runs
}

// Stats is a point-in-time usage summary across all sessions.
type Stats struct {
	ActiveSessions int `json:"active_sessions"`
	TotalCreated   int `json:"total_created"`
	TotalQueries   int `json:"total_queries"`
	NarratorCalls  int `json:"narrator_calls"`
}

// Manager owns all live sessions. Safe for concurrent use.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	config   Config
	logger   *logger.Logger
	metrics  *metrics.Metrics
	stopCh   chan struct{}
	stopOnce sync.Once

	totalCreated int
	totalQueries int
	totalLLM     int
}

// NewManager creates a session manager and starts its eviction loop.
// Call Stop on shutdown. Metrics may be nil.
func NewManager(cfg Config, log *logger.Logger, m *metrics.Metrics) *Manager {
	if cfg.TTL <= 0 {
		cfg.TTL = 2 * time.Hour
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 20
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 10 * time.Minute
	}
	if log == nil {
		log = logger.New("info")
	}

	mgr := &Manager{
		sessions: make(map[string]*Session),
		config:   cfg,
		logger:   log.WithModule("session"),
		metrics:  m,
		stopCh:   make(chan struct{}),
	}

	go mgr.evictionLoop()

	return mgr
}

// Create starts a new session for the given profile and returns it.
func (mgr *Manager) Create(profile catalog.StudentProfile) *Session {
	now := time.Now()
	s := &Session{
		ID:         uuid.NewString(),
		Profile:    profile,
		CreatedAt:  now,
		lastActive: now,
	}

	mgr.mu.Lock()
	mgr.sessions[s.ID] = s
	mgr.totalCreated++
	active := len(mgr.sessions)
	mgr.mu.Unlock()

	if mgr.metrics != nil {
		mgr.metrics.RecordSessionCreated()
		mgr.metrics.SetActiveSessions(active)
	}
	mgr.logger.WithField("session_id", s.ID).Debug("Session created")

	return s
}

// Get returns the session with the given id, refreshing its idle timer.
func (mgr *Manager) Get(id string) (*Session, error) {
	mgr.mu.RLock()
	s, ok := mgr.sessions[id]
	mgr.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, apperrors.ErrNotFound)
	}

	s.mu.Lock()
	s.lastActive = time.Now()
	s.mu.Unlock()

	return s, nil
}

// Delete removes a session. Missing ids are ignored.
func (mgr *Manager) Delete(id string) {
	mgr.mu.Lock()
	delete(mgr.sessions, id)
	active := len(mgr.sessions)
	mgr.mu.Unlock()

	if mgr.metrics != nil {
		mgr.metrics.SetActiveSessions(active)
	}
}

// Count returns the number of live sessions.
func (mgr *Manager) Count() int {
	mgr.mu.RLock()
	defer mgr.mu.RUnlock()
	return len(mgr.sessions)
}

// RecordExchange appends a student/advisor turn pair to the session and
// bumps its query counter. History is trimmed to the configured limit,
// oldest turns first.
func (mgr *Manager) RecordExchange(s *Session, query, intent, response string) {
	if s == nil {
		return
	}

	now := time.Now()

	s.mu.Lock()
	s.history = append(s.history,
		Turn{Role: RoleStudent, Text: query, At: now},
		Turn{Role: RoleAdvisor, Text: response, Intent: intent, At: now},
	)
	if over := len(s.history) - mgr.config.HistoryLimit; over > 0 {
		s.history = append([]Turn(nil), s.history[over:]...)
	}
	s.queries++
	s.lastActive = now
	s.mu.Unlock()

	mgr.mu.Lock()
	mgr.totalQueries++
	mgr.mu.Unlock()
}

// RecordNarratorCall bumps the session's narrator usage counter.
func (mgr *Manager) RecordNarratorCall(s *Session) {
	if s == nil {
		return
	}

	s.mu.Lock()
	s.narratorCalls++
	s.mu.Unlock()

	mgr.mu.Lock()
	mgr.totalLLM++
	mgr.mu.Unlock()
}

// History returns a copy of the session's conversation turns.
func (s *Session) History() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Turn, len(s.history))
	copy(out, s.history)
	return out
}

// Queries returns how many exchanges this session has recorded.
func (s *Session) Queries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queries
}

// NarratorCalls returns how many narrator calls this session has made.
func (s *Session) NarratorCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.narratorCalls
}

// LastActive returns the session's last activity time.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Stats returns aggregate usage across all sessions.
func (mgr *Manager) Stats() Stats {
	mgr.mu.RLock()
	defer mgr.mu.RUnlock()
	return Stats{
		ActiveSessions: len(mgr.sessions),
		TotalCreated:   mgr.totalCreated,
		TotalQueries:   mgr.totalQueries,
		NarratorCalls:  mgr.totalLLM,
	}
}

// evictionLoop periodically removes idle sessions.
func (mgr *Manager) evictionLoop() {
	ticker := time.NewTicker(mgr.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-mgr.stopCh:
			return
		case <-ticker.C:
			mgr.evictIdle()
		}
	}
}

// evictIdle removes sessions idle past the TTL.
func (mgr *Manager) evictIdle() {
	cutoff := time.Now().Add(-mgr.config.TTL)
	var evicted int

	mgr.mu.Lock()
	for id, s := range mgr.sessions {
		if s.LastActive().Before(cutoff) {
			delete(mgr.sessions, id)
			evicted++
		}
	}
	active := len(mgr.sessions)
	mgr.mu.Unlock()

	if evicted > 0 {
		mgr.logger.WithField("evicted", evicted).Debug("Idle sessions evicted")
	}
	if mgr.metrics != nil {
		mgr.metrics.SetActiveSessions(active)
	}
}

// Stop terminates the eviction loop. Safe to call multiple times.
func (mgr *Manager) Stop() {
	mgr.stopOnce.Do(func() { close(mgr.stopCh) })
}

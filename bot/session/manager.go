// Package session tracks per-user conversational state with activity
// timestamps. State is cached in memory and written through to the
// repository so menu position survives restarts; everything here is
// advisory and dispatch never depends on it.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/botfoundry/menubot/bot"
)

// Manager caches sessions in memory and writes them through to a
// repository. The zero timeout disables expiry.
type Manager struct {
	mu       sync.Mutex
	sessions map[int64]*bot.UserSession
	repo     bot.SessionRepository
	timeout  time.Duration
	logger   bot.Logger
}

// New creates a session manager. repo may be nil for memory-only use.
func New(repo bot.SessionRepository, timeout time.Duration, logger bot.Logger) *Manager {
	return &Manager{
		sessions: make(map[int64]*bot.UserSession),
		repo:     repo,
		timeout:  timeout,
		logger:   logger,
	}
}

// Touch returns the session for a user, creating or reloading it as
// needed, and refreshes the last-activity timestamp.
func (m *Manager) Touch(ctx context.Context, userID int64, username string) *bot.UserSession {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[userID]
	if !ok {
		if m.repo != nil {
			if stored, err := m.repo.Get(ctx, userID); err == nil && stored != nil {
				s = stored
			} else if err != nil && m.logger != nil {
				m.logger.Warn("session load failed", "user_id", userID, "error", err)
			}
		}
		if s == nil {
			now := time.Now()
			s = &bot.UserSession{UserID: userID, CreatedAt: now, LastActivity: now}
			if m.logger != nil {
				m.logger.Debug("session created", "user_id", userID)
			}
		}
		m.sessions[userID] = s
	}

	if username != "" {
		s.Username = username
	}
	s.Touch()
	m.persist(ctx, s)
	return s
}

// SetMenu records the menu a user is currently looking at.
func (m *Manager) SetMenu(ctx context.Context, userID int64, menuName string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[userID]
	if !ok {
		return
	}
	s.CurrentMenu = menuName
	s.Touch()
	m.persist(ctx, s)
}

// SetState records the conversation state for a user.
func (m *Manager) SetState(ctx context.Context, userID int64, state string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[userID]
	if !ok {
		return
	}
	s.State = state
	s.Touch()
	m.persist(ctx, s)
}

// Len returns the number of cached sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep drops sessions inactive for longer than the timeout, in memory
// and in the repository. It returns how many cached sessions were
// removed.
func (m *Manager) Sweep(ctx context.Context) int {
	if m.timeout <= 0 {
		return 0
	}
	cutoff := time.Now().Add(-m.timeout)

	m.mu.Lock()
	removed := 0
	for id, s := range m.sessions {
		if s.ExpiredAt(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	m.mu.Unlock()

	if m.repo != nil {
		if n, err := m.repo.DeleteInactiveBefore(ctx, cutoff); err != nil {
			if m.logger != nil {
				m.logger.Warn("session sweep failed", "error", err)
			}
		} else if n > 0 && m.logger != nil {
			m.logger.Info("expired sessions removed", "count", n)
		}
	}
	return removed
}

// Run sweeps expired sessions on the given interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.Sweep(ctx)
		}
	}
}

// persist is called with the mutex held.
func (m *Manager) persist(ctx context.Context, s *bot.UserSession) {
	if m.repo == nil {
		return
	}
	if err := m.repo.Save(ctx, s); err != nil && m.logger != nil {
		m.logger.Warn("session save failed", "user_id", s.UserID, "error", err)
	}
}

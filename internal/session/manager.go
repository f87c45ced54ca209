// Package session implements cookie-backed server-side sessions persisted
// in the application's database, with one-shot flash messages and a
// throttled sliding-expiry touch policy.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"wanderlust/internal/domain"
	"wanderlust/internal/repository"
)

const (
	// CookieName is the client cookie carrying the opaque session token.
	CookieName = "session"
	// TTL is the fixed server-side session lifetime.
	TTL = 7 * 24 * time.Hour
	// TouchAfter throttles sliding-expiry refreshes: an otherwise clean
	// session is only rewritten after this much inactivity.
	TouchAfter = 24 * time.Hour
)

// Session wraps one request's session record and tracks whether it needs
// to be written back.
type Session struct {
	rec   *domain.Session
	isNew bool
	dirty bool
}

func (s *Session) Token() string { return s.rec.Token }

func (s *Session) UserID() int64 { return s.rec.UserID }

// SetUserID records the authenticated user reference in the session.
func (s *Session) SetUserID(id int64) {
	if s.rec.UserID == id {
		return
	}
	s.rec.UserID = id
	s.dirty = true
}

// ClearUserID drops the user reference, leaving the session anonymous.
func (s *Session) ClearUserID() {
	if s.rec.UserID == 0 {
		return
	}
	s.rec.UserID = 0
	s.dirty = true
}

// Flash queues a one-time message for the next rendered page.
func (s *Session) Flash(kind domain.FlashKind, message string) {
	s.rec.Data.Flashes = append(s.rec.Data.Flashes, domain.Flash{Kind: kind, Message: message})
	s.dirty = true
}

// DrainFlashes returns all queued flash messages and clears the queue.
// Each queued message is observed exactly once.
func (s *Session) DrainFlashes() []domain.Flash {
	flashes := s.rec.Data.Flashes
	if len(flashes) == 0 {
		return nil
	}
	s.rec.Data.Flashes = nil
	s.dirty = true
	return flashes
}

// SetRedirect remembers where to send the user after a successful login.
func (s *Session) SetRedirect(target string) {
	if s.rec.Data.RedirectTo == target {
		return
	}
	s.rec.Data.RedirectTo = target
	s.dirty = true
}

// TakeRedirect consumes the stored post-login target, if any.
func (s *Session) TakeRedirect() string {
	target := s.rec.Data.RedirectTo
	if target == "" {
		return ""
	}
	s.rec.Data.RedirectTo = ""
	s.dirty = true
	return target
}

// Manager loads, persists and destroys sessions. Store failures degrade
// session persistence for the affected request; they are logged and never
// escalate into a request error.
type Manager struct {
	sessions repository.SessionRepository
	users    repository.UserRepository
	logger   *logrus.Logger
	now      func() time.Time
}

func NewManager(sessions repository.SessionRepository, users repository.UserRepository, logger *logrus.Logger) *Manager {
	return &Manager{
		sessions: sessions,
		users:    users,
		logger:   logger,
		now:      time.Now,
	}
}

// Load restores the session for the given cookie token. A missing,
// expired or unreadable session yields a fresh anonymous one.
func (m *Manager) Load(ctx context.Context, token string) *Session {
	if token == "" {
		return m.fresh()
	}

	rec, err := m.sessions.Get(ctx, token)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			m.logger.WithError(err).Warn("session store read failed")
		}
		return m.fresh()
	}
	if rec.Expired(m.now()) {
		if err := m.sessions.Delete(ctx, rec.Token); err != nil {
			m.logger.WithError(err).Warn("expired session cleanup failed")
		}
		return m.fresh()
	}

	return &Session{rec: rec}
}

// Save writes the session back: new sessions are created, dirty ones
// rewritten, and clean ones touched only once TouchAfter inactivity has
// elapsed. Failures are logged, never returned to the request.
func (m *Manager) Save(ctx context.Context, s *Session) {
	now := m.now()

	switch {
	case s.isNew:
		s.rec.CreatedAt = now
		s.rec.UpdatedAt = now
		s.rec.ExpiresAt = now.Add(TTL)
		if err := m.sessions.Create(ctx, s.rec); err != nil {
			m.logger.WithError(err).Warn("session store create failed")
			return
		}
		s.isNew = false
		s.dirty = false
	case s.dirty:
		s.rec.UpdatedAt = now
		s.rec.ExpiresAt = now.Add(TTL)
		if err := m.sessions.Save(ctx, s.rec); err != nil {
			m.logger.WithError(err).Warn("session store write failed")
			return
		}
		s.dirty = false
	case now.Sub(s.rec.UpdatedAt) >= TouchAfter:
		s.rec.UpdatedAt = now
		s.rec.ExpiresAt = now.Add(TTL)
		if err := m.sessions.Touch(ctx, s.rec.Token, s.rec.UpdatedAt, s.rec.ExpiresAt); err != nil {
			m.logger.WithError(err).Warn("session touch failed")
		}
	}
}

// Destroy deletes the persisted record and renews the in-memory session
// with a fresh token, empty data and no user. The caller is responsible
// for re-issuing the cookie.
func (m *Manager) Destroy(ctx context.Context, s *Session) {
	if !s.isNew {
		if err := m.sessions.Delete(ctx, s.rec.Token); err != nil {
			m.logger.WithError(err).Warn("session delete failed")
		}
	}
	fresh := m.fresh()
	*s = *fresh
}

// CurrentUser resolves the session's user reference to a full record. A
// dangling reference (user deleted out-of-band) resolves to nil and the
// orphaned reference is cleared.
func (m *Manager) CurrentUser(ctx context.Context, s *Session) *domain.User {
	id := s.UserID()
	if id == 0 {
		return nil
	}
	user, err := m.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.ClearUserID()
			return nil
		}
		m.logger.WithError(err).Warn("current user lookup failed")
		return nil
	}
	return user
}

func (m *Manager) fresh() *Session {
	return &Session{
		rec: &domain.Session{
			Token: uuid.NewString(),
		},
		isNew: true,
		dirty: true,
	}
}

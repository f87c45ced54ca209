package domain

import "time"

// FlashKind categorizes a flash message.
type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
)

// Flash is a one-time notification surfaced on the next rendered page only.
type Flash struct {
	Kind    FlashKind `json:"kind"`
	Message string    `json:"message"`
}

// SessionData is the mutable payload stored inside a session record.
type SessionData struct {
	Flashes    []Flash `json:"flashes,omitempty"`
	RedirectTo string  `json:"redirect_to,omitempty"`
}

// Session is a server-side session record keyed by an opaque token held
// in a client cookie. UserID is zero for anonymous sessions.
type Session struct {
	Token     string
	UserID    int64
	Data      SessionData
	CreatedAt time.Time
	UpdatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is past its expiry at the given time.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

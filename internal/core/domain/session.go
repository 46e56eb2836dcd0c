package domain

import "time"

// Session is a server-side login. Deleting it revokes every token that points at it.
type Session struct {
	ID        string
	UserID    uint
	Remember  bool
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

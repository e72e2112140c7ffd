package entities

import "time"

// User is an account that owns holdings and history records
type User struct {
	UserID       string    `db:"user_id"`
	Email        string    `db:"email"`
	Name         string    `db:"name"`
	Picture      *string   `db:"picture"`
	PasswordHash *string   `db:"password_hash"` // nil for accounts created through session exchange
	CreatedAt    time.Time `db:"created_at"`
}

// Session binds a bearer token to a user until ExpiresAt
type Session struct {
	Token     string    `db:"session_token"`
	UserID    string    `db:"user_id"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}

// Expired reports whether the session is no longer valid at now
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt.Before(now)
}

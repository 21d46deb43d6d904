package shares

import "time"

// Read strategies for a share.
const (
	StrategyOneRead      = "oneread"
	StrategyMultipleRead = "multipleread"
)

// Share is an anonymous, expiring, optionally password-protected encrypted
// text record. The ciphertext and IV are produced client-side; the server
// stores them opaquely and only enforces lifecycle rules.
type Share struct {
	ID           string
	UserID       string
	PasswordHash []byte // nil when the share has no password
	Strategy     string
	MaxDate      time.Time
	IV           string
	Content      string
	CreatedAt    time.Time
}

// Protected reports whether fetching the share requires a password.
func (s *Share) Protected() bool {
	return len(s.PasswordHash) > 0
}

// Expired reports whether the share is past its max date at the given time.
func (s *Share) Expired(now time.Time) bool {
	return now.After(s.MaxDate)
}

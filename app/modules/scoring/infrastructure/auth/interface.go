package scoringauth

import "time"

// Claims identifies the caller of the scoring API.
type Claims struct {
	Subject   string
	CanWrite  bool
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Provider defines the interface for JWT token operations.
type Provider interface {
	// GenerateToken creates a signed token for the subject.
	GenerateToken(subject string, canWrite bool, ttl time.Duration) (string, error)

	// ValidateToken validates a token and returns its claims if valid.
	ValidateToken(tokenString string) (*Claims, error)
}

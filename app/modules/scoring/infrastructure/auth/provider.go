package scoringauth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Issuer is the iss claim of scoring API tokens.
const Issuer = "spicy-scoring"

type scoringClaims struct {
	jwt.RegisteredClaims
	Write bool `json:"write,omitempty"`
}

type provider struct {
	secret []byte
	now    func() time.Time
}

// NewProvider creates an HS256 provider.
func NewProvider(secret string) (Provider, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	return &provider{secret: []byte(secret), now: time.Now}, nil
}

// GenerateToken creates a signed JWT token for the subject.
func (p *provider) GenerateToken(subject string, canWrite bool, ttl time.Duration) (string, error) {
	now := p.now()
	claims := &scoringClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    Issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Write: canWrite,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken validates a JWT token and returns its claims if valid.
func (p *provider) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &scoringClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSignature
		}
		return p.secret, nil
	}, jwt.WithIssuer(Issuer), jwt.WithTimeFunc(p.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, ErrInvalidSignature
		}
		return nil, ErrInvalidToken
	}

	sc, ok := token.Claims.(*scoringClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims := &Claims{Subject: sc.Subject, CanWrite: sc.Write}
	if sc.IssuedAt != nil {
		claims.IssuedAt = sc.IssuedAt.Time
	}
	if sc.ExpiresAt != nil {
		claims.ExpiresAt = sc.ExpiresAt.Time
	}
	return claims, nil
}

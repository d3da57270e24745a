package scoringauth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-at-least-32-chars-long!!"

func TestNewProvider_EmptySecret(t *testing.T) {
	if _, err := NewProvider(""); !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret, got %v", err)
	}
}

func TestProvider_GenerateAndValidateToken(t *testing.T) {
	p, err := NewProvider(testSecret)
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	other, _ := NewProvider("another-secret-at-least-32-chars!!")

	tests := []struct {
		name        string
		subject     string
		canWrite    bool
		ttl         time.Duration
		validator   Provider
		expectedErr error
	}{
		{name: "read only", subject: "scorer-1", ttl: time.Hour, validator: p},
		{name: "writer", subject: "admin", canWrite: true, ttl: time.Hour, validator: p},
		{name: "expired token", subject: "scorer-1", ttl: -time.Hour, validator: p, expectedErr: ErrExpiredToken},
		{name: "wrong secret", subject: "scorer-1", ttl: time.Hour, validator: other, expectedErr: ErrInvalidSignature},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := p.GenerateToken(tt.subject, tt.canWrite, tt.ttl)
			if err != nil {
				t.Fatalf("GenerateToken: %v", err)
			}

			claims, err := tt.validator.ValidateToken(token)
			if tt.expectedErr != nil {
				if !errors.Is(err, tt.expectedErr) {
					t.Fatalf("expected %v, got %v", tt.expectedErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateToken: %v", err)
			}
			if claims.Subject != tt.subject {
				t.Errorf("expected subject %q, got %q", tt.subject, claims.Subject)
			}
			if claims.CanWrite != tt.canWrite {
				t.Errorf("expected canWrite %v, got %v", tt.canWrite, claims.CanWrite)
			}
			if !claims.ExpiresAt.After(claims.IssuedAt) {
				t.Errorf("expected expiry after issue time, got %v <= %v", claims.ExpiresAt, claims.IssuedAt)
			}
		})
	}
}

func TestProvider_ValidateToken_Rejects(t *testing.T) {
	p, _ := NewProvider(testSecret)

	foreignIssuer := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    "someone-else",
		Subject:   "scorer-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signedForeign, err := foreignIssuer.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Issuer: Issuer, Subject: "x"})
	signedNone, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}

	for name, token := range map[string]string{
		"garbage":        "not.a.token",
		"foreign issuer": signedForeign,
		"alg none":       signedNone,
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := p.ValidateToken(token); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

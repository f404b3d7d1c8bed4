package http

import (
	"crypto/rand"
	"net/http"
	"strings"
	"time"

	"ai-quiz-room/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// TokenManager issues and verifies the bearer tokens binding a client to its
// registered name. The HS256 secret is generated per process: tokens expire
// with the process, same as the room state they refer to.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager() (*TokenManager, error) {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, err
	}
	return &TokenManager{secret: secret, ttl: 24 * time.Hour, now: time.Now}, nil
}

// Issue signs a token whose subject is the registered name.
func (m *TokenManager) Issue(name string) (string, error) {
	now := m.now()
	claims := jwt.RegisteredClaims{
		Subject:   name,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Verify returns the name bound to the token.
func (m *TokenManager) Verify(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidToken
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return m.now() }))
	if err != nil || !parsed.Valid {
		return "", domain.ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", domain.ErrInvalidToken
	}
	return claims.Subject, nil
}

// bearerName extracts and verifies the Authorization header of a request.
func (m *TokenManager) bearerName(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", domain.ErrInvalidToken
	}
	return m.Verify(strings.TrimPrefix(header, "Bearer "))
}

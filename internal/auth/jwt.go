package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carried by a client token.
type Claims struct {
	SessionID string `json:"session_id"`
	Role      string `json:"role"` // "client"
	jwt.RegisteredClaims
}

// Tokens issues and validates client tokens with a shared HMAC secret.
// When the secret is empty, validation is disabled and connections are
// anonymous.
type Tokens struct {
	secret []byte
}

func NewTokens(secret string) *Tokens {
	return &Tokens{secret: []byte(secret)}
}

// Enabled reports whether token auth is configured.
func (t *Tokens) Enabled() bool {
	return len(t.secret) > 0
}

// GenerateClientToken issues a token bound to a session id, valid 24h.
func (t *Tokens) GenerateClientToken(sessionID string) (string, error) {
	claims := &Claims{
		SessionID: sessionID,
		Role:      "client",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// ValidateToken parses and verifies a token, returning its claims.
func (t *Tokens) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrInvalidKey
}

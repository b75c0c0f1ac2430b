package authmaster

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// GenerateID synthesizes a user identifier: the provider prefix, an
// epoch-millisecond timestamp and a random suffix. Collision-resistant
// for session purposes, not a security boundary.
func GenerateID(prefix string) string {
	suffix, _, _ := strings.Cut(uuid.NewString(), "-")
	return fmt.Sprintf("%s_%d_%s", prefix, time.Now().UnixMilli(), suffix)
}

// GenerateToken synthesizes an opaque access token from a timestamp and
// random bytes. Like GenerateID, these are demo-grade session handles,
// not real security tokens.
func GenerateToken(prefix string) string {
	b := make([]byte, 12)
	rand.Read(b)
	return fmt.Sprintf("%s_%d_%s", prefix, time.Now().UnixMilli(), hex.EncodeToString(b))
}

// SessionClaims are the claims embedded in a signed session token.
type SessionClaims struct {
	Email    string `json:"email"`
	Provider string `json:"provider"`
	jwt.RegisteredClaims
}

// SignSessionToken mints an HS256 JWT for the user, valid for ttl.
func SignSessionToken(user *AuthUser, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		Email:    user.Email,
		Provider: string(user.Provider),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    "authmaster",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// ParseSessionToken validates a signed session token and returns its
// claims.
func ParseSessionToken(tokenString, secret string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid session token: %w", err)
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid session token claims")
	}
	return claims, nil
}

// mintAccessToken produces the access token recorded alongside a freshly
// acquired identity: a signed JWT when TokenSecret is configured, an
// opaque token otherwise.
func (s *Store) mintAccessToken(user *AuthUser) string {
	if secret := s.config.TokenSecret; secret != "" {
		token, err := SignSessionToken(user, secret, time.Hour)
		if err == nil {
			return token
		}
		s.log.Warn("falling back to opaque token", "err", err)
	}
	return GenerateToken(string(user.Provider))
}

package identity

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kursadbilgin/applytrack/internal/domain"
)

// Claims carries the session token's subject, which is the user id.
type Claims struct {
	jwt.RegisteredClaims
}

// SessionVerifier validates HS256 session tokens issued by the identity provider.
type SessionVerifier struct {
	secret []byte
	now    func() time.Time
}

func NewSessionVerifier(secret string) (*SessionVerifier, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("session secret is required")
	}
	return &SessionVerifier{secret: []byte(secret), now: time.Now}, nil
}

// Verify returns the user id of a valid token. Every failure wraps domain.ErrAuth.
func (v *SessionVerifier) Verify(tokenString string) (string, error) {
	if v == nil {
		return "", fmt.Errorf("%w: session verifier is not initialized", domain.ErrAuth)
	}
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return "", fmt.Errorf("%w: missing session token", domain.ErrAuth)
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, v.key,
		jwt.WithTimeFunc(v.now),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("%w: session expired", domain.ErrAuth)
		}
		return "", fmt.Errorf("%w: invalid session token", domain.ErrAuth)
	}
	if !token.Valid {
		return "", fmt.Errorf("%w: invalid session token", domain.ErrAuth)
	}

	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return "", fmt.Errorf("%w: session token has no subject", domain.ErrAuth)
	}
	return subject, nil
}

func (v *SessionVerifier) key(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return v.secret, nil
}

// Issue signs a session token for userID. Used by tests and local tooling.
func (v *SessionVerifier) Issue(userID string, ttl time.Duration) (string, error) {
	if v == nil {
		return "", fmt.Errorf("session verifier is not initialized")
	}
	now := v.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

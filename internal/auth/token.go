package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/course-marketplace/internal/domain"
)

var (
	// ErrMissingToken is returned when no token was supplied.
	ErrMissingToken = errors.New("missing token")
	// ErrInvalidToken covers bad signatures, malformed tokens and wrong-class tokens.
	ErrInvalidToken = errors.New("invalid token")
)

// TokenManager issues and verifies HS256 session tokens, one signing key per principal class.
type TokenManager struct {
	keys map[domain.PrincipalClass][]byte
	ttl  time.Duration
	now  func() time.Time
}

// NewTokenManager builds a new manager. A zero ttl issues tokens without an expiry claim.
func NewTokenManager(userSecret, adminSecret string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		keys: map[domain.PrincipalClass][]byte{
			domain.PrincipalUser:  []byte(userSecret),
			domain.PrincipalAdmin: []byte(adminSecret),
		},
		ttl: ttl,
		now: time.Now,
	}
}

// Claims describes JWT payload. The subject is the principal id; the audience
// repeats the class the signing key belongs to.
type Claims struct {
	jwt.RegisteredClaims
}

// Issue builds and signs a token for the principal with the class's key.
func (tm *TokenManager) Issue(principalID string, class domain.PrincipalClass) (string, error) {
	key, err := tm.key(class)
	if err != nil {
		return "", err
	}
	if principalID == "" {
		return "", errors.New("principal id required")
	}

	now := tm.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  principalID,
			Audience: jwt.ClaimStrings{class.String()},
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if tm.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(tm.ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(key)
}

// Verify checks the token against the class's key and returns the principal id.
func (tm *TokenManager) Verify(tokenStr string, class domain.PrincipalClass) (string, error) {
	if tokenStr == "" {
		return "", ErrMissingToken
	}
	key, err := tm.key(class)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(class.String()),
		jwt.WithTimeFunc(tm.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

func (tm *TokenManager) key(class domain.PrincipalClass) ([]byte, error) {
	key, ok := tm.keys[class]
	if !ok || len(key) == 0 {
		return nil, fmt.Errorf("no signing key for principal class %q", class)
	}
	return key, nil
}

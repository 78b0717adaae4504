package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taskauth/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL is the access token validity window.
const DefaultTokenTTL = time.Hour

var ErrEmptySecret = errors.New("jwt signing secret is empty")

// Verification failures. They are kept apart for logging and all match
// common.ErrUnauthenticated.
var (
	ErrTokenMalformed = fmt.Errorf("%w: malformed token", common.ErrUnauthenticated)
	ErrTokenSignature = fmt.Errorf("%w: bad token signature", common.ErrUnauthenticated)
	ErrTokenExpired   = fmt.Errorf("%w: token expired", common.ErrUnauthenticated)
	ErrTokenClaims    = fmt.Errorf("%w: invalid token claims", common.ErrUnauthenticated)
)

// TokenManager mints and verifies HS256 access tokens. It is immutable after
// construction and safe for concurrent use.
type TokenManager struct {
	secret []byte
	now    func() time.Time
}

// NewTokenManager returns a TokenManager signing with secret. There is no
// fallback key: an empty secret is an error.
func NewTokenManager(secret []byte) (*TokenManager, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	key := make([]byte, len(secret))
	copy(key, secret)
	return &TokenManager{secret: key, now: time.Now}, nil
}

// Issue returns a signed token for subject valid for ttl.
func (m *TokenManager) Issue(subject string, ttl time.Duration) (string, error) {
	now := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})

	tokenString, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return tokenString, nil
}

// Verify checks the signature, then expiry, then the subject, and returns the
// subject on success. No claims are returned from a failed verification.
func (m *TokenManager) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return "", classify(err)
	}

	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrTokenClaims)
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", fmt.Errorf("%w: subject is not a user id", ErrTokenClaims)
	}

	return claims.Subject, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrTokenMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrTokenSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	default:
		return ErrTokenClaims
	}
}

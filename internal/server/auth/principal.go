package auth

import (
	"errors"
	"fmt"
	"net/textproto"
	"strings"

	"github.com/dmitrijs2005/taskauth/internal/common"
)

var (
	ErrMissingCredentials = fmt.Errorf("%w: missing authorization", common.ErrUnauthenticated)
	ErrBadScheme          = fmt.Errorf("%w: unsupported authorization scheme", common.ErrUnauthenticated)
)

// TokenVerifier turns a bearer token into the subject it was issued to.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// ResolvePrincipal extracts "Bearer <token>" from the authorization entry of
// headers and verifies it. Both http.Header and gRPC metadata.MD can be
// passed; the key is matched case-insensitively. It performs no I/O.
//
// Any failure means "no principal". The returned error matches
// common.ErrUnauthenticated and is meant for logging only.
func ResolvePrincipal(v TokenVerifier, headers map[string][]string) (string, error) {
	token, err := BearerToken(headers)
	if err != nil {
		return "", err
	}
	return v.Verify(token)
}

// BearerToken returns the token from a single "Bearer <token>" authorization
// value.
func BearerToken(headers map[string][]string) (string, error) {
	value, ok := lookupFold(headers, common.AuthorizationHeaderName)
	if !ok || strings.TrimSpace(value) == "" {
		return "", ErrMissingCredentials
	}

	scheme, token, found := strings.Cut(strings.TrimSpace(value), " ")
	if !found || !strings.EqualFold(scheme, common.BearerScheme) {
		return "", ErrBadScheme
	}

	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", ErrMissingCredentials
	}
	return token, nil
}

// lookupFold prefers the canonical key (http.Header) and then the lower-case
// key (gRPC metadata) so the result does not depend on map order when a plain
// map carries both.
func lookupFold(headers map[string][]string, name string) (string, bool) {
	for _, k := range []string{textproto.CanonicalMIMEHeaderKey(name), strings.ToLower(name)} {
		if values := headers[k]; len(values) > 0 {
			return values[0], true
		}
	}
	for k, values := range headers {
		if strings.EqualFold(k, name) && len(values) > 0 {
			return values[0], true
		}
	}
	return "", false
}

// FailureReason names the cause of a ResolvePrincipal or Verify error for
// logs and metric labels.
func FailureReason(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrMissingCredentials):
		return "missing"
	case errors.Is(err, ErrBadScheme):
		return "bad_scheme"
	case errors.Is(err, ErrTokenMalformed):
		return "malformed"
	case errors.Is(err, ErrTokenSignature):
		return "signature"
	case errors.Is(err, ErrTokenExpired):
		return "expired"
	case errors.Is(err, ErrTokenClaims):
		return "claims"
	default:
		return "invalid"
	}
}

// Package auth verifies and issues bearer tokens and hashes user passwords.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"github.com/balcao/balcao/internal/model"
)

// ErrUnauthenticated is returned for any token that cannot be trusted:
// missing, malformed, badly signed, expired, or carrying unusable claims.
var ErrUnauthenticated = errors.New("unauthenticated")

// signingMethod is the only accepted JWT algorithm.
var signingMethod = jwtv5.SigningMethodHS256

// Verifier turns a bearer token into trusted claims.
type Verifier interface {
	Verify(token string) (model.Claims, error)
}

// tokenClaims is the signed payload of an access token.
type tokenClaims struct {
	Role string `json:"role"`
	jwtv5.RegisteredClaims
}

// Option configures a JWTVerifier or Issuer.
type Option func(*clock)

type clock struct {
	now func() time.Time
}

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(c *clock) {
		c.now = now
	}
}

func newClock(opts []Option) clock {
	c := clock{now: time.Now}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// JWTVerifier validates HS256 tokens signed with a shared secret.
// It holds no mutable state and is safe for concurrent use.
type JWTVerifier struct {
	secret []byte
	issuer string
	clock  clock
}

// NewJWTVerifier creates a verifier. If issuer is non-empty the iss claim must match.
func NewJWTVerifier(secret []byte, issuer string, opts ...Option) *JWTVerifier {
	return &JWTVerifier{
		secret: secret,
		issuer: issuer,
		clock:  newClock(opts),
	}
}

// Verify validates the token and extracts the subject and role.
// A token is expired once the current time reaches its exp claim.
func (v *JWTVerifier) Verify(token string) (model.Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return model.Claims{}, unauthenticated("missing token")
	}

	parserOpts := []jwtv5.ParserOption{
		jwtv5.WithValidMethods([]string{signingMethod.Alg()}),
		jwtv5.WithExpirationRequired(),
		jwtv5.WithTimeFunc(v.clock.now),
	}
	if v.issuer != "" {
		parserOpts = append(parserOpts, jwtv5.WithIssuer(v.issuer))
	}

	var tc tokenClaims
	parsed, err := jwtv5.ParseWithClaims(token, &tc, func(*jwtv5.Token) (any, error) {
		return v.secret, nil
	}, parserOpts...)
	if err != nil || !parsed.Valid {
		return model.Claims{}, unauthenticated(failureReason(err))
	}

	expiresAt := tc.ExpiresAt.Time
	if !v.clock.now().Before(expiresAt) {
		return model.Claims{}, unauthenticated("token expired")
	}

	if strings.TrimSpace(tc.Subject) == "" {
		return model.Claims{}, unauthenticated("missing subject")
	}

	role, err := model.ParseRole(tc.Role)
	if err != nil {
		return model.Claims{}, unauthenticated("unknown role")
	}

	return model.Claims{
		SubjectID: tc.Subject,
		Role:      role,
		ExpiresAt: expiresAt,
	}, nil
}

// failureReason maps jwt parse errors to a short reason for logs.
func failureReason(err error) string {
	switch {
	case err == nil:
		return "invalid token"
	case errors.Is(err, jwtv5.ErrTokenMalformed):
		return "malformed token"
	case errors.Is(err, jwtv5.ErrTokenSignatureInvalid), errors.Is(err, jwtv5.ErrTokenUnverifiable):
		return "invalid signature"
	case errors.Is(err, jwtv5.ErrTokenExpired):
		return "token expired"
	case errors.Is(err, jwtv5.ErrTokenRequiredClaimMissing):
		return "missing required claim"
	case errors.Is(err, jwtv5.ErrTokenInvalidIssuer):
		return "invalid issuer"
	case errors.Is(err, jwtv5.ErrTokenNotValidYet):
		return "token not valid yet"
	default:
		return "invalid token"
	}
}

func unauthenticated(reason string) error {
	return fmt.Errorf("%w: %s", ErrUnauthenticated, reason)
}

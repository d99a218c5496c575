package auth

import (
	"errors"
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/balcao/balcao/internal/model"
)

// ErrInvalidSubject is returned when issuing a token without a subject or role.
var ErrInvalidSubject = errors.New("token subject and role are required")

// Issuer signs access tokens accepted by JWTVerifier.
type Issuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	clock  clock
}

// NewIssuer creates an issuer producing tokens valid for ttl.
func NewIssuer(secret []byte, issuer string, ttl time.Duration, opts ...Option) *Issuer {
	return &Issuer{
		secret: secret,
		issuer: issuer,
		ttl:    ttl,
		clock:  newClock(opts),
	}
}

// Issue signs a token for subject with role, expiring after the configured TTL.
func (i *Issuer) Issue(subject string, role model.Role) (string, time.Time, error) {
	return i.IssueUntil(subject, role, i.clock.now().Add(i.ttl))
}

// IssueUntil signs a token that expires at expiresAt.
func (i *Issuer) IssueUntil(subject string, role model.Role, expiresAt time.Time) (string, time.Time, error) {
	if subject == "" || !role.IsValid() {
		return "", time.Time{}, ErrInvalidSubject
	}

	now := i.clock.now().UTC()
	claims := tokenClaims{
		Role: string(role),
		RegisteredClaims: jwtv5.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   subject,
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	tok := jwtv5.NewWithClaims(signingMethod, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	// NumericDate truncates to seconds; report what the token actually carries.
	return signed, claims.ExpiresAt.Time, nil
}

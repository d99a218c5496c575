package auth

import (
	"errors"
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balcao/balcao/internal/model"
)

var (
	testSecret = []byte("0123456789abcdef0123456789abcdef")
	testNow    = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
)

func fixedClock(t time.Time) Option {
	return WithClock(func() time.Time { return t })
}

func TestJWTVerifier_AcceptsIssuedToken(t *testing.T) {
	issuer := NewIssuer(testSecret, "balcao", time.Hour, fixedClock(testNow))
	token, exp, err := issuer.Issue("01HZX5V4Q6M2N8K3B7C9D1E2F3", model.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, testNow.Add(time.Hour), exp)

	v := NewJWTVerifier(testSecret, "balcao", fixedClock(testNow.Add(30*time.Minute)))
	claims, err := v.Verify(token)
	require.NoError(t, err)

	assert.Equal(t, "01HZX5V4Q6M2N8K3B7C9D1E2F3", claims.SubjectID)
	assert.Equal(t, model.RoleAdmin, claims.Role)
	assert.True(t, claims.ExpiresAt.Equal(exp))
}

func TestJWTVerifier_Rejects(t *testing.T) {
	issuer := NewIssuer(testSecret, "balcao", time.Hour, fixedClock(testNow))
	valid, exp, err := issuer.Issue("user-1", model.RoleUser)
	require.NoError(t, err)

	otherKey, _, err := NewIssuer([]byte("ffffffffffffffffffffffffffffffff"), "balcao", time.Hour, fixedClock(testNow)).
		Issue("user-1", model.RoleRoot)
	require.NoError(t, err)

	otherIssuer, _, err := NewIssuer(testSecret, "someone-else", time.Hour, fixedClock(testNow)).
		Issue("user-1", model.RoleUser)
	require.NoError(t, err)

	noSubject := signRaw(t, jwtv5.SigningMethodHS256, tokenClaims{
		Role: "admin",
		RegisteredClaims: jwtv5.RegisteredClaims{
			Issuer:    "balcao",
			ExpiresAt: jwtv5.NewNumericDate(testNow.Add(time.Hour)),
		},
	})
	badRole := signRaw(t, jwtv5.SigningMethodHS256, tokenClaims{
		Role: "superuser",
		RegisteredClaims: jwtv5.RegisteredClaims{
			Issuer:    "balcao",
			Subject:   "user-1",
			ExpiresAt: jwtv5.NewNumericDate(testNow.Add(time.Hour)),
		},
	})
	noExpiry := signRaw(t, jwtv5.SigningMethodHS256, tokenClaims{
		Role: "admin",
		RegisteredClaims: jwtv5.RegisteredClaims{
			Issuer:  "balcao",
			Subject: "user-1",
		},
	})
	hs512 := signRaw(t, jwtv5.SigningMethodHS512, tokenClaims{
		Role: "admin",
		RegisteredClaims: jwtv5.RegisteredClaims{
			Issuer:    "balcao",
			Subject:   "user-1",
			ExpiresAt: jwtv5.NewNumericDate(testNow.Add(time.Hour)),
		},
	})

	tests := []struct {
		name  string
		token string
		now   time.Time
	}{
		{"empty", "", testNow},
		{"whitespace", "   ", testNow},
		{"garbage", "not-a-token", testNow},
		{"wrong key", otherKey, testNow},
		{"wrong issuer", otherIssuer, testNow},
		{"tampered", valid[:len(valid)-2] + "xx", testNow},
		{"expired at boundary", valid, exp},
		{"expired after", valid, exp.Add(time.Second)},
		{"missing subject", noSubject, testNow},
		{"unknown role", badRole, testNow},
		{"missing exp", noExpiry, testNow},
		{"wrong algorithm", hs512, testNow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewJWTVerifier(testSecret, "balcao", fixedClock(tt.now))
			claims, err := v.Verify(tt.token)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnauthenticated), "got %v", err)
			assert.Equal(t, model.Claims{}, claims)
		})
	}
}

func TestJWTVerifier_IssuerOptional(t *testing.T) {
	token, _, err := NewIssuer(testSecret, "anything", time.Hour, fixedClock(testNow)).Issue("u", model.RoleUser)
	require.NoError(t, err)

	claims, err := NewJWTVerifier(testSecret, "", fixedClock(testNow)).Verify(token)
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, claims.Role)
}

func TestIssuer_RejectsInvalidSubject(t *testing.T) {
	issuer := NewIssuer(testSecret, "", time.Hour)

	_, _, err := issuer.Issue("", model.RoleUser)
	assert.ErrorIs(t, err, ErrInvalidSubject)

	_, _, err = issuer.Issue("u", model.Role("owner"))
	assert.ErrorIs(t, err, ErrInvalidSubject)
}

func signRaw(t *testing.T, method jwtv5.SigningMethod, claims tokenClaims) string {
	t.Helper()
	s, err := jwtv5.NewWithClaims(method, claims).SignedString(testSecret)
	require.NoError(t, err)
	return s
}

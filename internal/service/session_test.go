package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balcao/balcao/internal/auth"
	"github.com/balcao/balcao/internal/metrics"
	"github.com/balcao/balcao/internal/model"
	"github.com/balcao/balcao/internal/store"
	"github.com/balcao/balcao/internal/validator"
)

var (
	testSecret = []byte("0123456789abcdef0123456789abcdef")
	fastParams = auth.Argon2Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16}
)

func newUsers(t *testing.T) *store.Memory[model.User, *model.User] {
	t.Helper()
	users, err := store.NewMemory[model.User](model.KindUsers)
	require.NoError(t, err)
	return users
}

func TestSeedRootAndLogin(t *testing.T) {
	ctx := context.Background()
	users := newUsers(t)
	passwords := auth.NewPasswordHasher(fastParams)

	root, err := SeedRoot(ctx, users, passwords, "seed",
		[]byte(`{"name": "Dona Rosa", "email": "Rosa@Example.com", "password": "senha-forte-1"}`))
	require.NoError(t, err)
	assert.Equal(t, model.RoleRoot, root.Role)
	assert.Equal(t, "seed", root.CreatedBy)
	assert.Equal(t, "rosa@example.com", root.Email)

	_, err = SeedRoot(ctx, users, passwords, "seed",
		[]byte(`{"name": "Outro", "email": "outro@example.com", "password": "senha-forte-2"}`))
	assert.ErrorIs(t, err, ErrAlreadySeeded)

	rec := metrics.NewInMemory()
	issuer := auth.NewIssuer(testSecret, "balcao", time.Hour)
	sessions, err := NewSessions(users, passwords, issuer, rec, slog.New(slog.DiscardHandler))
	require.NoError(t, err)

	session, err := sessions.Login(ctx, " ROSA@example.com ", "senha-forte-1")
	require.NoError(t, err)
	assert.Equal(t, root.ID, session.User.ID)

	claims, err := auth.NewJWTVerifier(testSecret, "balcao").Verify(session.Token)
	require.NoError(t, err)
	assert.Equal(t, root.ID, claims.SubjectID)
	assert.Equal(t, model.RoleRoot, claims.Role)

	assert.Equal(t, uint64(1), rec.Snapshot().Logins[metrics.OutcomeOK])
}

func TestLogin_UniformFailure(t *testing.T) {
	ctx := context.Background()
	users := newUsers(t)
	passwords := auth.NewPasswordHasher(fastParams)

	hash, err := passwords.Hash("correta123")
	require.NoError(t, err)
	_, err = users.Add(ctx, "seed", model.User{Name: "Ana", Email: "ana@example.com", Role: model.RoleUser, PasswordHash: hash})
	require.NoError(t, err)
	_, err = users.Add(ctx, "seed", model.User{Name: "Bruno", Email: "bruno@example.com", Role: model.RoleUser, PasswordHash: "corrupted"})
	require.NoError(t, err)

	sessions, err := NewSessions(users, passwords, auth.NewIssuer(testSecret, "", time.Hour), nil, slog.New(slog.DiscardHandler))
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "ana@example.com", "errada123"},
		{"unknown email", "ninguem@example.com", "correta123"},
		{"empty email", "", "correta123"},
		{"empty password", "ana@example.com", ""},
		{"unreadable hash", "bruno@example.com", "qualquer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sessions.Login(ctx, tt.email, tt.password)
			assert.True(t, errors.Is(err, ErrInvalidCredentials), "got %v", err)
			assert.Equal(t, ErrInvalidCredentials.Error(), err.Error())
		})
	}
}

func TestSeedRoot_Validation(t *testing.T) {
	_, err := SeedRoot(context.Background(), newUsers(t), auth.NewPasswordHasher(fastParams), "seed",
		[]byte(`{"name": "Ro", "email": "x", "password": "curta"}`))

	var verr *validator.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "name")
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "password")
}

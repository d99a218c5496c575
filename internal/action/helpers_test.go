package action

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/balcao/balcao/internal/auth"
	"github.com/balcao/balcao/internal/metrics"
	"github.com/balcao/balcao/internal/model"
	"github.com/balcao/balcao/internal/policy"
	"github.com/balcao/balcao/internal/revalidate"
	"github.com/balcao/balcao/internal/store"
)

var testSecret = []byte("test-secret-test-secret-test-secret!")

// spyStore counts every call that reaches the wrapped store. listDelay
// makes List as slow as a round trip to a database.
type spyStore[T any] struct {
	store.Store[T]
	calls     atomic.Int64
	listDelay time.Duration
}

func (s *spyStore[T]) List(ctx context.Context) ([]T, error) {
	s.calls.Add(1)
	if s.listDelay > 0 {
		time.Sleep(s.listDelay)
	}
	return s.Store.List(ctx)
}

func (s *spyStore[T]) Get(ctx context.Context, id string) (T, error) {
	s.calls.Add(1)
	return s.Store.Get(ctx, id)
}

func (s *spyStore[T]) Add(ctx context.Context, createdBy string, fields T) (T, error) {
	s.calls.Add(1)
	return s.Store.Add(ctx, createdBy, fields)
}

func (s *spyStore[T]) Update(ctx context.Context, fields T) (T, error) {
	s.calls.Add(1)
	return s.Store.Update(ctx, fields)
}

func (s *spyStore[T]) Remove(ctx context.Context, id string) error {
	s.calls.Add(1)
	return s.Store.Remove(ctx, id)
}

func spy[T any, P interface {
	*T
	model.Entity
}](t *testing.T, kind string) *spyStore[T] {
	t.Helper()
	m, err := store.NewMemory[T, P](kind)
	require.NoError(t, err)
	return &spyStore[T]{Store: m}
}

type env struct {
	catalog    *Catalog
	issuer     *auth.Issuer
	notifier   *revalidate.Recorder
	metrics    *metrics.InMemoryRecorder
	categories *spyStore[model.Category]
	clients    *spyStore[model.Client]
	openings   *spyStore[model.Opening]
	sangrias   *spyStore[model.Sangria]
	sales      *spyStore[model.Sale]
	users      *spyStore[model.User]
	settings   *spyStore[model.Setting]
}

func newEnv(t *testing.T) *env {
	t.Helper()

	e := &env{
		issuer:     auth.NewIssuer(testSecret, "balcao", time.Hour),
		notifier:   &revalidate.Recorder{},
		metrics:    metrics.NewInMemory(),
		categories: spy[model.Category](t, model.KindCategories),
		clients:    spy[model.Client](t, model.KindClients),
		openings:   spy[model.Opening](t, model.KindOpenings),
		sangrias:   spy[model.Sangria](t, model.KindSangrias),
		sales:      spy[model.Sale](t, model.KindSales),
		users:      spy[model.User](t, model.KindUsers),
		settings:   spy[model.Setting](t, model.KindSettings),
	}

	e.catalog = NewCatalog(Deps{
		Verifier: auth.NewJWTVerifier(testSecret, "balcao"),
		Policy:   policy.Default,
		Notifier: e.notifier,
		Metrics:  e.metrics,
		Logger:   slog.New(slog.DiscardHandler),
		Hasher:   auth.NewPasswordHasher(auth.Argon2Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16}),
	}, Stores{
		Categories: e.categories,
		Clients:    e.clients,
		Openings:   e.openings,
		Sangrias:   e.sangrias,
		Sales:      e.sales,
		Users:      e.users,
		Settings:   e.settings,
	})
	return e
}

func (e *env) token(t *testing.T, subject string, role model.Role) string {
	t.Helper()
	tok, _, err := e.issuer.Issue(subject, role)
	require.NoError(t, err)
	return tok
}

func (e *env) storeCalls() int64 {
	return e.categories.calls.Load() + e.clients.calls.Load() + e.openings.calls.Load() +
		e.sangrias.calls.Load() + e.sales.calls.Load() + e.users.calls.Load() + e.settings.calls.Load()
}

const (
	adminID = "01HZX5V4Q6M2N8K3B7C9D1E2A1"
	userID  = "01HZX5V4Q6M2N8K3B7C9D1E2B2"
	rootID  = "01HZX5V4Q6M2N8K3B7C9D1E2C3"
)

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/balcao/balcao/internal/action"
	"github.com/balcao/balcao/internal/auth"
	"github.com/balcao/balcao/internal/metrics"
	"github.com/balcao/balcao/internal/model"
	"github.com/balcao/balcao/internal/policy"
	"github.com/balcao/balcao/internal/revalidate"
	"github.com/balcao/balcao/internal/service"
	"github.com/balcao/balcao/internal/store"
)

var testSecret = []byte("handler-test-secret-handler-test!")

type testAPI struct {
	router   http.Handler
	issuer   *auth.Issuer
	users    store.Store[model.User]
	hasher   *auth.PasswordHasher
	metrics  *metrics.InMemoryRecorder
	notifier *revalidate.Recorder
}

func newMemoryStore[T any, P interface {
	*T
	model.Entity
}](t *testing.T, kind string) store.Store[T] {
	t.Helper()
	s, err := store.NewMemory[T, P](kind)
	if err != nil {
		t.Fatalf("failed to create %s store: %v", kind, err)
	}
	return s
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	api := &testAPI{
		issuer:   auth.NewIssuer(testSecret, "balcao", time.Hour),
		users:    newMemoryStore[model.User](t, model.KindUsers),
		hasher:   auth.NewPasswordHasher(auth.Argon2Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16}),
		metrics:  metrics.NewInMemory(),
		notifier: &revalidate.Recorder{},
	}

	catalog := action.NewCatalog(action.Deps{
		Verifier: auth.NewJWTVerifier(testSecret, "balcao"),
		Policy:   policy.Default,
		Notifier: api.notifier,
		Metrics:  api.metrics,
		Logger:   logger,
		Hasher:   api.hasher,
	}, action.Stores{
		Categories: newMemoryStore[model.Category](t, model.KindCategories),
		Clients:    newMemoryStore[model.Client](t, model.KindClients),
		Openings:   newMemoryStore[model.Opening](t, model.KindOpenings),
		Sangrias:   newMemoryStore[model.Sangria](t, model.KindSangrias),
		Sales:      newMemoryStore[model.Sale](t, model.KindSales),
		Users:      api.users,
		Settings:   newMemoryStore[model.Setting](t, model.KindSettings),
	})

	sessions, err := service.NewSessions(api.users, api.hasher, api.issuer, api.metrics, logger)
	if err != nil {
		t.Fatalf("failed to create sessions: %v", err)
	}

	h := New()
	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", NewSessionHandler(sessions, logger).Login)
		NewActionHandler(catalog, logger).Mount(r)
	})
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)
	api.router = r
	return api
}

func (a *testAPI) token(t *testing.T, subject string, role model.Role) string {
	t.Helper()
	tok, _, err := a.issuer.Issue(subject, role)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	return tok
}

func (a *testAPI) seedRoot(t *testing.T, email, password string) model.UserView {
	t.Helper()
	raw, _ := json.Marshal(map[string]string{"name": "Root User", "email": email, "password": password})
	root, err := service.SeedRoot(context.Background(), a.users, a.hasher, "seed", raw)
	if err != nil {
		t.Fatalf("failed to seed root: %v", err)
	}
	return root
}

func (a *testAPI) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

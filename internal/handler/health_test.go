package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type mockHealthChecker struct {
	err error
}

func (m *mockHealthChecker) Ping(ctx context.Context) error {
	return m.err
}

func TestHealthHandler_Healthz(t *testing.T) {
	h := NewHealthHandler(Check{Name: "postgres", Checker: &mockHealthChecker{err: errors.New("down")}})

	rec := httptest.NewRecorder()
	h.Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	if got := decode[HealthResponse](t, rec); got.Status != "ok" {
		t.Errorf("expected status 'ok', got %s", got.Status)
	}
}

func TestHealthHandler_Readyz(t *testing.T) {
	tests := []struct {
		name       string
		checks     []Check
		wantStatus int
		wantChecks map[string]string
	}{
		{
			name:       "no dependencies",
			wantStatus: http.StatusOK,
			wantChecks: map[string]string{},
		},
		{
			name: "all healthy",
			checks: []Check{
				{Name: "postgres", Checker: &mockHealthChecker{}},
				{Name: "redis", Checker: PingFunc(func(context.Context) error { return nil })},
			},
			wantStatus: http.StatusOK,
			wantChecks: map[string]string{"postgres": "ok", "redis": "ok"},
		},
		{
			name: "database unhealthy",
			checks: []Check{
				{Name: "postgres", Checker: &mockHealthChecker{err: errors.New("connection refused")}},
				{Name: "redis", Checker: &mockHealthChecker{}},
			},
			wantStatus: http.StatusServiceUnavailable,
			wantChecks: map[string]string{"postgres": "error: connection refused", "redis": "ok"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.checks...)

			rec := httptest.NewRecorder()
			h.Readyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			got := decode[HealthResponse](t, rec)
			for name, want := range tt.wantChecks {
				if got.Checks[name] != want {
					t.Errorf("expected %s check %q, got %q", name, want, got.Checks[name])
				}
			}
			if len(got.Checks) != len(tt.wantChecks) {
				t.Errorf("expected %d checks, got %v", len(tt.wantChecks), got.Checks)
			}
		})
	}
}

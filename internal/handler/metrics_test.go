package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/balcao/balcao/internal/metrics"
)

func TestMetricsHandler(t *testing.T) {
	recorder := metrics.NewInMemory()
	recorder.ObserveAction("addCategory", metrics.OutcomeOK, 1500*time.Millisecond)
	recorder.ObserveAction("addCategory", metrics.OutcomeInvalid, 500*time.Millisecond)
	recorder.IncStaleNotification("published")
	recorder.IncLogin("ok")

	rec := httptest.NewRecorder()
	NewMetricsHandler(recorder).Metrics(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	body := rec.Body.String()
	for _, want := range []string{
		`balcao_actions_total{action="addCategory",outcome="invalid"} 1`,
		`balcao_actions_total{action="addCategory",outcome="ok"} 1`,
		`balcao_action_duration_seconds_count 2`,
		`balcao_action_duration_seconds_sum 2.000000`,
		`balcao_stale_notifications_total{status="published"} 1`,
		`balcao_logins_total{outcome="ok"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in output:\n%s", want, body)
		}
	}
}

func TestMetricsHandler_NoSnapshotter(t *testing.T) {
	rec := httptest.NewRecorder()
	NewMetricsHandler(nil).Metrics(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", rec.Code)
	}
}

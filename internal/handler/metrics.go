package handler

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/balcao/balcao/internal/metrics"
)

// MetricsHandler renders in-memory counters in Prometheus text format. It
// backs /metrics when METRICS_BACKEND=inmemory.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	for _, key := range sortedKeys(snap.Actions) {
		name, outcome := splitActionKey(key)
		writeMetric(w, "balcao_actions_total{action=%q,outcome=%q} %d\n", name, outcome, snap.Actions[key])
	}
	writeMetric(w, "balcao_action_duration_seconds_count %d\n", snap.ActionDurationCount)
	writeMetric(w, "balcao_action_duration_seconds_sum %.6f\n", float64(snap.ActionDurationTotalNs)/1e9)

	for _, status := range sortedKeys(snap.StaleNotifications) {
		writeMetric(w, "balcao_stale_notifications_total{status=%q} %d\n", status, snap.StaleNotifications[status])
	}
	for _, outcome := range sortedKeys(snap.Logins) {
		writeMetric(w, "balcao_logins_total{outcome=%q} %d\n", outcome, snap.Logins[outcome])
	}
}

func splitActionKey(key string) (string, string) {
	i := strings.LastIndexByte(key, '/')
	if i < 0 {
		return key, ""
	}
	return key[:i], key[i+1:]
}

func sortedKeys(m map[string]uint64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}

// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Action outcomes.
const (
	OutcomeOK              = "ok"
	OutcomeUnauthenticated = "unauthenticated"
	OutcomeForbidden       = "forbidden"
	OutcomeInvalid         = "invalid"
	OutcomeNotFound        = "not_found"
	OutcomeRestricted      = "restricted"
	OutcomeError           = "error"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Action pipeline metrics
	ObserveAction(action, outcome string, duration time.Duration)

	// Stale-path notifications; status: "published" or "failed"
	IncStaleNotification(status string)

	// Sign-in attempts; outcome: "ok" or "invalid"
	IncLogin(outcome string)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}

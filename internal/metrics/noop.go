package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// ObserveAction is a no-op.
func (n *NoopRecorder) ObserveAction(action, outcome string, duration time.Duration) {}

// IncStaleNotification is a no-op.
func (n *NoopRecorder) IncStaleNotification(status string) {}

// IncLogin is a no-op.
func (n *NoopRecorder) IncLogin(outcome string) {}

package metrics

import (
	"maps"
	"sync"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	// Actions counts calls keyed by "action/outcome".
	Actions               map[string]uint64
	ActionDurationCount   uint64
	ActionDurationTotalNs int64
	StaleNotifications    map[string]uint64
	Logins                map[string]uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	mu                    sync.Mutex
	actions               map[string]uint64
	actionDurationCount   uint64
	actionDurationTotalNs int64
	staleNotifications    map[string]uint64
	logins                map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		actions:            make(map[string]uint64),
		staleNotifications: make(map[string]uint64),
		logins:             make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot{
		Actions:               maps.Clone(m.actions),
		ActionDurationCount:   m.actionDurationCount,
		ActionDurationTotalNs: m.actionDurationTotalNs,
		StaleNotifications:    maps.Clone(m.staleNotifications),
		Logins:                maps.Clone(m.logins),
	}
}

// ObserveAction counts an action call and its duration.
func (m *InMemoryRecorder) ObserveAction(action, outcome string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.actions[action+"/"+outcome]++
	m.actionDurationCount++
	m.actionDurationTotalNs += duration.Nanoseconds()
}

// IncStaleNotification counts a stale-path notification.
func (m *InMemoryRecorder) IncStaleNotification(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.staleNotifications[status]++
}

// IncLogin counts a sign-in attempt.
func (m *InMemoryRecorder) IncLogin(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logins[outcome]++
}

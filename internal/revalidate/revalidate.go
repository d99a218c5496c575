// Package revalidate signals that rendered views of a path are stale.
// Signals are fire-and-forget: a failure is logged and never reaches the
// caller.
package revalidate

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Notifier announces that the given paths must be re-rendered.
type Notifier interface {
	Stale(ctx context.Context, paths ...string)
}

// Event is the payload published for each stale path.
type Event struct {
	Path string    `json:"path"`
	At   time.Time `json:"at"`
}

// LogNotifier only logs stale paths. Used when no broker is configured.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a notifier that writes debug log lines.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger.With("component", "revalidate")}
}

// Stale logs each path.
func (n *LogNotifier) Stale(ctx context.Context, paths ...string) {
	for _, p := range dedupe(paths) {
		n.logger.DebugContext(ctx, "path stale", "path", p)
	}
}

// Recorder keeps every stale path in memory. Safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	paths []string
}

// Stale records the paths.
func (r *Recorder) Stale(_ context.Context, paths ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, dedupe(paths)...)
}

// Paths returns the recorded paths in call order.
func (r *Recorder) Paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

// Reset forgets recorded paths.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = nil
}

// dedupe drops repeated and empty paths, keeping first occurrences in order.
func dedupe(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

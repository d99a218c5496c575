package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "balcao"

// PrometheusRecorder exports metrics through a Prometheus registry.
type PrometheusRecorder struct {
	registry           *prometheus.Registry
	actionsTotal       *prometheus.CounterVec
	actionDuration     *prometheus.HistogramVec
	staleNotifications *prometheus.CounterVec
	loginsTotal        *prometheus.CounterVec
}

// NewPrometheus creates a recorder backed by its own registry, including
// Go runtime and process collectors.
func NewPrometheus() (*PrometheusRecorder, error) {
	p := &PrometheusRecorder{
		registry: prometheus.NewRegistry(),
		actionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "Action calls by action name and outcome.",
		}, []string{"action", "outcome"}),
		actionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "action_duration_seconds",
			Help:      "Action call latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"action"}),
		staleNotifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_notifications_total",
			Help:      "Stale-path notifications by status.",
		}, []string{"status"}), // status: published|failed
		loginsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Sign-in attempts by outcome.",
		}, []string{"outcome"}),
	}

	for _, c := range []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		p.actionsTotal,
		p.actionDuration,
		p.staleNotifications,
		p.loginsTotal,
	} {
		if err := registerCollector(p.registry, c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Handler serves the registry in the Prometheus exposition format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

// Registry returns the underlying registry.
func (p *PrometheusRecorder) Registry() *prometheus.Registry {
	return p.registry
}

// ObserveAction counts an action call and records its latency.
func (p *PrometheusRecorder) ObserveAction(action, outcome string, duration time.Duration) {
	p.actionsTotal.WithLabelValues(action, outcome).Inc()
	p.actionDuration.WithLabelValues(action).Observe(duration.Seconds())
}

// IncStaleNotification counts a stale-path notification.
func (p *PrometheusRecorder) IncStaleNotification(status string) {
	p.staleNotifications.WithLabelValues(status).Inc()
}

// IncLogin counts a sign-in attempt.
func (p *PrometheusRecorder) IncLogin(outcome string) {
	p.loginsTotal.WithLabelValues(outcome).Inc()
}

func registerCollector(reg prometheus.Registerer, c prometheus.Collector) error {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			return nil
		}
		return err
	}
	return nil
}

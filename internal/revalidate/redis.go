package revalidate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/balcao/balcao/internal/metrics"
)

// DefaultPublishTimeout bounds one batch of publishes.
const DefaultPublishTimeout = 2 * time.Second

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	// Connection pool settings
	opt.PoolSize = 10
	opt.MinIdleConns = 2
	opt.PoolTimeout = 4 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opt)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}

// RedisNotifier publishes stale paths on a Redis pub/sub channel.
// Publishing runs in the background, detached from the caller's cancellation.
type RedisNotifier struct {
	client  redis.UniversalClient
	channel string
	timeout time.Duration
	logger  *slog.Logger
	metrics metrics.Recorder
	now     func() time.Time
	wg      sync.WaitGroup
}

// NewRedisNotifier creates a notifier publishing on channel.
func NewRedisNotifier(client redis.UniversalClient, channel string, logger *slog.Logger, recorder metrics.Recorder) *RedisNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &RedisNotifier{
		client:  client,
		channel: channel,
		timeout: DefaultPublishTimeout,
		logger:  logger.With("component", "revalidate"),
		metrics: recorder,
		now:     time.Now,
	}
}

// Stale publishes one event per distinct path. It returns immediately.
func (n *RedisNotifier) Stale(ctx context.Context, paths ...string) {
	paths = dedupe(paths)
	if len(paths) == 0 {
		return
	}

	ctx = context.WithoutCancel(ctx)
	at := n.now().UTC()

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()

		ctx, cancel := context.WithTimeout(ctx, n.timeout)
		defer cancel()

		for _, p := range paths {
			payload, err := json.Marshal(Event{Path: p, At: at})
			if err != nil {
				n.logger.Error("encode stale event", "path", p, "error", err)
				n.metrics.IncStaleNotification("failed")
				continue
			}
			if err := n.client.Publish(ctx, n.channel, payload).Err(); err != nil {
				n.logger.Warn("publish stale path failed", "path", p, "channel", n.channel, "error", err)
				n.metrics.IncStaleNotification("failed")
				continue
			}
			n.metrics.IncStaleNotification("published")
		}
	}()
}

// Wait blocks until in-flight publishes finish. Call during shutdown.
func (n *RedisNotifier) Wait() {
	n.wg.Wait()
}

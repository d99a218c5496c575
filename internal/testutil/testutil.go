// Package testutil holds helpers shared by integration tests.
package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

// dbLockKey identifies the advisory lock held by balcao integration tests.
const dbLockKey int64 = 0x62616c63616f // "balcao"

// LockDB holds a session advisory lock on pool until the test ends, so
// packages sharing DATABASE_URL do not drop each other's tables.
func LockDB(t testing.TB, ctx context.Context, pool *pgxpool.Pool) {
	t.Helper()

	conn, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire connection: %v", err)
	}
	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", dbLockKey); err != nil {
		conn.Release()
		t.Fatalf("take advisory lock: %v", err)
	}

	t.Cleanup(func() {
		defer conn.Release()
		if _, err := conn.Exec(context.Background(), "SELECT pg_advisory_unlock($1)", dbLockKey); err != nil {
			t.Logf("release advisory lock: %v", err)
		}
	})
}

// NewRedisClient connects to REDIS_URL or skips the test.
func NewRedisClient(t testing.TB) *redis.Client {
	t.Helper()

	opt, err := redis.ParseURL(RequireEnv(t, "REDIS_URL"))
	if err != nil {
		t.Fatalf("parse REDIS_URL: %v", err)
	}
	client := redis.NewClient(opt)
	t.Cleanup(func() { _ = client.Close() })

	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	return client
}

// Package bootstrap builds the runtime pieces shared by the balcao binaries:
// the logger and the store backend selected by configuration.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/balcao/balcao/internal/action"
	"github.com/balcao/balcao/internal/config"
	"github.com/balcao/balcao/internal/model"
	"github.com/balcao/balcao/internal/store"
)

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT and
// installs it as the slog default.
func NewLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Backend is the set of entity stores plus the connection pool behind them,
// if any.
type Backend struct {
	Stores action.Stores
	// Pool is nil for the memory driver.
	Pool *pgxpool.Pool
}

// Close releases the connection pool.
func (b *Backend) Close() {
	if b.Pool != nil {
		b.Pool.Close()
	}
}

// OpenBackend opens the stores for cfg.StoreDriver. For PostgreSQL every
// entity table is created if missing; for memory, DATA_DIR enables JSON
// snapshots.
func OpenBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Backend, error) {
	b := &Backend{}
	if cfg.StoreDriver == config.StorePostgres {
		pool, err := store.OpenPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		b.Pool = pool
	}

	var err error
	o := opener{ctx: ctx, cfg: cfg, pool: b.Pool}
	if b.Stores.Categories, err = open[model.Category](o, model.KindCategories); err != nil {
		b.Close()
		return nil, err
	}
	if b.Stores.Clients, err = open[model.Client](o, model.KindClients); err != nil {
		b.Close()
		return nil, err
	}
	if b.Stores.Openings, err = open[model.Opening](o, model.KindOpenings); err != nil {
		b.Close()
		return nil, err
	}
	if b.Stores.Sangrias, err = open[model.Sangria](o, model.KindSangrias); err != nil {
		b.Close()
		return nil, err
	}
	if b.Stores.Sales, err = open[model.Sale](o, model.KindSales); err != nil {
		b.Close()
		return nil, err
	}
	if b.Stores.Users, err = open[model.User](o, model.KindUsers); err != nil {
		b.Close()
		return nil, err
	}
	if b.Stores.Settings, err = open[model.Setting](o, model.KindSettings); err != nil {
		b.Close()
		return nil, err
	}

	logger.Info("stores ready", "driver", cfg.StoreDriver, "data_dir", cfg.DataDir)
	return b, nil
}

type opener struct {
	ctx  context.Context
	cfg  *config.Config
	pool *pgxpool.Pool
}

func open[T any, P interface {
	*T
	model.Entity
}](o opener, kind string) (store.Store[T], error) {
	if o.pool != nil {
		s := store.NewPostgres[T, P](o.pool, kind)
		if err := s.EnsureTable(o.ctx); err != nil {
			return nil, fmt.Errorf("prepare %s table: %w", kind, err)
		}
		return s, nil
	}

	var opts []store.Option
	if o.cfg.DataDir != "" {
		snap, err := store.NewSnapshotter(o.cfg.DataDir, kind)
		if err != nil {
			return nil, err
		}
		opts = append(opts, store.WithSnapshot(snap))
	}
	s, err := store.NewMemory[T, P](kind, opts...)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", kind, err)
	}
	return s, nil
}

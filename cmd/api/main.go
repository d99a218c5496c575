// Package main is the entrypoint for the balcao API server.
package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/balcao/balcao/internal/action"
	"github.com/balcao/balcao/internal/auth"
	"github.com/balcao/balcao/internal/bootstrap"
	"github.com/balcao/balcao/internal/config"
	"github.com/balcao/balcao/internal/handler"
	"github.com/balcao/balcao/internal/metrics"
	"github.com/balcao/balcao/internal/middleware"
	"github.com/balcao/balcao/internal/policy"
	"github.com/balcao/balcao/internal/revalidate"
	"github.com/balcao/balcao/internal/server"
	"github.com/balcao/balcao/internal/service"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("failed to read .env", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := bootstrap.NewLogger(cfg, os.Stdout)

	backend, err := bootstrap.OpenBackend(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open stores",
			slog.String("driver", cfg.StoreDriver),
			slog.String("error", bootstrap.SanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", bootstrap.RedactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}

	recorder, metricsHandler, err := newMetrics(cfg)
	if err != nil {
		logger.Error("failed to set up metrics", "error", err)
		os.Exit(1)
	}

	checks := []handler.Check{}
	if backend.Pool != nil {
		checks = append(checks, handler.Check{Name: "postgres", Checker: backend.Pool})
	}

	notifiers := revalidate.Multi{revalidate.NewLogNotifier(logger)}
	var pending []interface{ Wait() }
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = revalidate.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("failed to connect to Redis",
				slog.String("error", bootstrap.SanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", bootstrap.RedactURL(cfg.RedisURL)),
			)
			os.Exit(1)
		}
		redisNotifier := revalidate.NewRedisNotifier(redisClient, cfg.RevalidateChannel, logger, recorder)
		notifiers = append(notifiers, redisNotifier)
		pending = append(pending, redisNotifier)
		checks = append(checks, handler.Check{Name: "redis", Checker: handler.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})})
		logger.Info("publishing stale paths to Redis", "channel", cfg.RevalidateChannel)
	}
	if cfg.RevalidateWebhookURL != "" {
		webhook := revalidate.NewWebhookNotifier(cfg.RevalidateWebhookURL, cfg.RevalidateWebhookSecret, nil, logger, recorder)
		notifiers = append(notifiers, webhook)
		pending = append(pending, webhook)
		logger.Info("posting stale paths to webhook", "url", bootstrap.RedactURL(cfg.RevalidateWebhookURL))
	}

	secret := []byte(cfg.JWTSecret)
	issuer := auth.NewIssuer(secret, cfg.JWTIssuer, cfg.TokenTTL)
	verifier := auth.NewCachingVerifier(auth.NewJWTVerifier(secret, cfg.JWTIssuer), time.Minute)
	hasher := auth.NewPasswordHasher(auth.DefaultArgon2Params)

	catalog := action.NewCatalog(action.Deps{
		Verifier: verifier,
		Policy:   policy.Default,
		Notifier: notifiers,
		Metrics:  recorder,
		Logger:   logger,
		Hasher:   hasher,
	}, backend.Stores)

	sessions, err := service.NewSessions(backend.Stores.Users, hasher, issuer, recorder, logger)
	if err != nil {
		logger.Error("failed to set up sessions", "error", err)
		os.Exit(1)
	}

	r := setupRouter(cfg, logger, routes{
		fallback: handler.New(),
		health:   handler.NewHealthHandler(checks...),
		actions:  handler.NewActionHandler(catalog, logger),
		sessions: handler.NewSessionHandler(sessions, logger),
		metrics:  metricsHandler,
	})

	srv := server.New(r, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	srv.OnShutdown("stores", func(context.Context) error {
		backend.Close()
		return nil
	})
	if redisClient != nil {
		srv.OnShutdown("redis", func(context.Context) error {
			return redisClient.Close()
		})
	}
	srv.OnShutdown("stale notifications", func(ctx context.Context) error {
		done := make(chan struct{})
		go func() {
			for _, p := range pending {
				p.Wait()
			}
			close(done)
		}()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"store", cfg.StoreDriver,
		"metrics", cfg.MetricsBackend,
		"actions", len(catalog.All()),
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// newMetrics returns the recorder and /metrics handler for METRICS_BACKEND.
func newMetrics(cfg *config.Config) (metrics.Recorder, http.Handler, error) {
	if cfg.MetricsBackend == config.MetricsInMemory {
		recorder := metrics.NewInMemory()
		return recorder, http.HandlerFunc(handler.NewMetricsHandler(recorder).Metrics), nil
	}
	recorder, err := metrics.NewPrometheus()
	if err != nil {
		return nil, nil, err
	}
	return recorder, recorder.Handler(), nil
}

type routes struct {
	fallback *handler.Handler
	health   *handler.HealthHandler
	actions  *handler.ActionHandler
	sessions *handler.SessionHandler
	metrics  http.Handler
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(cfg *config.Config, logger *slog.Logger, h routes) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(cfg.IsDevelopment()))

	r.Get("/healthz", h.health.Healthz)
	r.Get("/readyz", h.health.Readyz)
	r.Method(http.MethodGet, "/metrics", h.metrics)

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.CORS(corsCfg))
		r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

		r.Post("/auth/login", h.sessions.Login)
		h.actions.Mount(r)
	})

	r.NotFound(h.fallback.NotFound)
	r.MethodNotAllowed(h.fallback.MethodNotAllowed)

	return r
}

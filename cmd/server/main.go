package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/JonMunkholm/usertable/internal/config"
	"github.com/JonMunkholm/usertable/internal/core"
	"github.com/JonMunkholm/usertable/internal/logging"
	"github.com/JonMunkholm/usertable/internal/metrics"
	"github.com/JonMunkholm/usertable/internal/session"
	"github.com/JonMunkholm/usertable/internal/source"
	"github.com/JonMunkholm/usertable/internal/web"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"base_path", cfg.Server.BasePath,
		"source_kind", cfg.Source.Kind,
		"source_max_concurrent", cfg.Source.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)
	slog.Debug("effective configuration", "config", cfg.String())

	ctx := context.Background()
	src, closeSource, err := newSource(ctx, cfg)
	if err != nil {
		slog.Error("failed to create record source", "error", err)
		os.Exit(1)
	}
	defer closeSource()

	m := metrics.New()
	limiter := core.NewFetchLimiter(cfg.Source.MaxConcurrent, cfg.Source.MaxWait)
	sessions := session.NewRegistry(session.Options{
		Source:       src,
		Limiter:      limiter,
		Metrics:      m,
		FetchTimeout: cfg.Source.Timeout,
		IdleTTL:      cfg.Session.IdleTTL,
	})

	server := web.NewServer(web.Deps{
		Config:   cfg,
		Sessions: sessions,
		Metrics:  m,
		Limiter:  limiter,
	})

	// Create cancellable context for background jobs
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go sessions.StartSweeper(jobCtx, cfg.Session.SweepInterval)

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		// Stop background jobs
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		shutdown(shutdownCtx, limiter, sessions, server)
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}

	// Start returns as soon as Shutdown closes the listener; wait for the
	// drain so the source is not closed under running fetches.
	<-done
	slog.Info("server stopped")
}

type shutdowner interface {
	Shutdown(ctx context.Context) error
}

// shutdown drains record loads before stopping the HTTP server.
func shutdown(ctx context.Context, limiter *core.FetchLimiter, sessions, server shutdowner) {
	if status := limiter.Status(); status.Active > 0 {
		slog.Info("waiting for fetches to complete", "active", status.Active)
	}
	if err := sessions.Shutdown(ctx); err != nil {
		slog.Warn("fetches did not complete in time", "error", err)
	} else {
		slog.Info("all fetches completed")
	}

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

// newSource builds the configured record source and a func releasing it.
func newSource(ctx context.Context, cfg *config.Config) (source.Source, func(), error) {
	switch strings.ToLower(cfg.Source.Kind) {
	case config.SourcePostgres:
		pool, err := newPool(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("using postgres source", "table", cfg.Source.Table)
		return source.NewPostgresSource(pool, cfg.Source.Table), pool.Close, nil
	default:
		client := &http.Client{Transport: http.DefaultTransport}
		slog.Info("using http source", "url", cfg.Source.URL, "limit", cfg.Source.Limit)
		return source.NewHTTPSource(client, cfg.Source.URL, cfg.Source.Limit), func() {}, nil
	}
}

// newPool connects and pings the database.
func newPool(ctx context.Context, dc config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dc.URL)
	if err != nil {
		return nil, err
	}

	// Apply pool configuration from config
	poolConfig.MaxConns = int32(dc.MaxConns)
	poolConfig.MinConns = int32(dc.MinConns)
	poolConfig.MaxConnLifetime = dc.MaxConnLifetime
	poolConfig.MaxConnIdleTime = dc.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	// Log which database we connected to
	if u, err := url.Parse(dc.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}
	return pool, nil
}

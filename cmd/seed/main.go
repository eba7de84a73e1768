// Command seed copies the upstream users into the PostgreSQL people table
// so the server can run with SOURCE_KIND=postgres.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/JonMunkholm/usertable/internal/admin"
	"github.com/JonMunkholm/usertable/internal/config"
	"github.com/JonMunkholm/usertable/internal/logging"
	"github.com/JonMunkholm/usertable/internal/source"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	if cfg.Database.URL == "" {
		slog.Error("DATABASE_URL is required for seeding")
		os.Exit(1)
	}

	ctx := context.Background()
	records, err := source.NewHTTPSource(http.DefaultClient, cfg.Source.URL, cfg.Source.Limit).Fetch(ctx)
	if err != nil {
		slog.Error("failed to fetch users", "url", cfg.Source.URL, "error", err)
		os.Exit(1)
	}
	slog.Info("fetched users", "count", len(records))

	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	seeder := &admin.Seeder{DB: pool, Table: cfg.Source.Table}
	if _, err := seeder.Seed(ctx, records); err != nil {
		slog.Error("seed failed", "error", err)
		pool.Close()
		os.Exit(1)
	}
}

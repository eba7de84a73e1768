// Package admin provides administrative operations on the people table.
package admin

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/JonMunkholm/usertable/internal/core"
	"github.com/JonMunkholm/usertable/internal/schema"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SeedTimeout is the maximum duration for one seed run.
const SeedTimeout = 2 * time.Minute

// DB is the subset of *pgxpool.Pool and pgx.Tx used by Seeder.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error)
}

// Seeder creates, resets and fills the people table.
type Seeder struct {
	DB    DB
	Table string
}

type dbStep func(ctx context.Context) error

// Seed ensures the table exists, truncates it and copies records in.
// This is a destructive operation on the table.
func (s *Seeder) Seed(ctx context.Context, records []core.Record) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, SeedTimeout)
	defer cancel()

	if err := s.run(ctx, []dbStep{s.EnsureTable, s.Reset}); err != nil {
		return 0, err
	}

	n, err := s.DB.CopyFrom(ctx, pgx.Identifier{s.Table}, schema.ColumnNames(), pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
		return recordValues(records[i]), nil
	}))
	if err != nil {
		return 0, fmt.Errorf("copy people: %w", err)
	}
	slog.Info("seeded people table", "table", s.Table, "rows", n)
	return n, nil
}

// EnsureTable creates the table when it is missing.
func (s *Seeder) EnsureTable(ctx context.Context) error {
	if _, err := s.DB.Exec(ctx, schema.CreateTableSQL(s.Table)); err != nil {
		return fmt.Errorf("create people table: %w", err)
	}
	return nil
}

// Reset removes every row from the table.
func (s *Seeder) Reset(ctx context.Context) error {
	if _, err := s.DB.Exec(ctx, "TRUNCATE "+pgx.Identifier{s.Table}.Sanitize()); err != nil {
		return fmt.Errorf("reset people table: %w", err)
	}
	return nil
}

func (s *Seeder) run(ctx context.Context, steps []dbStep) error {
	for _, step := range steps {
		if err := step(ctx); err != nil {
			return err
		}
	}
	return nil
}

// recordValues returns r in schema.PeopleColumns order; empty optional
// values are stored as NULL.
func recordValues(r core.Record) []any {
	return []any{
		r.ID,
		r.FirstName,
		r.LastName,
		nullText(r.MaidenName),
		r.Age,
		string(r.Gender),
		r.Phone,
		r.Email,
		r.Address.Country,
		r.Address.City,
		nullText(r.Address.Street),
		nullFloat(r.Height),
		nullFloat(r.Weight),
		nullText(r.Image),
	}
}

func nullText(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullFloat(f float64) any {
	if f == 0 {
		return nil
	}
	return f
}

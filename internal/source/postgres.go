package source

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/usertable/internal/core"
	"github.com/JonMunkholm/usertable/internal/schema"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// DBTX is the subset of *pgxpool.Pool and pgx.Tx used to read records.
type DBTX interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresSource reads records from a PostgreSQL table.
type PostgresSource struct {
	db    DBTX
	table string
}

// NewPostgresSource returns a source reading table through db.
func NewPostgresSource(db DBTX, table string) *PostgresSource {
	return &PostgresSource{db: db, table: table}
}

// Query returns the SELECT issued by Fetch.
func (s *PostgresSource) Query() string {
	return fmt.Sprintf("SELECT %s FROM %s ORDER BY id", schema.SelectList(), pgx.Identifier{s.table}.Sanitize())
}

// Fetch reads every row of the table ordered by id.
func (s *PostgresSource) Fetch(ctx context.Context) ([]core.Record, error) {
	rows, err := s.db.Query(ctx, s.Query())
	if err != nil {
		return nil, fmt.Errorf("query people: %w", err)
	}
	defer rows.Close()

	var records []core.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("query people: scan: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query people: %w", err)
	}
	return records, nil
}

// scanRecord reads one row in schema.PeopleColumns order.
func scanRecord(rows pgx.Rows) (core.Record, error) {
	var (
		r                     core.Record
		maiden, street, image pgtype.Text
		height, weight        pgtype.Float8
		gender                string
	)
	err := rows.Scan(
		&r.ID, &r.FirstName, &r.LastName, &maiden, &r.Age, &gender,
		&r.Phone, &r.Email, &r.Address.Country, &r.Address.City, &street,
		&height, &weight, &image,
	)
	if err != nil {
		return core.Record{}, err
	}

	r.Gender = core.ParseGender(gender)
	r.MaidenName = maiden.String
	r.Address.Street = street.String
	r.Image = image.String
	r.Height = height.Float64
	r.Weight = weight.Float64
	return r, nil
}

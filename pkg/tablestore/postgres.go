package tablestore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/finragas/decisions-dashboard/pkg/analytics"
)

// RowScanner is the slice of *sql.Rows the store needs, kept as an
// interface so tests can feed rows without a database.
type RowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// DB is the query surface the store needs from a SQL connection.
type DB interface {
	QueryContext(ctx context.Context, query string, args ...any) (RowScanner, error)
}

type sqlRows struct {
	rows *sql.Rows
}

func (r *sqlRows) Next() bool             { return r.rows.Next() }
func (r *sqlRows) Scan(dest ...any) error { return r.rows.Scan(dest...) }
func (r *sqlRows) Err() error             { return r.rows.Err() }
func (r *sqlRows) Close() error           { return r.rows.Close() }

type sqlDB struct {
	db *sql.DB
}

func (s *sqlDB) QueryContext(ctx context.Context, query string, args ...any) (RowScanner, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &sqlRows{rows: rows}, nil
}

// PostgresStore reads records straight from the decisions table when the
// deployment has database access instead of the REST API.
type PostgresStore struct {
	db    DB
	table string
}

// NewPostgresStore wraps an open database handle.
func NewPostgresStore(db *sql.DB, table string) *PostgresStore {
	return &PostgresStore{db: &sqlDB{db: db}, table: table}
}

// OpenPostgres opens a connection with the postgres driver and verifies it.
func OpenPostgres(dsn, table string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return NewPostgresStore(db, table), nil
}

// FetchRecords returns rows in the creation-time range, ascending.
func (s *PostgresStore) FetchRecords(ctx context.Context, q Query) ([]analytics.Record, error) {
	query := fmt.Sprintf(`
SELECT id::text, created_at, company, product_type, outcome, case_number, decision_date
FROM %s`, pq.QuoteIdentifier(s.table))

	var args []any
	where := ""
	if !q.CreatedFrom.IsZero() {
		args = append(args, q.CreatedFrom.UTC())
		where = fmt.Sprintf(" WHERE created_at >= $%d", len(args))
	}
	if !q.CreatedTo.IsZero() {
		args = append(args, q.CreatedTo.UTC())
		clause := fmt.Sprintf("created_at < $%d", len(args))
		if where == "" {
			where = " WHERE " + clause
		} else {
			where += " AND " + clause
		}
	}

	query += where + " ORDER BY created_at"
	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("decisions query failed: %w", err)
	}
	defer rows.Close()

	var records []analytics.Record
	for rows.Next() {
		var (
			rec     analytics.Record
			company sql.NullString
			product sql.NullString
			outcome sql.NullString
			caseNo  sql.NullString
			created time.Time
			decided sql.NullTime
		)
		if err := rows.Scan(&rec.ID, &created, &company, &product, &outcome, &caseNo, &decided); err != nil {
			return nil, fmt.Errorf("failed to scan decision row: %w", err)
		}
		rec.CreatedAt = created.UTC()
		rec.Company = company.String
		rec.ProductType = product.String
		rec.Outcome = outcome.String
		rec.CaseNumber = caseNo.String
		if decided.Valid {
			rec.DecidedAt = decided.Time.UTC()
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("decisions query failed: %w", err)
	}

	if records == nil {
		records = []analytics.Record{}
	}
	return records, nil
}

package tablestore

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"
)

// fakeRowScanner implements RowScanner for tests.
type fakeRowScanner struct {
	rows [][]any
	i    int
	err  error
}

func (f *fakeRowScanner) Next() bool {
	return f.i < len(f.rows)
}

func (f *fakeRowScanner) Scan(dest ...any) error {
	if f.i >= len(f.rows) {
		return errors.New("no more rows")
	}
	row := f.rows[f.i]
	if len(dest) != len(row) {
		return errors.New("dest length mismatch")
	}
	for i := range dest {
		switch d := dest[i].(type) {
		case *string:
			*d = row[i].(string)
		case *time.Time:
			*d = row[i].(time.Time)
		case *sql.NullString:
			if row[i] == nil {
				*d = sql.NullString{}
			} else {
				*d = sql.NullString{String: row[i].(string), Valid: true}
			}
		case *sql.NullTime:
			if row[i] == nil {
				*d = sql.NullTime{}
			} else {
				*d = sql.NullTime{Time: row[i].(time.Time), Valid: true}
			}
		default:
			return errors.New("unsupported dest type")
		}
	}
	f.i++
	return nil
}

func (f *fakeRowScanner) Err() error   { return f.err }
func (f *fakeRowScanner) Close() error { return nil }

// fakeDB implements DB and captures the last query.
type fakeDB struct {
	scanner   RowScanner
	queryErr  error
	lastQuery string
	lastArgs  []any
}

func (f *fakeDB) QueryContext(ctx context.Context, query string, args ...any) (RowScanner, error) {
	f.lastQuery = query
	f.lastArgs = args
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.scanner, nil
}

func TestPostgresFetchRecords(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	decided := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	db := &fakeDB{scanner: &fakeRowScanner{rows: [][]any{
		{"1", created, "BTA", "casco", "upheld", "D-1", decided},
		{"2", created.Add(24 * time.Hour), "ERGO", "life", nil, "D-2", nil},
	}}}

	store := &PostgresStore{db: db, table: "decisions"}

	records, err := store.FetchRecords(context.Background(), Query{})
	if err != nil {
		t.Fatalf("FetchRecords failed: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].ID != "1" || records[0].Company != "BTA" || !records[0].DecidedAt.Equal(decided) {
		t.Errorf("first record = %+v", records[0])
	}
	if records[1].Outcome != "" || !records[1].DecidedAt.IsZero() {
		t.Errorf("null columns should map to zero values, got %+v", records[1])
	}

	if !strings.Contains(db.lastQuery, `FROM "decisions"`) {
		t.Errorf("query does not target the decisions table: %s", db.lastQuery)
	}
	if !strings.Contains(db.lastQuery, "ORDER BY created_at") {
		t.Errorf("query not ordered by created_at: %s", db.lastQuery)
	}
}

func TestPostgresFetchRecordsRangeAndLimit(t *testing.T) {
	db := &fakeDB{scanner: &fakeRowScanner{}}
	store := &PostgresStore{db: db, table: "decisions"}

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	records, err := store.FetchRecords(context.Background(), Query{CreatedFrom: from, CreatedTo: to, Limit: 100})
	if err != nil {
		t.Fatalf("FetchRecords failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records, want 0", len(records))
	}

	if !strings.Contains(db.lastQuery, "created_at >= $1") || !strings.Contains(db.lastQuery, "created_at < $2") {
		t.Errorf("range clauses missing: %s", db.lastQuery)
	}
	if !strings.Contains(db.lastQuery, "LIMIT $3") {
		t.Errorf("limit clause missing: %s", db.lastQuery)
	}
	if len(db.lastArgs) != 3 {
		t.Errorf("args = %v, want from, to, limit", db.lastArgs)
	}
}

func TestPostgresFetchRecordsQueryError(t *testing.T) {
	db := &fakeDB{queryErr: errors.New("connection refused")}
	store := &PostgresStore{db: db, table: "decisions"}

	if _, err := store.FetchRecords(context.Background(), Query{}); err == nil {
		t.Fatal("expected error when the query fails")
	}
}

// Package tablestore reads dispute decision records from the hosted table
// store. Two sources implement the same narrow interface: a REST client for
// the hosted PostgREST-style API and a direct Postgres reader for
// deployments with database access. Either way the rows are handed to the
// aggregator as plain records; zero rows is a valid result, not an error.
package tablestore

import (
	"context"
	"time"

	"github.com/finragas/decisions-dashboard/pkg/analytics"
)

// Query narrows a fetch by creation-timestamp range. Zero times mean
// unbounded on that side; Limit <= 0 means no limit.
type Query struct {
	CreatedFrom time.Time
	CreatedTo   time.Time
	Limit       int
}

// RecordSource fetches records for the dashboard. Implementations must
// return an empty slice (not an error) when the table has no matching rows.
type RecordSource interface {
	FetchRecords(ctx context.Context, q Query) ([]analytics.Record, error)
}

package analytics

import "time"

// Record is one processed dispute decision as fetched from the table store.
// Records are immutable once fetched; every aggregation recomputes from the
// full slice rather than updating incrementally.
type Record struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Company     string    `json:"company"`
	ProductType string    `json:"product_type"`
	Outcome     string    `json:"outcome"`
	CaseNumber  string    `json:"case_number"`
	DecidedAt   time.Time `json:"decision_date"`
}

// DayKey returns the calendar-date bucket key of the record's creation
// timestamp, in UTC.
func (r Record) DayKey() string {
	return r.CreatedAt.UTC().Format("2006-01-02")
}

// MonthKey returns the year-month bucket key of the record's decision date,
// in UTC. Records without a decision date fall back to the creation
// timestamp so they still land in a bucket.
func (r Record) MonthKey() string {
	t := r.DecidedAt
	if t.IsZero() {
		t = r.CreatedAt
	}
	return t.UTC().Format("2006-01")
}

// Package analytics reduces a slice of dispute decision records into the
// summary rows and top-line metrics the dashboard renders. Every function is
// pure: records in, summaries out, no shared state. Buckets that have no
// records stay absent from the output; zero-filling gaps is left to the
// renderer.
package analytics

import (
	"sort"
	"time"
)

// DailySummary is one row of the per-day series: all records created on a
// calendar date, with the number of distinct companies seen that day.
type DailySummary struct {
	Date              string `json:"date"`
	Count             int    `json:"count"`
	DistinctCompanies int    `json:"distinct_companies"`
}

// CategoryCount is one row of a frequency ranking over a categorical field.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// MonthlyCrossTab is a sparse month x company count matrix. Months and
// Companies hold the row and column keys in ascending order; cells absent
// from Cells are implicit zeros.
type MonthlyCrossTab struct {
	Months    []string                  `json:"months"`
	Companies []string                  `json:"companies"`
	Cells     map[string]map[string]int `json:"cells"`
}

// OverviewMetrics are the scalar tiles at the top of the dashboard. Mean
// values keep full float precision; rounding for display is the renderer's
// job.
type OverviewMetrics struct {
	TotalCount           int       `json:"total_count"`
	DistinctCompanies    int       `json:"distinct_companies"`
	DistinctProductTypes int       `json:"distinct_product_types"`
	FirstCreatedAt       time.Time `json:"first_created_at"`
	LastCreatedAt        time.Time `json:"last_created_at"`
	MeanDecisionDays     float64   `json:"mean_decision_days"`
}

// BucketByDay groups records by the calendar date of their creation
// timestamp and returns one summary row per date present, ascending by date.
// Empty input yields an empty slice.
func BucketByDay(records []Record) []DailySummary {
	if len(records) == 0 {
		return nil
	}

	counts := make(map[string]int)
	companies := make(map[string]map[string]struct{})

	for _, r := range records {
		key := r.DayKey()
		counts[key]++
		set, ok := companies[key]
		if !ok {
			set = make(map[string]struct{})
			companies[key] = set
		}
		set[r.Company] = struct{}{}
	}

	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([]DailySummary, 0, len(keys))
	for _, key := range keys {
		out = append(out, DailySummary{
			Date:              key,
			Count:             counts[key],
			DistinctCompanies: len(companies[key]),
		})
	}

	return out
}

// BucketByMonth cross-tabulates records by the year-month of their decision
// date and by company. Rows are the months present, columns the companies
// present, both ascending; a missing cell means zero records.
func BucketByMonth(records []Record) MonthlyCrossTab {
	tab := MonthlyCrossTab{Cells: make(map[string]map[string]int)}
	if len(records) == 0 {
		return tab
	}

	companySet := make(map[string]struct{})

	for _, r := range records {
		month := r.MonthKey()
		row, ok := tab.Cells[month]
		if !ok {
			row = make(map[string]int)
			tab.Cells[month] = row
		}
		row[r.Company]++
		companySet[r.Company] = struct{}{}
	}

	for month := range tab.Cells {
		tab.Months = append(tab.Months, month)
	}
	sort.Strings(tab.Months)

	for company := range companySet {
		tab.Companies = append(tab.Companies, company)
	}
	sort.Strings(tab.Companies)

	return tab
}

// Cell returns the count for a month/company pair, zero when absent.
func (t MonthlyCrossTab) Cell(month, company string) int {
	return t.Cells[month][company]
}

// RowTotal returns the total record count for one month across companies.
func (t MonthlyCrossTab) RowTotal(month string) int {
	total := 0
	for _, n := range t.Cells[month] {
		total += n
	}
	return total
}

// LastN truncates the cross-tab to the n most recent months, keeping
// ascending order. Companies are recomputed so columns with no remaining
// records drop out. n <= 0 or n >= len(Months) returns the receiver
// unchanged.
func (t MonthlyCrossTab) LastN(n int) MonthlyCrossTab {
	if n <= 0 || n >= len(t.Months) {
		return t
	}

	out := MonthlyCrossTab{
		Months: append([]string(nil), t.Months[len(t.Months)-n:]...),
		Cells:  make(map[string]map[string]int, n),
	}

	companySet := make(map[string]struct{})
	for _, month := range out.Months {
		out.Cells[month] = t.Cells[month]
		for company := range t.Cells[month] {
			companySet[company] = struct{}{}
		}
	}

	for company := range companySet {
		out.Companies = append(out.Companies, company)
	}
	sort.Strings(out.Companies)

	return out
}

// TopCategories ranks the values of one categorical field by frequency,
// descending. Ties break by first-seen order in the input, so the ranking is
// deterministic for a given record slice. limit <= 0 means no truncation.
func TopCategories(records []Record, field func(Record) string, limit int) []CategoryCount {
	if len(records) == 0 {
		return nil
	}

	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	order := make([]string, 0)

	for i, r := range records {
		val := field(r)
		if _, ok := counts[val]; !ok {
			firstSeen[val] = i
			order = append(order, val)
		}
		counts[val]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		if counts[order[i]] != counts[order[j]] {
			return counts[order[i]] > counts[order[j]]
		}
		return firstSeen[order[i]] < firstSeen[order[j]]
	})

	if limit > 0 && limit < len(order) {
		order = order[:limit]
	}

	out := make([]CategoryCount, 0, len(order))
	for _, val := range order {
		out = append(out, CategoryCount{Category: val, Count: counts[val]})
	}

	return out
}

// Overview computes the scalar dashboard tiles. The mean decision time only
// considers records that carry both timestamps; if none do it stays zero.
func Overview(records []Record) OverviewMetrics {
	var m OverviewMetrics
	if len(records) == 0 {
		return m
	}

	m.TotalCount = len(records)

	companies := make(map[string]struct{})
	products := make(map[string]struct{})

	var daysSum float64
	var daysN int

	for _, r := range records {
		companies[r.Company] = struct{}{}
		products[r.ProductType] = struct{}{}

		if m.FirstCreatedAt.IsZero() || r.CreatedAt.Before(m.FirstCreatedAt) {
			m.FirstCreatedAt = r.CreatedAt
		}
		if r.CreatedAt.After(m.LastCreatedAt) {
			m.LastCreatedAt = r.CreatedAt
		}

		if !r.DecidedAt.IsZero() && !r.CreatedAt.IsZero() {
			daysSum += r.DecidedAt.Sub(r.CreatedAt).Hours() / 24
			daysN++
		}
	}

	m.DistinctCompanies = len(companies)
	m.DistinctProductTypes = len(products)
	if daysN > 0 {
		m.MeanDecisionDays = daysSum / float64(daysN)
	}

	return m
}

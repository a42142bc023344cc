package tablestore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/finragas/decisions-dashboard/pkg/analytics"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultRetryCount = 2
)

// Client reads records over the table store's REST API (PostgREST-style:
// one GET per table with filter operators in the query string).
type Client struct {
	baseURL    string
	apiKey     string
	table      string
	httpClient *resty.Client
}

// storeRow is the wire shape of one table row. Timestamps come back as
// strings in more than one format, so parsing is done by hand below.
type storeRow struct {
	ID           json.Number `json:"id"`
	CreatedAt    string      `json:"created_at"`
	Company      string      `json:"company"`
	ProductType  string      `json:"product_type"`
	Outcome      string      `json:"outcome"`
	CaseNumber   string      `json:"case_number"`
	DecisionDate string      `json:"decision_date"`
}

// NewClient creates a REST table store client for one named table.
func NewClient(baseURL, apiKey, table string) *Client {
	httpClient := resty.New()
	httpClient.SetTimeout(defaultTimeout)
	httpClient.SetRetryCount(defaultRetryCount)
	httpClient.SetRetryWaitTime(1 * time.Second)

	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		table:      table,
		httpClient: httpClient,
	}
}

// FetchRecords queries the table, optionally narrowed to a creation-time
// range, and returns the rows ordered by creation time ascending.
func (c *Client) FetchRecords(ctx context.Context, q Query) ([]analytics.Record, error) {
	params := url.Values{}
	params.Set("select", "*")
	params.Set("order", "created_at.asc")
	if !q.CreatedFrom.IsZero() {
		params.Add("created_at", "gte."+q.CreatedFrom.UTC().Format(time.RFC3339))
	}
	if !q.CreatedTo.IsZero() {
		params.Add("created_at", "lt."+q.CreatedTo.UTC().Format(time.RFC3339))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("apikey", c.apiKey).
		SetHeader("Authorization", "Bearer "+c.apiKey).
		SetQueryParamsFromValues(params).
		Get(c.baseURL + "/rest/v1/" + c.table)

	if err != nil {
		return nil, fmt.Errorf("table store request failed: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("table store returned status %d: %s", resp.StatusCode(), resp.String())
	}

	var rows []storeRow
	if err := json.Unmarshal(resp.Body(), &rows); err != nil {
		return nil, fmt.Errorf("failed to parse table store response: %w", err)
	}

	records := make([]analytics.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, analytics.Record{
			ID:          row.ID.String(),
			CreatedAt:   parseStoreTime(row.CreatedAt),
			Company:     row.Company,
			ProductType: row.ProductType,
			Outcome:     row.Outcome,
			CaseNumber:  row.CaseNumber,
			DecidedAt:   parseStoreTime(row.DecisionDate),
		})
	}

	return records, nil
}

// storeTimeLayouts are the timestamp shapes the hosted store emits,
// depending on column type (timestamptz, timestamp, date).
var storeTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseStoreTime parses one timestamp string, returning the zero time for
// empty or unparseable values. A missing decision date is normal for open
// cases, so it is not an error.
func parseStoreTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range storeTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

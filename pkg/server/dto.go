package server

import (
	"github.com/finragas/decisions-dashboard/pkg/analytics"
	"github.com/finragas/decisions-dashboard/pkg/session"
)

// ChatRequest is one chat turn from the page. SessionID is optional on the
// first turn; the server then mints one and returns it.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// ChatResponse carries the assistant reply. Error marks replies that are
// error text rather than real content.
type ChatResponse struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
	Error     bool   `json:"error,omitempty"`
}

// SessionResponse is the result of creating a session.
type SessionResponse struct {
	SessionID string `json:"session_id"`
}

// HistoryResponse is a session's transcript.
type HistoryResponse struct {
	SessionID string            `json:"session_id"`
	Messages  []session.Message `json:"messages"`
}

// DashboardResponse is everything the dashboard panel renders: metric
// tiles, the per-day series, the monthly per-company cross-tab and the
// category rankings. Empty slices mean the store had no matching rows.
type DashboardResponse struct {
	Overview         analytics.OverviewMetrics `json:"overview"`
	Daily            []analytics.DailySummary  `json:"daily"`
	MonthlyByCompany analytics.MonthlyCrossTab `json:"monthly_by_company"`
	TopCompanies     []analytics.CategoryCount `json:"top_companies"`
	TopProductTypes  []analytics.CategoryCount `json:"top_product_types"`
	Outcomes         []analytics.CategoryCount `json:"outcomes"`
}

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

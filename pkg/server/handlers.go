package server

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/finragas/decisions-dashboard/pkg/analytics"
	"github.com/finragas/decisions-dashboard/pkg/session"
	"github.com/finragas/decisions-dashboard/pkg/tablestore"
)

// monthsShown bounds the monthly cross-tab to the most recent buckets so
// the stacked bar chart stays readable.
const monthsShown = 12

// handleHealth reports liveness.
func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "ok"})
}

// handleCreateSession mints a fresh session id for a new visitor.
func (s *Server) handleCreateSession(c *fiber.Ctx) error {
	sess := s.chat.Sessions().Create()
	return c.Status(http.StatusCreated).JSON(SessionResponse{SessionID: sess.ID})
}

// handleEndSession destroys a session and its transcript.
func (s *Server) handleEndSession(c *fiber.Ctx) error {
	s.chat.Sessions().End(c.Params("id"))
	return c.SendStatus(http.StatusNoContent)
}

// handleHistory returns a session's transcript in order.
func (s *Server) handleHistory(c *fiber.Ctx) error {
	id := c.Params("id")
	sess, ok := s.chat.Sessions().Get(id)
	if !ok {
		return c.Status(http.StatusNotFound).JSON(ErrorResponse{Error: "unknown session"})
	}
	return c.Status(http.StatusOK).JSON(HistoryResponse{SessionID: id, Messages: sess.Messages()})
}

// handleChat runs one chat turn. Upstream failures still produce a 200 with
// an error-flagged reply; the page renders it like any other message.
func (s *Server) handleChat(c *fiber.Ctx) error {
	var req ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	if req.Message == "" {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{Error: "message is required"})
	}

	sessions := s.chat.Sessions()
	var sess *session.Session
	if req.SessionID == "" {
		sess = sessions.Create()
	} else {
		sess = sessions.GetOrCreate(req.SessionID)
	}

	msg, err := s.chat.Send(c.Context(), sess, req.Message)
	if err != nil {
		s.log.WithField("error", err).Error("chat turn failed")
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{Error: "internal server error"})
	}

	return c.Status(http.StatusOK).JSON(ChatResponse{
		SessionID: sess.ID,
		Reply:     msg.Content,
		Error:     msg.Error,
	})
}

// handleDashboard fetches the records and reduces them into the summary
// payload. A store failure degrades to an empty dashboard instead of an
// error page.
func (s *Server) handleDashboard(c *fiber.Ctx) error {
	q := tablestore.Query{}
	if v := c.Query("from"); v != "" {
		t, err := parseRangeTime(v)
		if err != nil {
			return c.Status(http.StatusBadRequest).JSON(ErrorResponse{Error: "invalid 'from' parameter"})
		}
		q.CreatedFrom = t
	}
	if v := c.Query("to"); v != "" {
		t, err := parseRangeTime(v)
		if err != nil {
			return c.Status(http.StatusBadRequest).JSON(ErrorResponse{Error: "invalid 'to' parameter"})
		}
		q.CreatedTo = t
	}

	records, err := s.records.FetchRecords(c.Context(), q)
	if err != nil {
		s.log.WithField("error", err).Warn("table store fetch failed, rendering empty dashboard")
		records = nil
	}

	resp := DashboardResponse{
		Overview:         analytics.Overview(records),
		Daily:            analytics.BucketByDay(records),
		MonthlyByCompany: analytics.BucketByMonth(records).LastN(monthsShown),
		TopCompanies:     analytics.TopCategories(records, func(r analytics.Record) string { return r.Company }, 10),
		TopProductTypes:  analytics.TopCategories(records, func(r analytics.Record) string { return r.ProductType }, 10),
		Outcomes:         analytics.TopCategories(records, func(r analytics.Record) string { return r.Outcome }, 0),
	}

	// Zero-row payloads still need arrays, not nulls, for the chart code.
	if resp.Daily == nil {
		resp.Daily = []analytics.DailySummary{}
	}
	if resp.TopCompanies == nil {
		resp.TopCompanies = []analytics.CategoryCount{}
	}
	if resp.TopProductTypes == nil {
		resp.TopProductTypes = []analytics.CategoryCount{}
	}
	if resp.Outcomes == nil {
		resp.Outcomes = []analytics.CategoryCount{}
	}

	return c.Status(http.StatusOK).JSON(resp)
}

// parseRangeTime accepts RFC3339 timestamps or bare dates for the
// dashboard range parameters.
func parseRangeTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

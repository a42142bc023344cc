// Package server exposes the chat panel and the dashboard panel over HTTP:
// JSON endpoints for the page and the page itself.
package server

import (
	"embed"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/finragas/decisions-dashboard/pkg/chat"
	"github.com/finragas/decisions-dashboard/pkg/tablestore"
)

//go:embed static/index.html
var staticFS embed.FS

// Server wires the chat service and the record source into a fiber app.
type Server struct {
	app     *fiber.App
	chat    *chat.Service
	records tablestore.RecordSource
	log     *logrus.Logger
}

// New builds the app and registers all routes.
func New(chatSvc *chat.Service, records tablestore.RecordSource, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.New()
	}

	s := &Server{
		app: fiber.New(fiber.Config{
			DisableStartupMessage: true,
		}),
		chat:    chatSvc,
		records: records,
		log:     log,
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Get("/health", s.handleHealth)

	api := s.app.Group("/api")
	api.Post("/sessions", s.handleCreateSession)
	api.Delete("/sessions/:id", s.handleEndSession)
	api.Get("/sessions/:id/messages", s.handleHistory)
	api.Post("/chat", s.handleChat)
	api.Get("/dashboard", s.handleDashboard)

	s.app.Get("/", s.handleIndex)
}

// handleIndex serves the embedded single-page UI.
func (s *Server) handleIndex(c *fiber.Ctx) error {
	page, err := staticFS.ReadFile("static/index.html")
	if err != nil {
		return c.SendStatus(http.StatusInternalServerError)
	}
	c.Set("Content-Type", "text/html; charset=utf-8")
	return c.Status(http.StatusOK).Send(page)
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen blocks serving HTTP on addr.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

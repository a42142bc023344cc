// Package chat runs one chat turn end to end: record the user message,
// ask the responder, record the reply. A failed upstream call never fails
// the turn; it becomes an error-flagged assistant message instead, so the
// page always has something to render.
package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/finragas/decisions-dashboard/pkg/session"
	"github.com/finragas/decisions-dashboard/pkg/workflow"
)

// Responder produces the assistant reply for one user message. The session
// id is an opaque correlation key; conversation state lives upstream or in
// the responder itself.
type Responder interface {
	Respond(ctx context.Context, sessionID, input string) (string, error)
}

// ResponderFunc adapts a plain function to the Responder interface, e.g.
// the workflow client's Send method.
type ResponderFunc func(ctx context.Context, sessionID, input string) (string, error)

// Respond calls f.
func (f ResponderFunc) Respond(ctx context.Context, sessionID, input string) (string, error) {
	return f(ctx, sessionID, input)
}

// Service orchestrates chat turns against a responder.
type Service struct {
	responder Responder
	sessions  *session.Manager
	log       *logrus.Logger
}

// NewService creates a chat service.
func NewService(responder Responder, sessions *session.Manager, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.New()
	}
	return &Service{
		responder: responder,
		sessions:  sessions,
		log:       log,
	}
}

// Sessions exposes the session manager for handlers that need to create or
// end sessions directly.
func (s *Service) Sessions() *session.Manager {
	return s.sessions
}

// Send runs one chat turn for the given session and returns the assistant
// message. Upstream failures come back as an error-flagged message, never as
// an error; the returned error is reserved for programming mistakes (nil
// session).
func (s *Service) Send(ctx context.Context, sess *session.Session, text string) (session.Message, error) {
	if sess == nil {
		return session.Message{}, errors.New("chat: nil session")
	}

	sess.Append(session.Message{Role: "user", Content: text})

	output, err := s.responder.Respond(ctx, sess.ID, text)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"session": sess.ID,
			"error":   err,
		}).Warn("assistant call failed")

		msg := session.Message{Role: "assistant", Content: userFacingError(err), Error: true}
		sess.Append(msg)
		return msg, nil
	}

	msg := session.Message{Role: "assistant", Content: output}
	sess.Append(msg)
	return msg, nil
}

// userFacingError turns a responder error into the text shown in the chat.
// The upstream-status form keeps the "Error: <status> - <body>" shape users
// of the previous page version already know.
func userFacingError(err error) string {
	var upstream *workflow.UpstreamError
	if errors.As(err, &upstream) {
		return fmt.Sprintf("Error: %d - %s", upstream.Status, upstream.Body)
	}

	var auth *workflow.AuthError
	if errors.As(err, &auth) {
		return fmt.Sprintf("Error: the assistant rejected our credentials (status %d). Please check the configured token.", auth.Status)
	}

	if errors.Is(err, workflow.ErrEmptyReply) {
		return "Error: the assistant returned an empty reply. Please try again."
	}

	var network *workflow.NetworkError
	if errors.As(err, &network) {
		return "Error: could not reach the assistant. Please try again in a moment."
	}

	return fmt.Sprintf("Error: %v", err)
}

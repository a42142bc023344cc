// Package workflow talks to the remote chat workflow webhook. One user chat
// turn is one POST; the webhook runs the retrieval pipeline and returns the
// assistant reply as a JSON output field.
package workflow

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

// Default client limits. The upstream pipeline can take a while on long
// retrieval chains, so the timeout is generous.
const (
	DefaultTimeout           = 60 * time.Second
	DefaultRetryCount        = 2
	DefaultRetryWaitTime     = 1 * time.Second
	DefaultRequestsPerSecond = 5
)

// Options tunes the client. Zero values fall back to the defaults above.
type Options struct {
	Timeout           time.Duration
	RetryCount        int
	RequestsPerSecond float64
}

// Client is the chat webhook client.
type Client struct {
	url        string
	token      string
	httpClient *resty.Client
	limiter    *rate.Limiter
}

// chatPayload is the wire format the workflow expects for one chat turn.
type chatPayload struct {
	SessionID string `json:"sessionId"`
	ChatInput string `json:"chatInput"`
}

// chatReply is the success body. Extra fields are ignored.
type chatReply struct {
	Output string `json:"output"`
}

// NewClient creates a webhook client for the given endpoint and bearer token.
func NewClient(url, token string, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	// Zero means default; disable retries with a negative count.
	if opts.RetryCount == 0 {
		opts.RetryCount = DefaultRetryCount
	} else if opts.RetryCount < 0 {
		opts.RetryCount = 0
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = DefaultRequestsPerSecond
	}

	httpClient := resty.New()
	httpClient.SetTimeout(opts.Timeout)
	httpClient.SetRetryCount(opts.RetryCount)
	httpClient.SetRetryWaitTime(DefaultRetryWaitTime)
	httpClient.SetHeader("Content-Type", "application/json")
	// Transport failures retry out of the box; 5xx from the workflow host
	// (gateway restarts, cold starts) are worth the same bounded retry.
	httpClient.AddRetryCondition(func(r *resty.Response, err error) bool {
		return err == nil && r.StatusCode() >= http.StatusInternalServerError
	})

	return &Client{
		url:        url,
		token:      token,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
	}
}

// Send posts one chat turn and returns the assistant reply text. The session
// id is an opaque correlation key; the webhook keeps whatever conversation
// state it needs on its side.
func (c *Client) Send(ctx context.Context, sessionID, chatInput string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", &NetworkError{Err: err}
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+c.token).
		SetBody(chatPayload{SessionID: sessionID, ChatInput: chatInput}).
		Post(c.url)

	if err != nil {
		return "", &NetworkError{Err: err}
	}

	switch status := resp.StatusCode(); {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return "", &AuthError{Status: status}
	case status != http.StatusOK:
		return "", &UpstreamError{Status: status, Body: resp.String()}
	}

	var reply chatReply
	if err := json.Unmarshal(resp.Body(), &reply); err != nil {
		return "", &UpstreamError{Status: resp.StatusCode(), Body: resp.String()}
	}

	if reply.Output == "" {
		return "", ErrEmptyReply
	}

	return reply.Output, nil
}

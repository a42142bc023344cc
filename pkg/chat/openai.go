package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// defaultSystemPrompt frames the assistant for deployments that answer
// directly from a model instead of the retrieval workflow.
const defaultSystemPrompt = "You are an assistant for browsing insurance dispute decisions. " +
	"Answer concisely and say so when you do not know."

// OpenAIResponder answers chat turns with a direct model call, for
// deployments that run without the workflow webhook.
type OpenAIResponder struct {
	client *openai.Client
	model  string
}

// NewOpenAIResponder creates a responder for the given API key and model.
// An empty model falls back to GPT-4.
func NewOpenAIResponder(apiKey, model string) (*OpenAIResponder, error) {
	if apiKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}
	if model == "" {
		model = openai.GPT4
	}

	return &OpenAIResponder{
		client: openai.NewClient(apiKey),
		model:  model,
	}, nil
}

// Respond performs a single-turn completion. The session id is only used
// for request attribution; the transcript already lives in the session
// store, and the workflow deployment is the one carrying multi-turn state.
func (r *OpenAIResponder) Respond(ctx context.Context, sessionID, input string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: r.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: defaultSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: input},
		},
		User: sessionID,
	}

	resp, err := r.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no response from OpenAI")
	}

	return resp.Choices[0].Message.Content, nil
}

// Package clients holds outbound HTTP clients of the usage service.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultChatEndpoint is the OpenAI chat completions URL.
const DefaultChatEndpoint = "https://api.openai.com/v1/chat/completions"

const maxCompletionBytes = 1 << 20

var (
	// ErrEmptyCompletion is returned when the provider answers without choices.
	ErrEmptyCompletion = errors.New("chat provider returned no choices")
	// ErrCompletionTooLarge is returned when the provider response exceeds maxCompletionBytes.
	ErrCompletionTooLarge = errors.New("chat provider response too large")
)

// HTTPDoer is the subset of *http.Client the clients need.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// NewDefaultHTTPClient returns *http.Client with timeout.
func NewDefaultHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// ChatMessage is one turn of a conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message ChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// LLMClient talks to an OpenAI-compatible chat completions endpoint.
type LLMClient struct {
	endpoint string
	client   HTTPDoer
	model    string
	apiKey   string
}

// NewLLMClient returns client for the endpoint. An empty endpoint selects DefaultChatEndpoint.
func NewLLMClient(endpoint, model, apiKey string, httpClient HTTPDoer) *LLMClient {
	if endpoint == "" {
		endpoint = DefaultChatEndpoint
	}
	return &LLMClient{
		endpoint: endpoint,
		client:   httpClient,
		model:    model,
		apiKey:   apiKey,
	}
}

// Complete sends the conversation and returns the first reply.
func (c *LLMClient) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	payload, err := json.Marshal(chatRequest{Model: c.model, Messages: messages})
	if err != nil {
		return "", fmt.Errorf("encode chat request: %w", err)
	}

	status, body, err := c.post(ctx, payload)
	if err != nil {
		return "", err
	}

	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil && status < 300 {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if status >= 300 {
		if resp.Error != nil && resp.Error.Message != "" {
			return "", fmt.Errorf("chat provider status %d: %s", status, resp.Error.Message)
		}
		return "", fmt.Errorf("chat provider status %d", status)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (c *LLMClient) post(ctx context.Context, payload []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("query chat provider: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxCompletionBytes+1))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read chat response: %w", err)
	}
	if len(body) > maxCompletionBytes {
		return resp.StatusCode, nil, ErrCompletionTooLarge
	}
	return resp.StatusCode, body, nil
}

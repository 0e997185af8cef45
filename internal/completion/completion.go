// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package completion is the gateway to the hosted completion service. It
// sends one assembled prompt per request, enforces the timeout bound, and
// normalizes every failure into the pipeline error taxonomy.
// See docs/ARCHITECTURE.md § Completion Gateway.
package completion

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	apperrors "github.com/pdiddy/constitution-qa/internal/errors"
	"github.com/pdiddy/constitution-qa/internal/httputil"
	"github.com/pdiddy/constitution-qa/internal/prompt"
	"github.com/pdiddy/constitution-qa/pkg/types"
)

// defaultAPIURL is the chat-completions endpoint used when the config
// does not override it. Tests point BaseURL at an httptest server.
const defaultAPIURL = "https://openrouter.ai/api/v1/chat/completions"

const defaultTimeout = 60 * time.Second

// Client calls the completion service. Construct with NewClient; the
// credential is held privately and never appears in errors or logs.
type Client struct {
	client     *http.Client
	url        string
	apiKey     string
	referer    string
	appTitle   string
	maxRetries int
}

// chatRequest is the request body for the chat-completions API.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

// chatMessage is a single message in the conversation.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the response body from the chat-completions API.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// NewClient creates a completion client from config.
func NewClient(cfg types.CompletionConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("completion: API key is required")
	}

	url := cfg.BaseURL
	if url == "" {
		url = defaultAPIURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &Client{
		client:     &http.Client{Timeout: timeout},
		url:        url,
		apiKey:     cfg.APIKey,
		referer:    cfg.Referer,
		appTitle:   cfg.AppTitle,
		maxRetries: cfg.MaxRetries,
	}, nil
}

// Complete sends one payload to the completion service and returns the
// first choice's content verbatim. Failures come back as coded pipeline
// errors (upstream, malformed response, or timeout); the upstream body is
// preserved in the error detail for operators.
func (c *Client) Complete(ctx context.Context, p prompt.Payload) (string, error) {
	reqBody := chatRequest{
		Model: p.Model,
		Messages: []chatMessage{
			{Role: "system", Content: p.System},
			{Role: "user", Content: p.User},
		},
		Temperature: p.Temperature,
		MaxTokens:   p.MaxTokens,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if c.referer != "" {
		req.Header.Set("HTTP-Referer", c.referer)
	}
	if c.appTitle != "" {
		req.Header.Set("X-Title", c.appTitle)
	}

	resp, err := httputil.DoWithRetry(ctx, c.client, req, c.maxRetries)
	if err != nil {
		if isTimeout(err) {
			return "", apperrors.Wrap(apperrors.KindTimeout, "completion request timed out", err)
		}
		return "", apperrors.Wrap(apperrors.KindUpstream, "completion request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.Wrap(apperrors.KindUpstream, "reading completion response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", apperrors.New(apperrors.KindUpstream,
			fmt.Sprintf("completion service returned %d: %s", resp.StatusCode, string(body)))
	}

	var cResp chatResponse
	if err := json.Unmarshal(body, &cResp); err != nil {
		return "", apperrors.Wrap(apperrors.KindMalformedResponse, "decoding completion response", err)
	}

	if len(cResp.Choices) == 0 || cResp.Choices[0].Message.Content == "" {
		return "", apperrors.New(apperrors.KindMalformedResponse,
			"completion response has no choices content")
	}

	return cResp.Choices[0].Message.Content, nil
}

// isTimeout reports whether err is a deadline or network timeout rather
// than a hard transport failure.
func isTimeout(err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return stderrors.As(err, &ne) && ne.Timeout()
}

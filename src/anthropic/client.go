// Package anthropic implements the chat.Backend against an Anthropic-style
// Messages HTTP endpoint (the direct API or a Bedrock-compatible proxy).
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/alexboden/occam-claw/src/chat"
)

const (
	defaultBaseURL = "https://api.anthropic.com/v1"
	defaultTimeout = 120 * time.Second
	apiVersion     = "2023-06-01"
)

// Config holds client settings.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
	Logger  *slog.Logger
}

// Client talks to the Messages endpoint. It performs no internal retries;
// retry policy, if any, belongs to the caller.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ chat.Backend = (*Client)(nil)

// NewClient creates a Messages API client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.With("component", "anthropic_client"),
	}
}

// CreateMessage sends one Messages request. The configured model is applied
// when the request does not name one.
func (c *Client) CreateMessage(ctx context.Context, req *chat.MessageRequest) (*chat.MessageResponse, error) {
	if req.Model == "" {
		req.Model = c.model
	}

	logger := c.logger.With("model", req.Model)
	logger.Debug("sending messages request", "messages", len(req.Messages), "tools", len(req.Tools))

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", apiVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("messages request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.handleError(resp)
	}

	var result chat.MessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	logger.Debug("messages request completed", "stop_reason", result.StopReason)
	return &result, nil
}

func (c *Client) handleError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	var apiErr struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error.Message != "" {
		return &APIError{Status: resp.StatusCode, Type: apiErr.Error.Type, Message: apiErr.Error.Message}
	}
	return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(data))}
}

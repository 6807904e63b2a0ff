package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexboden/occam-claw/src/chat"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{BaseURL: server.URL, APIKey: "sk-test", Model: "claude-sonnet-4-20250514"})
}

func TestCreateMessageSetsHeadersAndModel(t *testing.T) {
	var gotReq chat.MessageRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "sk-test", r.Header.Get("x-api-key"))
		assert.Equal(t, apiVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		json.NewEncoder(w).Encode(chat.MessageResponse{
			Content:    []chat.ContentBlock{chat.TextBlock("hello")},
			StopReason: "end_turn",
		})
	})

	resp, err := c.CreateMessage(context.Background(), &chat.MessageRequest{
		MaxTokens: 1024,
		Messages:  []chat.Message{chat.UserText("hi")},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Text())
	// The configured default model fills in when the request names none.
	assert.Equal(t, "claude-sonnet-4-20250514", gotReq.Model)
}

func TestCreateMessageDecodesAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"type":"rate_limit_error","message":"slow down"}}`)
	})

	_, err := c.CreateMessage(context.Background(), &chat.MessageRequest{
		Messages: []chat.Message{chat.UserText("hi")},
	})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.Status)
	assert.Equal(t, "rate_limit_error", apiErr.Type)
	assert.Equal(t, "slow down", apiErr.Message)
}

func TestCreateMessageNonJSONError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	_, err := c.CreateMessage(context.Background(), &chat.MessageRequest{})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Contains(t, apiErr.Message, "bad gateway")
}

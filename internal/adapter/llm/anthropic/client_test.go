package anthropic_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prsentry/prsentry/internal/adapter/llm/anthropic"
	"github.com/prsentry/prsentry/internal/adapter/upstream"
)

func TestClient_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		var req anthropic.MessagesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "claude-sonnet-4-20250514", req.Model)
		assert.Equal(t, 4000, req.MaxTokens)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)
		require.Len(t, req.Messages[0].Content, 1)
		assert.Equal(t, "text", req.Messages[0].Content[0].Type)
		assert.Equal(t, "review this", req.Messages[0].Content[0].Text)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id":"msg_1","type":"message","role":"assistant","model":"claude-sonnet-4-20250514",
			"content":[{"type":"text","text":"[]"}],
			"usage":{"input_tokens":10,"output_tokens":2}
		}`))
	}))
	defer server.Close()

	client := anthropic.NewClient("test-key", "claude-sonnet-4-20250514")
	client.SetBaseURL(server.URL)

	text, err := client.Complete(context.Background(), "review this", 4000)
	require.NoError(t, err)
	assert.Equal(t, "[]", text)
}

func TestClient_Complete_JoinsTextBlocks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"content":[{"type":"text","text":"part one "},{"type":"text","text":"part two"}]
		}`))
	}))
	defer server.Close()

	client := anthropic.NewClient("test-key", "claude-sonnet-4-20250514")
	client.SetBaseURL(server.URL)

	text, err := client.Complete(context.Background(), "prompt", 100)
	require.NoError(t, err)
	assert.Equal(t, "part one part two", text)
}

func TestClient_Complete_MapsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(529)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`))
	}))
	defer server.Close()

	client := anthropic.NewClient("test-key", "claude-sonnet-4-20250514")
	client.SetBaseURL(server.URL)

	_, err := client.Complete(context.Background(), "prompt", 100)
	require.Error(t, err)

	var upErr *upstream.Error
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, upstream.ErrTypeServiceUnavailable, upErr.Type)
	assert.Equal(t, "Overloaded", upErr.Message)
	assert.Equal(t, "anthropic", upErr.Provider)
}

func TestClient_Complete_EmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":[]}`))
	}))
	defer server.Close()

	client := anthropic.NewClient("test-key", "claude-sonnet-4-20250514")
	client.SetBaseURL(server.URL)

	_, err := client.Complete(context.Background(), "prompt", 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no content")
}

func TestClient_Complete_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := anthropic.NewClient("test-key", "claude-sonnet-4-20250514")
	client.SetBaseURL("http://127.0.0.1:1")

	_, err := client.Complete(ctx, "prompt", 100)
	require.Error(t, err)

	var upErr *upstream.Error
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, upstream.ErrTypeTransport, upErr.Type)
}

func TestClient_Complete_DeadlineExceededIsTimeout(t *testing.T) {
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	client := anthropic.NewClient("test-key", "claude-sonnet-4-20250514")
	client.SetBaseURL("http://127.0.0.1:1")

	_, err := client.Complete(ctx, "prompt", 100)
	require.Error(t, err)

	var upErr *upstream.Error
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, upstream.ErrTypeTimeout, upErr.Type)
}

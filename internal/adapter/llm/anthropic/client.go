// Package anthropic is an HTTP client for the Anthropic Messages API. The
// review flow makes a single-turn completion per pull request; there is no
// streaming, no conversation state, and no retrying.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/prsentry/prsentry/internal/adapter/upstream"
)

const (
	defaultBaseURL          = "https://api.anthropic.com"
	defaultAnthropicVersion = "2023-06-01"

	// A single-turn completion over a large prompt can legitimately take
	// more than a minute, so the default wait is generous.
	defaultTimeout = 90 * time.Second

	providerName = "anthropic"
)

// Client is an HTTP client for the Anthropic Messages API.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewClient creates a Messages API client for the given model.
func NewClient(apiKey, model string) *Client {
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: defaultTimeout},
	}
}

// SetBaseURL sets a custom base URL (for testing).
func (c *Client) SetBaseURL(url string) {
	c.baseURL = strings.TrimRight(url, "/")
}

// SetTimeout sets the HTTP timeout.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.client.Timeout = timeout
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// Complete sends a single user prompt and returns the concatenated text of
// the response content blocks.
func (c *Client) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	reqBody := MessagesRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages: []Message{
			{
				Role: "user",
				Content: []ContentBlock{
					{Type: "text", Text: prompt},
				},
			},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.baseURL + "/v1/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", defaultAnthropicVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", upstream.NewTransportError(providerName, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return "", mapErrorResponse(resp.StatusCode, bodyBytes)
	}

	var messagesResp MessagesResponse
	if err := json.Unmarshal(bodyBytes, &messagesResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if len(messagesResp.Content) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var textParts []string
	for _, block := range messagesResp.Content {
		if block.Type == "text" {
			textParts = append(textParts, block.Text)
		}
	}
	return strings.Join(textParts, ""), nil
}

// mapErrorResponse maps HTTP status codes to typed upstream errors.
func mapErrorResponse(statusCode int, body []byte) error {
	message := fmt.Sprintf("HTTP %d", statusCode)
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		message = errResp.Error.Message
	}

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &upstream.Error{
			Type:       upstream.ErrTypeAuthentication,
			Message:    message,
			StatusCode: statusCode,
			Provider:   providerName,
		}
	case http.StatusTooManyRequests:
		return &upstream.Error{
			Type:       upstream.ErrTypeRateLimit,
			Message:    message,
			StatusCode: statusCode,
			Provider:   providerName,
		}
	case http.StatusBadRequest, http.StatusNotFound:
		return &upstream.Error{
			Type:       upstream.ErrTypeInvalidRequest,
			Message:    message,
			StatusCode: statusCode,
			Provider:   providerName,
		}
	case 529: // Anthropic-specific: overloaded
		return &upstream.Error{
			Type:       upstream.ErrTypeServiceUnavailable,
			Message:    message,
			StatusCode: statusCode,
			Provider:   providerName,
		}
	case http.StatusInternalServerError, http.StatusServiceUnavailable:
		return &upstream.Error{
			Type:       upstream.ErrTypeServiceUnavailable,
			Message:    message,
			StatusCode: statusCode,
			Provider:   providerName,
		}
	default:
		return &upstream.Error{
			Type:       upstream.ErrTypeUnknown,
			Message:    message,
			StatusCode: statusCode,
			Provider:   providerName,
		}
	}
}

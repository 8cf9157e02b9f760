// Package github is an HTTP client for the GitHub pull request APIs used by
// the review flow: listing changed files, reading the head SHA, and posting
// the finished review.
package github

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
	"github.com/prsentry/prsentry/internal/domain"
)

const (
	defaultBaseURL = "https://api.github.com"
	defaultTimeout = 30 * time.Second
)

// Client is an HTTP client for the GitHub REST API. Calls are not retried;
// a failed call surfaces as a typed upstream error and the webhook request
// that triggered it fails as a whole.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a GitHub API client authenticated with the given token.
func NewClient(token string) *Client {
	return &Client{
		token:      token,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// SetBaseURL sets a custom base URL (for testing).
func (c *Client) SetBaseURL(url string) {
	c.baseURL = strings.TrimRight(url, "/")
}

// SetTimeout sets the HTTP timeout.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.httpClient.Timeout = timeout
}

// ListPullRequestFiles fetches the changed files for a pull request.
func (c *Client) ListPullRequestFiles(ctx context.Context, repoFullName string, number int) ([]domain.ChangedFile, error) {
	url := fmt.Sprintf("%s/repos/%s/pulls/%d/files", c.baseURL, repoFullName, number)

	var files []domain.ChangedFile
	if err := c.do(ctx, http.MethodGet, url, nil, &files); err != nil {
		return nil, err
	}
	return files, nil
}

// GetPullRequest fetches the pull request detail, which carries the head
// commit SHA the review must attach to.
func (c *Client) GetPullRequest(ctx context.Context, repoFullName string, number int) (PullRequestDetail, error) {
	url := fmt.Sprintf("%s/repos/%s/pulls/%d", c.baseURL, repoFullName, number)

	var detail PullRequestDetail
	if err := c.do(ctx, http.MethodGet, url, nil, &detail); err != nil {
		return PullRequestDetail{}, err
	}
	return detail, nil
}

// CreateReview posts a pull request review with inline comments.
func (c *Client) CreateReview(ctx context.Context, repoFullName string, number int, review CreateReviewRequest) (CreateReviewResponse, error) {
	url := fmt.Sprintf("%s/repos/%s/pulls/%d/reviews", c.baseURL, repoFullName, number)

	var resp CreateReviewResponse
	if err := c.do(ctx, http.MethodPost, url, review, &resp); err != nil {
		return CreateReviewResponse{}, err
	}
	return resp, nil
}

// do executes one API call and decodes the JSON response into out.
func (c *Client) do(ctx context.Context, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return upstream.NewTransportError(providerName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		bodyBytes, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return &upstream.Error{
				Type:       upstream.ErrTypeUnknown,
				Message:    fmt.Sprintf("HTTP %d (failed to read response: %v)", resp.StatusCode, readErr),
				StatusCode: resp.StatusCode,
				Provider:   providerName,
			}
		}
		return MapHTTPError(resp.StatusCode, bodyBytes)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

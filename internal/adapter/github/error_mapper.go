package github

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/prsentry/prsentry/internal/adapter/upstream"
)

const providerName = "github"

// MapHTTPError maps GitHub API HTTP status codes to typed upstream errors.
func MapHTTPError(statusCode int, body []byte) *upstream.Error {
	message := parseErrorMessage(statusCode, body)

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

	case http.StatusNotFound:
		return &upstream.Error{
			Type:       upstream.ErrTypeNotFound,
			Message:    message,
			StatusCode: statusCode,
			Provider:   providerName,
		}

	case http.StatusUnprocessableEntity:
		return &upstream.Error{
			Type:       upstream.ErrTypeInvalidRequest,
			Message:    message,
			StatusCode: statusCode,
			Provider:   providerName,
		}

	case http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable:
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

// parseErrorMessage extracts a readable error message from GitHub's response.
func parseErrorMessage(statusCode int, body []byte) string {
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Message == "" {
		preview := string(body)
		if len(preview) > 100 {
			preview = preview[:100] + "..."
		}
		if preview == "" {
			return fmt.Sprintf("HTTP %d", statusCode)
		}
		return fmt.Sprintf("HTTP %d: %s", statusCode, preview)
	}

	if len(errResp.Errors) > 0 {
		var details []string
		for _, e := range errResp.Errors {
			if e.Message != "" {
				details = append(details, e.Message)
			} else if e.Field != "" {
				details = append(details, fmt.Sprintf("%s: %s", e.Field, e.Code))
			}
		}
		if len(details) > 0 {
			return fmt.Sprintf("%s: %s", errResp.Message, strings.Join(details, "; "))
		}
	}

	return errResp.Message
}

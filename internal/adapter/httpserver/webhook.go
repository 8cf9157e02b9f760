package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/prsentry/prsentry/internal/adapter/observability"
	"github.com/prsentry/prsentry/internal/domain"
	"github.com/prsentry/prsentry/internal/usecase/review"
)

// ReviewRunner is the slice of the review use case the webhook handler
// depends on.
type ReviewRunner interface {
	Run(ctx context.Context, event domain.WebhookEvent) (review.Result, error)
}

// WebhookHandler accepts GitHub webhook deliveries and drives the review
// pipeline for the ones that qualify.
type WebhookHandler struct {
	reviewer ReviewRunner
	logger   *observability.Logger
}

func NewWebhookHandler(reviewer ReviewRunner, logger *observability.Logger) *WebhookHandler {
	return &WebhookHandler{reviewer: reviewer, logger: logger}
}

func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if event := r.Header.Get("X-GitHub-Event"); event != "pull_request" {
		h.logInfo("event ignored", map[string]any{"event": event})
		writeJSON(w, http.StatusOK, map[string]any{"message": "Event ignored"})
		return
	}

	var event domain.WebhookEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"message": fmt.Sprintf("invalid webhook payload: %v", err),
		})
		return
	}
	if event.Repository.FullName == "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"message": "invalid webhook payload: repository.full_name is required",
		})
		return
	}
	if event.PullRequest.Number <= 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"message": "invalid webhook payload: pull_request.number is required",
		})
		return
	}

	if event.Action != domain.ActionOpened && event.Action != domain.ActionSynchronize {
		h.logInfo("action ignored", map[string]any{
			"action": event.Action,
			"repo":   event.Repository.FullName,
			"pr":     event.PullRequest.Number,
		})
		writeJSON(w, http.StatusOK, map[string]any{
			"message": fmt.Sprintf("Action '%s' ignored", event.Action),
		})
		return
	}

	h.logInfo("review started", map[string]any{
		"action": event.Action,
		"repo":   event.Repository.FullName,
		"pr":     event.PullRequest.Number,
	})

	result, err := h.reviewer.Run(r.Context(), event)
	if err != nil {
		h.writeInternalError(w, event, err)
		return
	}

	h.logInfo("review posted", map[string]any{
		"repo":     event.Repository.FullName,
		"pr":       result.PRNumber,
		"comments": result.CommentsCount,
		"review":   result.ReviewID,
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"message":        "Review posted successfully",
		"pr_number":      result.PRNumber,
		"comments_count": result.CommentsCount,
	})
}

// writeInternalError hides the upstream detail behind a correlation id. The
// caller gets the id only; operators match it against the error log entry.
func (h *WebhookHandler) writeInternalError(w http.ResponseWriter, event domain.WebhookEvent, err error) {
	id := uuid.NewString()
	if h.logger != nil {
		h.logger.Error("review failed", map[string]any{
			"id":    id,
			"repo":  event.Repository.FullName,
			"pr":    event.PullRequest.Number,
			"error": err.Error(),
		})
	}
	writeJSON(w, http.StatusInternalServerError, map[string]any{
		"status":  http.StatusInternalServerError,
		"id":      id,
		"message": "internal server error",
	})
}

func (h *WebhookHandler) logInfo(msg string, fields map[string]any) {
	if h.logger != nil {
		h.logger.Info(msg, fields)
	}
}

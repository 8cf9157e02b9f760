// Package review orchestrates one pull-request review run: fetch the
// changed files and head SHA, ask the model for suggestions, and post the
// result back to GitHub as a review.
package review

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/prsentry/prsentry/internal/adapter/github"
	"github.com/prsentry/prsentry/internal/adapter/observability"
	"github.com/prsentry/prsentry/internal/domain"
)

const (
	// completionMaxTokens is the output budget for the review completion.
	completionMaxTokens = 4000

	reviewBodyClean    = "🤖 **AI Code Review**: No issues found! The code looks good."
	reviewBodyFindings = "🤖 **AI Code Review**: Found %d suggestion(s) for improvement."
)

// GitHubClient is the slice of the GitHub adapter the reviewer needs.
type GitHubClient interface {
	ListPullRequestFiles(ctx context.Context, repoFullName string, number int) ([]domain.ChangedFile, error)
	GetPullRequest(ctx context.Context, repoFullName string, number int) (github.PullRequestDetail, error)
	CreateReview(ctx context.Context, repoFullName string, number int, review github.CreateReviewRequest) (github.CreateReviewResponse, error)
}

// Completer is a single-turn LLM completion client.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
	Model() string
}

// Reviewer runs the review pipeline for qualifying webhook events.
type Reviewer struct {
	github  GitHubClient
	llm     Completer
	logger  *observability.Logger
	metrics *observability.Metrics
}

// NewReviewer wires the reviewer's collaborators. Logger and metrics may be
// nil.
func NewReviewer(gh GitHubClient, llm Completer, logger *observability.Logger, metrics *observability.Metrics) *Reviewer {
	return &Reviewer{github: gh, llm: llm, logger: logger, metrics: metrics}
}

// Result summarizes a completed review run.
type Result struct {
	PRNumber      int
	CommentsCount int
	ReviewID      int64
}

// Run executes the full pipeline for one pull request. The file listing and
// the head-SHA lookup share no data, so they run concurrently; everything
// after them is strictly sequential because each step consumes the previous
// step's output. Any upstream failure aborts the run; nothing is retried.
func (r *Reviewer) Run(ctx context.Context, event domain.WebhookEvent) (Result, error) {
	ref := domain.PullRequestRef{
		RepoFullName: event.Repository.FullName,
		Number:       event.PullRequest.Number,
	}

	var (
		files  []domain.ChangedFile
		detail github.PullRequestDetail
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		files, err = r.timedFiles(gctx, ref)
		return err
	})
	g.Go(func() error {
		var err error
		detail, err = r.timedDetail(gctx, ref)
		return err
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	if detail.Head.SHA == "" {
		return Result{}, fmt.Errorf("pull request %s#%d has no head SHA", ref.RepoFullName, ref.Number)
	}

	prompt, err := BuildPrompt(event.PullRequest.Title, event.PullRequest.Body, files)
	if err != nil {
		return Result{}, err
	}

	start := time.Now()
	text, err := r.llm.Complete(ctx, prompt, completionMaxTokens)
	r.observe("anthropic", start)
	if err != nil {
		return Result{}, err
	}

	comments := ExtractComments(text)
	r.logDebug("model response extracted", map[string]any{
		"pr":       ref.Number,
		"model":    r.llm.Model(),
		"comments": len(comments),
		"response": observability.TruncateForLogging(text, 200),
	})

	resp, err := r.postReview(ctx, ref, detail.Head.SHA, comments)
	if err != nil {
		return Result{}, err
	}

	if r.metrics != nil {
		r.metrics.ReviewsPosted.Inc()
		r.metrics.ReviewCommentsTotal.Add(float64(len(comments)))
	}

	return Result{
		PRNumber:      ref.Number,
		CommentsCount: len(comments),
		ReviewID:      resp.ID,
	}, nil
}

func (r *Reviewer) postReview(ctx context.Context, ref domain.PullRequestRef, commitSHA string, comments []domain.ReviewComment) (github.CreateReviewResponse, error) {
	req := github.CreateReviewRequest{
		CommitID: commitSHA,
		Event:    github.EventComment,
	}

	if len(comments) == 0 {
		req.Body = reviewBodyClean
	} else {
		req.Body = fmt.Sprintf(reviewBodyFindings, len(comments))
		req.Comments = make([]github.ReviewCommentRequest, 0, len(comments))
		for _, c := range comments {
			req.Comments = append(req.Comments, github.ReviewCommentRequest{
				Path: c.Path,
				Line: c.Line,
				Side: c.Side,
				Body: c.Body,
			})
		}
	}

	start := time.Now()
	resp, err := r.github.CreateReview(ctx, ref.RepoFullName, ref.Number, req)
	r.observe("github", start)
	return resp, err
}

func (r *Reviewer) timedFiles(ctx context.Context, ref domain.PullRequestRef) ([]domain.ChangedFile, error) {
	start := time.Now()
	files, err := r.github.ListPullRequestFiles(ctx, ref.RepoFullName, ref.Number)
	r.observe("github", start)
	return files, err
}

func (r *Reviewer) timedDetail(ctx context.Context, ref domain.PullRequestRef) (github.PullRequestDetail, error) {
	start := time.Now()
	detail, err := r.github.GetPullRequest(ctx, ref.RepoFullName, ref.Number)
	r.observe("github", start)
	return detail, err
}

func (r *Reviewer) observe(provider string, start time.Time) {
	if r.metrics != nil {
		r.metrics.UpstreamDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	}
}

func (r *Reviewer) logDebug(msg string, fields map[string]any) {
	if r.logger != nil {
		r.logger.Debug(msg, fields)
	}
}

package github

// GitHub REST API wire types.
// See: https://docs.github.com/en/rest/pulls

// ReviewEvent represents the action to take when submitting a review.
type ReviewEvent string

const (
	// EventComment submits the review without approval.
	EventComment ReviewEvent = "COMMENT"
)

// PullRequestDetail is the subset of GET /repos/{o}/{r}/pulls/{n} we consume.
type PullRequestDetail struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	Head   Head   `json:"head"`
}

// Head identifies the head commit of a pull request.
type Head struct {
	SHA string `json:"sha"`
}

// CreateReviewRequest is the body for POST /repos/{o}/{r}/pulls/{n}/reviews.
type CreateReviewRequest struct {
	// CommitID is the SHA of the head commit the review attaches to.
	CommitID string `json:"commit_id"`

	// Body is the review summary comment.
	Body string `json:"body"`

	// Event is the review action; this service only ever comments.
	Event ReviewEvent `json:"event"`

	// Comments are inline comments anchored to file/line/side.
	Comments []ReviewCommentRequest `json:"comments,omitempty"`
}

// ReviewCommentRequest is one inline comment in a review submission.
type ReviewCommentRequest struct {
	Path string `json:"path"`
	Line int    `json:"line"`
	Side string `json:"side"`
	Body string `json:"body"`
}

// CreateReviewResponse is the response from the review creation endpoint.
type CreateReviewResponse struct {
	ID          int64  `json:"id"`
	Body        string `json:"body"`
	State       string `json:"state"`
	HTMLURL     string `json:"html_url"`
	SubmittedAt string `json:"submitted_at"`
}

// ErrorResponse represents an error response from the GitHub API.
type ErrorResponse struct {
	Message          string `json:"message"`
	DocumentationURL string `json:"documentation_url"`
	Errors           []struct {
		Resource string `json:"resource"`
		Field    string `json:"field"`
		Code     string `json:"code"`
		Message  string `json:"message"`
	} `json:"errors,omitempty"`
}

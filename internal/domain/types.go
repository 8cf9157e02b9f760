package domain

// Comment sides as understood by the GitHub review API.
const (
	SideLeft  = "LEFT"
	SideRight = "RIGHT"
)

// Actions on a pull_request webhook event that trigger a review.
const (
	ActionOpened      = "opened"
	ActionSynchronize = "synchronize"
)

// Repository identifies the repository a webhook event belongs to.
type Repository struct {
	FullName string `json:"full_name"`
}

// PullRequest is the subset of the webhook pull_request object we consume.
type PullRequest struct {
	Number  int    `json:"number"`
	Title   string `json:"title"`
	Body    string `json:"body"`
	HTMLURL string `json:"html_url"`
}

// WebhookEvent is the inbound GitHub pull_request webhook payload.
type WebhookEvent struct {
	Action      string      `json:"action"`
	PullRequest PullRequest `json:"pull_request"`
	Repository  Repository  `json:"repository"`
}

// PullRequestRef identifies the target of one review run.
// Ephemeral: it lives only for the duration of a single request.
type PullRequestRef struct {
	RepoFullName string
	Number       int
}

// ChangedFile captures one entry from the PR files listing.
type ChangedFile struct {
	Filename  string `json:"filename"`
	Status    string `json:"status"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	Patch     string `json:"patch"`
}

// ReviewComment is a single model-generated suggestion anchored to a line.
type ReviewComment struct {
	Path string `json:"path"`
	Line int    `json:"line"`
	Side string `json:"side"`
	Body string `json:"body"`
}

// Valid reports whether the comment carries the fields required to anchor
// it on GitHub. Side is optional; callers default it to RIGHT.
func (c ReviewComment) Valid() bool {
	return c.Path != "" && c.Line > 0 && c.Body != ""
}

package review

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/prsentry/prsentry/internal/domain"
)

const (
	// maxFiles bounds how many changed files feed the prompt.
	maxFiles = 10

	// maxPatchChars bounds the unified diff excerpt per file.
	maxPatchChars = 3000
)

// FileSummary is the per-file slice of a changed file embedded in the prompt.
type FileSummary struct {
	Filename  string `json:"filename"`
	Status    string `json:"status"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	Patch     string `json:"patch"`
}

// SummarizeFiles caps the changed-file list at maxFiles entries and each
// patch at maxPatchChars characters, bounding the prompt regardless of how
// large the pull request is.
func SummarizeFiles(files []domain.ChangedFile) []FileSummary {
	if len(files) > maxFiles {
		files = files[:maxFiles]
	}

	summaries := make([]FileSummary, 0, len(files))
	for _, f := range files {
		patch := f.Patch
		if len(patch) > maxPatchChars {
			patch = patch[:maxPatchChars]
		}
		summaries = append(summaries, FileSummary{
			Filename:  f.Filename,
			Status:    f.Status,
			Additions: f.Additions,
			Deletions: f.Deletions,
			Patch:     patch,
		})
	}
	return summaries
}

// BuildPrompt assembles the single-turn review prompt from the PR title,
// description, and the bounded file-change summary. The model is instructed
// to answer with nothing but a JSON array of review comments.
func BuildPrompt(title, body string, files []domain.ChangedFile) (string, error) {
	if body == "" {
		body = "No description provided"
	}

	summaryJSON, err := json.MarshalIndent(SummarizeFiles(files), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal files summary: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("Review this pull request and provide specific line-by-line feedback.\n\n")
	fmt.Fprintf(&sb, "PR Title: %s\n", title)
	fmt.Fprintf(&sb, "PR Description: %s\n\n", body)
	sb.WriteString("Files changed:\n")
	sb.Write(summaryJSON)
	sb.WriteString(`

For each issue you find, provide:
1. The exact filename
2. The line number (from the patch context)
3. A specific, actionable comment

Respond ONLY with a JSON array of review comments in this exact format:
[
  {
    "path": "path/to/file.py",
    "line": 42,
    "side": "RIGHT",
    "body": "Consider adding error handling here for edge cases."
  }
]

Focus on:
- Bugs and potential errors
- Security vulnerabilities
- Performance issues
- Code quality and best practices
- Logic errors

If no issues found, return an empty array: []`)

	return sb.String(), nil
}

package review

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/prsentry/prsentry/internal/domain"
)

// The model is asked for a bare JSON array but often wraps it in a fenced
// code block anyway; take the first fenced block when present.
var fencePattern = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)```")

// ExtractComments pulls a JSON array of review comments out of free-form
// model output. A response that is not valid JSON, or not an array, yields
// zero comments rather than an error: a review with no comments beats a
// failed request when the model misbehaves. Entries missing path, line, or
// body are dropped; a missing or unrecognized side defaults to RIGHT.
func ExtractComments(text string) []domain.ReviewComment {
	jsonText := strings.TrimSpace(text)
	if matches := fencePattern.FindStringSubmatch(jsonText); len(matches) > 1 {
		jsonText = strings.TrimSpace(matches[1])
	}

	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(jsonText), &entries); err != nil {
		return nil
	}

	comments := make([]domain.ReviewComment, 0, len(entries))
	for _, entry := range entries {
		var c domain.ReviewComment
		if err := json.Unmarshal(entry, &c); err != nil {
			continue
		}
		if !c.Valid() {
			continue
		}
		if c.Side != domain.SideLeft && c.Side != domain.SideRight {
			c.Side = domain.SideRight
		}
		comments = append(comments, c)
	}
	return comments
}

package review_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prsentry/prsentry/internal/domain"
	"github.com/prsentry/prsentry/internal/usecase/review"
)

func TestBuildPrompt_IncludesTitleAndBody(t *testing.T) {
	prompt, err := review.BuildPrompt("Fix the parser", "Handles empty input", []domain.ChangedFile{
		{Filename: "parser.go", Status: "modified", Additions: 4, Deletions: 1, Patch: "@@ -1 +1 @@"},
	})
	require.NoError(t, err)

	assert.Contains(t, prompt, "PR Title: Fix the parser")
	assert.Contains(t, prompt, "PR Description: Handles empty input")
	assert.Contains(t, prompt, `"filename": "parser.go"`)
	assert.Contains(t, prompt, "Respond ONLY with a JSON array")
}

func TestBuildPrompt_EmptyBodyPlaceholder(t *testing.T) {
	prompt, err := review.BuildPrompt("Title only", "", nil)
	require.NoError(t, err)

	assert.Contains(t, prompt, "PR Description: No description provided")
}

func TestSummarizeFiles_CapsFileCount(t *testing.T) {
	files := make([]domain.ChangedFile, 25)
	for i := range files {
		files[i] = domain.ChangedFile{Filename: fmt.Sprintf("file%d.go", i), Status: "modified"}
	}

	summaries := review.SummarizeFiles(files)
	require.Len(t, summaries, 10)
	assert.Equal(t, "file9.go", summaries[9].Filename)
}

func TestSummarizeFiles_CapsPatchLength(t *testing.T) {
	files := []domain.ChangedFile{
		{Filename: "big.go", Status: "modified", Patch: strings.Repeat("x", 10000)},
		{Filename: "small.go", Status: "added", Patch: "tiny"},
	}

	summaries := review.SummarizeFiles(files)
	require.Len(t, summaries, 2)
	assert.Len(t, summaries[0].Patch, 3000)
	assert.Equal(t, "tiny", summaries[1].Patch)
}

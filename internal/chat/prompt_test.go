package chat

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liftlab/coach-engine/internal/retrieval"
	"github.com/liftlab/coach-engine/internal/storage"
)

func makeHits(n int) []retrieval.Hit {
	hits := make([]retrieval.Hit, 0, n)
	for i := 0; i < n; i++ {
		hits = append(hits, retrieval.Hit{
			Entry: storage.KnowledgeEntry{
				ID:        int64(i + 1),
				Title:     fmt.Sprintf("Entry %d", i+1),
				Content:   fmt.Sprintf("Content for entry %d.", i+1),
				SourceURL: fmt.Sprintf("https://example.com/%d", i+1),
			},
			Score: float64(i),
		})
	}
	return hits
}

func TestComposePrompt_CitationAlignment(t *testing.T) {
	for _, n := range []int{0, 1, 3, 5} {
		hits := makeHits(n)

		prompt, citations := ComposePrompt("How much volume do I need?", hits)

		require.Len(t, citations, n)
		for i := 0; i < n; i++ {
			marker := fmt.Sprintf("[%d] Title: Entry %d", i+1, i+1)
			assert.Contains(t, prompt, marker)
			assert.Equal(t, hits[i].Entry.Title, citations[i].Title)
			assert.Equal(t, hits[i].Entry.SourceURL, citations[i].URL)
			require.NotNil(t, citations[i].Score)
			assert.Equal(t, hits[i].Score, *citations[i].Score)
		}
		assert.NotContains(t, prompt, fmt.Sprintf("[%d] Title:", n+1))
	}
}

func TestComposePrompt_ContainsPersonaAndMessage(t *testing.T) {
	prompt, _ := ComposePrompt("Should I train to failure?", makeHits(1))

	assert.True(t, strings.HasPrefix(prompt, "System: You are a friendly gym buddy"))
	assert.Contains(t, prompt, "Context sources (use for citations):")
	assert.Contains(t, prompt, "User: Should I train to failure?")
	assert.True(t, strings.HasSuffix(prompt, "Assistant:"))
}

func TestComposePrompt_TruncatesLongSnippets(t *testing.T) {
	long := strings.Repeat("a", 600)
	hits := []retrieval.Hit{{
		Entry: storage.KnowledgeEntry{Title: "Long Entry", Content: long},
		Score: 1.0,
	}}

	prompt, _ := ComposePrompt("question", hits)

	assert.Contains(t, prompt, strings.Repeat("a", 500)+"...")
	assert.NotContains(t, prompt, strings.Repeat("a", 501))
}

func TestComposePrompt_ShortSnippetsNotTruncated(t *testing.T) {
	hits := []retrieval.Hit{{
		Entry: storage.KnowledgeEntry{Title: "Short", Content: "Train hard."},
		Score: 1.0,
	}}

	prompt, _ := ComposePrompt("question", hits)

	assert.Contains(t, prompt, "Train hard.")
	assert.NotContains(t, prompt, "Train hard....")
}

// Package chat turns retrieval results into grounded answers: prompt
// composition for the local model and fallback policy when it is away.
package chat

import (
	"fmt"
	"strings"

	"github.com/liftlab/coach-engine/internal/retrieval"
)

// snippetLimit caps how much of an entry's content is quoted in the prompt.
const snippetLimit = 500

// persona frames every prompt sent to the model.
const persona = "You are a friendly gym buddy who speaks in a supportive, concise tone. " +
	"Ground your advice in evidence-based strength training principles (Jeff Nippard style). " +
	"Be practical, avoid medical claims, and include 1-2 short actionable suggestions. " +
	"Cite sources with bracket numbers like [1], [2] that refer to the provided context items."

// Citation points an answer back at the knowledge entry it was grounded on.
// Citation i corresponds to bracket number [i] in the prompt, 1-based.
type Citation struct {
	Title string   `json:"title"`
	URL   string   `json:"url,omitempty"`
	Score *float64 `json:"score,omitempty"`
}

// ComposePrompt builds the model prompt from a user message and retrieved
// hits, together with the index-aligned citation list. Pure transformation,
// no retrieval or network activity.
func ComposePrompt(userMessage string, hits []retrieval.Hit) (string, []Citation) {
	contextBlocks := make([]string, 0, len(hits))
	citations := make([]Citation, 0, len(hits))

	for i, hit := range hits {
		snippet := strings.TrimSpace(hit.Entry.Content)
		if runes := []rune(snippet); len(runes) > snippetLimit {
			snippet = string(runes[:snippetLimit]) + "..."
		}
		contextBlocks = append(contextBlocks, fmt.Sprintf("[%d] Title: %s\n%s", i+1, hit.Entry.Title, snippet))

		score := hit.Score
		citations = append(citations, Citation{
			Title: hit.Entry.Title,
			URL:   hit.Entry.SourceURL,
			Score: &score,
		})
	}

	prompt := fmt.Sprintf(
		"System: %s\n\nContext sources (use for citations):\n%s\n\nUser: %s\n\nAssistant:",
		persona,
		strings.Join(contextBlocks, "\n"),
		userMessage,
	)
	return prompt, citations
}

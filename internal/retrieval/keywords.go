// Package retrieval implements the knowledge retrieval pipeline: keyword
// extraction feeding a full-text search with a substring fallback.
package retrieval

import (
	"regexp"
	"strings"
)

// DefaultMaxKeywords caps how many tokens a query contributes to search.
const DefaultMaxKeywords = 8

var tokenPattern = regexp.MustCompile(`[a-z][a-z\-]+`)

var stopwords = map[string]struct{}{
	"the": {}, "is": {}, "a": {}, "an": {}, "and": {}, "or": {}, "of": {},
	"to": {}, "in": {}, "for": {}, "on": {}, "with": {}, "at": {}, "by": {},
	"what": {}, "who": {}, "when": {}, "how": {}, "why": {}, "are": {},
	"his": {}, "her": {}, "their": {},
}

// ExtractKeywords turns a free-text query into an ordered set of salient
// tokens: lowercased alphabetic tokens (internal hyphens allowed), stopwords
// and tokens shorter than three characters dropped, deduplicated preserving
// first occurrence, capped at maxTokens. Never fails; a punctuation-only
// query yields an empty slice.
func ExtractKeywords(query string, maxTokens int) []string {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxKeywords
	}

	tokens := tokenPattern.FindAllString(strings.ToLower(query), -1)

	seen := make(map[string]struct{}, len(tokens))
	keywords := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if len(tok) <= 2 {
			continue
		}
		if _, stop := stopwords[tok]; stop {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		keywords = append(keywords, tok)
		if len(keywords) == maxTokens {
			break
		}
	}
	return keywords
}

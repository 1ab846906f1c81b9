package retrieval

import (
	"context"
	"errors"
	"strings"

	"github.com/liftlab/coach-engine/internal/observability"
	"github.com/liftlab/coach-engine/internal/storage"
)

// fallbackScore is assigned to every hit returned by the substring path,
// which has no native ranking.
const fallbackScore = 1.0

// Hit pairs a knowledge entry with a relevance score. Scores from the
// indexed path are bm25 values (lower is better); scores from the substring
// path are fixed at 1.0.
type Hit struct {
	Entry storage.KnowledgeEntry
	Score float64
}

// Searcher is the read-path contract the retriever needs from storage.
type Searcher interface {
	SearchIndexed(ctx context.Context, expression string, limit int) ([]storage.ScoredEntry, error)
	FilterSubstring(ctx context.Context, keywords []string, rawQuery string, limit int) ([]storage.KnowledgeEntry, error)
}

// Retriever returns the top-K most relevant knowledge entries for a query.
// It tries the full-text index first and falls back to substring matching
// when the index is unavailable or produced nothing.
type Retriever struct {
	store       Searcher
	logger      *observability.Logger
	maxKeywords int
}

// NewRetriever creates a new retriever.
func NewRetriever(store Searcher, logger *observability.Logger, maxKeywords int) *Retriever {
	if maxKeywords <= 0 {
		maxKeywords = DefaultMaxKeywords
	}
	return &Retriever{
		store:       store,
		logger:      logger.WithComponent("retriever"),
		maxKeywords: maxKeywords,
	}
}

// Retrieve returns up to topK hits, best match first. The two paths are
// mutually exclusive per call: the substring path only runs when the indexed
// path errored or returned zero hits. Index errors never surface to the
// caller.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]Hit, error) {
	keywords := ExtractKeywords(query, r.maxKeywords)

	expression := query
	if len(keywords) > 0 {
		expression = strings.Join(keywords, " OR ")
	}

	scored, err := r.store.SearchIndexed(ctx, expression, topK)
	if err != nil {
		if errors.Is(err, storage.ErrIndexUnavailable) {
			r.logger.Debug().Str("query", query).Msg("full-text index unavailable, using substring search")
		} else {
			// Unexpected index failure; still recoverable, but worth surfacing in logs.
			r.logger.Warn().Err(err).Str("query", query).Msg("full-text search failed, using substring search")
		}
	} else if len(scored) > 0 {
		hits := make([]Hit, 0, len(scored))
		for _, s := range scored {
			hits = append(hits, Hit{Entry: s.Entry, Score: s.Score})
		}
		return hits, nil
	}

	entries, err := r.store.FilterSubstring(ctx, keywords, query, topK)
	if err != nil {
		return nil, err
	}

	hits := make([]Hit, 0, len(entries))
	for _, entry := range entries {
		hits = append(hits, Hit{Entry: entry, Score: fallbackScore})
	}
	return hits, nil
}

package chat

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/liftlab/coach-engine/internal/cache"
	"github.com/liftlab/coach-engine/internal/llm"
	"github.com/liftlab/coach-engine/internal/observability"
	"github.com/liftlab/coach-engine/internal/retrieval"
)

// noContextAnswer is returned when retrieval produced nothing at all.
const noContextAnswer = "I don't have enough context yet to answer that. " +
	"Try asking about hypertrophy, strength, or beginner routines."

// enableLLMSuggestion closes every retrieval-only answer.
const enableLLMSuggestion = "(Enable a local LLM like Ollama for a fuller, chatty answer with citations.)"

// Result is the outcome of answering a chat message.
type Result struct {
	Answer  string     `json:"answer"`
	Sources []Citation `json:"sources"`
	Model   string     `json:"model,omitempty"`
}

// Retriever is the retrieval contract the resolver depends on.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]retrieval.Hit, error)
}

// Resolver orchestrates retrieval, prompt composition and the completion
// call. It is the terminal error boundary for the chat path: Answer always
// returns a usable result.
type Resolver struct {
	retriever Retriever
	completer llm.Completer
	cache     cache.Client
	cacheTTL  time.Duration
	logger    *observability.Logger
}

// ResolverOption customizes a Resolver.
type ResolverOption func(*Resolver)

// WithAnswerCache enables read-through caching of answers.
func WithAnswerCache(client cache.Client, ttl time.Duration) ResolverOption {
	return func(r *Resolver) {
		r.cache = client
		r.cacheTTL = ttl
	}
}

// NewResolver creates a new answer resolver.
func NewResolver(retriever Retriever, completer llm.Completer, logger *observability.Logger, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		retriever: retriever,
		completer: completer,
		logger:    logger.WithComponent("chat"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Answer resolves a chat query. Completion failures, empty completions and
// retrieval errors all degrade to a retrieval-only answer; none of them
// propagate.
func (r *Resolver) Answer(ctx context.Context, query string, topK int) Result {
	cacheKey := answerCacheKey(query, topK)
	if cached, ok := r.cachedResult(ctx, cacheKey); ok {
		return cached
	}

	hits, err := r.retriever.Retrieve(ctx, query, topK)
	if err != nil {
		r.logger.Warn().Err(err).Str("query", query).Msg("retrieval failed, answering without context")
		hits = nil
	}

	prompt, citations := ComposePrompt(query, hits)

	result := r.complete(ctx, prompt, hits, citations)
	r.storeResult(ctx, cacheKey, result)
	return result
}

func (r *Resolver) complete(ctx context.Context, prompt string, hits []retrieval.Hit, citations []Citation) Result {
	answer, err := r.completer.Complete(ctx, prompt)
	if err == nil {
		if trimmed := strings.TrimSpace(answer); trimmed != "" {
			return Result{
				Answer:  trimmed,
				Sources: citations,
				Model:   r.completer.Model(),
			}
		}
		err = llm.ErrEmptyCompletion
	}

	r.logger.Debug().Err(err).Msg("completion unavailable, using retrieval-only answer")
	return fallbackResult(hits, citations)
}

// fallbackResult builds the retrieval-only answer used whenever the
// completion capability is unavailable or unproductive.
func fallbackResult(hits []retrieval.Hit, citations []Citation) Result {
	if len(hits) == 0 {
		return Result{
			Answer:  noContextAnswer,
			Sources: []Citation{},
		}
	}

	bullets := make([]string, 0, 2)
	for _, hit := range hits[:min(2, len(hits))] {
		bullets = append(bullets, "- "+hit.Entry.Title)
	}

	answer := "Here's a quick, evidence-based take based on what I have: \n" +
		strings.Join(bullets, "\n") + "\n" + enableLLMSuggestion

	return Result{
		Answer:  answer,
		Sources: citations,
	}
}

func (r *Resolver) cachedResult(ctx context.Context, key string) (Result, bool) {
	if r.cache == nil {
		return Result{}, false
	}
	data, err := r.cache.Get(ctx, key)
	if err != nil {
		return Result{}, false
	}
	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return Result{}, false
	}
	return result, true
}

func (r *Resolver) storeResult(ctx context.Context, key string, result Result) {
	if r.cache == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, key, data, r.cacheTTL); err != nil {
		r.logger.Debug().Err(err).Msg("answer cache write failed")
	}
}

func answerCacheKey(query string, topK int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d", query, topK)))
	return "chat:" + hex.EncodeToString(sum[:])
}

// Package ingest loads knowledge entries into the store from local files and
// web articles, with optional model-assisted summarization.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/liftlab/coach-engine/internal/llm"
	"github.com/liftlab/coach-engine/internal/observability"
	"github.com/liftlab/coach-engine/internal/storage"
)

// summarizeInputLimit caps how much raw text is handed to the model.
const summarizeInputLimit = 8000

const summarizePrompt = "Summarize the following training content into 5-10 sentences in a friendly, " +
	"evidence-based tone. Include 1-2 actionable tips. Avoid medical claims.\n\n"

// KnowledgeWriter is the write-path contract ingestion needs from storage.
type KnowledgeWriter interface {
	Upsert(ctx context.Context, entry *storage.KnowledgeEntry) (int64, error)
}

// Ingestor writes knowledge entries, optionally summarizing content first.
type Ingestor struct {
	store     KnowledgeWriter
	completer llm.Completer
	logger    *observability.Logger
}

// Options configures an ingestion run.
type Options struct {
	Tags      string // comma-joined tags applied to every entry
	SourceURL string // source attribution for file ingestion
	Summarize bool   // summarize content through the model before storing
	AutoTag   bool   // derive tags from content keywords
}

// NewIngestor creates a new ingestor. The completer may be llm.Disabled; in
// that case summarization silently keeps the raw text.
func NewIngestor(store KnowledgeWriter, completer llm.Completer, logger *observability.Logger) *Ingestor {
	return &Ingestor{
		store:     store,
		completer: completer,
		logger:    logger.WithComponent("ingest"),
	}
}

// IngestFile reads one local file and upserts it as a knowledge entry titled
// after the file name stem. Empty files are skipped.
func (ing *Ingestor) IngestFile(ctx context.Context, path string, opts Options) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}

	content := strings.TrimSpace(string(data))
	if content == "" {
		return false, nil
	}

	title := strings.TrimSpace(strings.ReplaceAll(stem(path), "_", " "))
	if title == "" {
		title = path
	}

	return ing.ingestEntry(ctx, title, content, opts)
}

// IngestText upserts already-fetched content, e.g. a scraped article.
func (ing *Ingestor) IngestText(ctx context.Context, title, content string, opts Options) (bool, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return false, nil
	}
	return ing.ingestEntry(ctx, title, content, opts)
}

func (ing *Ingestor) ingestEntry(ctx context.Context, title, content string, opts Options) (bool, error) {
	if opts.Summarize {
		content = ing.summarize(ctx, content)
	}

	tags := opts.Tags
	if opts.AutoTag {
		tags = mergeTags(tags, AutoTags(content))
	}

	entry := &storage.KnowledgeEntry{
		Title:     title,
		Content:   content,
		SourceURL: opts.SourceURL,
		Tags:      tags,
	}
	if _, err := ing.store.Upsert(ctx, entry); err != nil {
		return false, fmt.Errorf("upsert %q: %w", title, err)
	}

	ing.logger.Info().Str("title", title).Str("tags", tags).Msg("knowledge entry ingested")
	return true, nil
}

// summarize runs the content through the model, falling back to the raw text
// on any error.
func (ing *Ingestor) summarize(ctx context.Context, content string) string {
	slice := content
	if runes := []rune(slice); len(runes) > summarizeInputLimit {
		slice = string(runes[:summarizeInputLimit])
	}

	summary, err := ing.completer.Complete(ctx, summarizePrompt+slice)
	if err != nil {
		ing.logger.Debug().Err(err).Msg("summarization unavailable, keeping raw text")
		return content
	}
	if trimmed := strings.TrimSpace(summary); trimmed != "" {
		return trimmed
	}
	return content
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func mergeTags(existing string, extra []string) string {
	seen := make(map[string]struct{})
	var tags []string
	for _, t := range strings.Split(existing, ",") {
		t = strings.TrimSpace(strings.ToLower(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
	}
	for _, t := range extra {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
	}
	return strings.Join(tags, ",")
}

// canonicalTags maps canonical tags to the content keywords that imply them.
var canonicalTags = map[string][]string{
	"lean":         {"lean", "cut", "fat loss", "fat-loss", "cutting"},
	"bulk":         {"bulk", "bulking", "gain", "mass", "gaining"},
	"hypertrophy":  {"hypertrophy", "muscle growth", "grow muscle"},
	"strength":     {"strength", "1rm", "one-rep", "powerlifting", "intensity"},
	"arms":         {"arm", "arms"},
	"biceps":       {"bicep", "biceps", "curl"},
	"triceps":      {"tricep", "triceps", "pressdown", "skullcrusher"},
	"shoulders":    {"shoulder", "shoulders", "ohp", "overhead press", "lateral raise"},
	"chest":        {"chest", "bench"},
	"back":         {"back", "row", "pull-up", "pullup", "pulldown"},
	"lats":         {"lat", "lats"},
	"legs":         {"leg", "legs", "lower body"},
	"quads":        {"quad", "quads", "leg extension"},
	"hamstrings":   {"hamstring", "hamstrings", "leg curl", "rdl"},
	"glutes":       {"glute", "glutes", "hip thrust"},
	"calves":       {"calf", "calves"},
	"abs":          {"abs", "core", "abdominals", "plank"},
	"upper":        {"upper"},
	"lower":        {"lower"},
	"push":         {"push"},
	"pull":         {"pull"},
}

// AutoTags derives canonical tags from content keywords, sorted for
// deterministic output.
func AutoTags(content string) []string {
	blob := strings.ToLower(content)
	var tags []string
	for canon, keywords := range canonicalTags {
		for _, kw := range keywords {
			if strings.Contains(blob, kw) {
				tags = append(tags, canon)
				break
			}
		}
	}
	sort.Strings(tags)
	return tags
}

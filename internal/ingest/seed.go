package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/liftlab/coach-engine/internal/recommend"
	"github.com/liftlab/coach-engine/internal/storage"
)

// SeedFromCatalog derives one knowledge entry per workout template, combining
// its description and coaching notes, so the chat path can answer questions
// about the catalog. Returns the number of entries written.
func (ing *Ingestor) SeedFromCatalog(ctx context.Context, templates []recommend.WorkoutTemplate) (int, error) {
	written := 0
	for _, tpl := range templates {
		name := tpl.Name
		if name == "" {
			name = tpl.ID
		}

		content := tpl.Description
		if len(tpl.CoachingNotes) > 0 {
			content += "\n\nCoaching notes:\n- " + strings.Join(tpl.CoachingNotes, "\n- ")
		}

		var tagParts []string
		if tpl.Goal != "" {
			tagParts = append(tagParts, tpl.Goal)
		}
		if tpl.ExperienceLevel != "" {
			tagParts = append(tagParts, tpl.ExperienceLevel)
		}

		entry := &storage.KnowledgeEntry{
			Title:     name + " – Overview",
			Content:   content,
			SourceURL: fmt.Sprintf("internal:workouts.json#%s", tpl.ID),
			Tags:      strings.ToLower(strings.Join(tagParts, ",")),
		}
		if _, err := ing.store.Upsert(ctx, entry); err != nil {
			return written, fmt.Errorf("seed template %s: %w", tpl.ID, err)
		}
		written++
	}
	return written, nil
}

package integration

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liftlab/coach-engine/internal/config"
	"github.com/liftlab/coach-engine/internal/ingest"
	"github.com/liftlab/coach-engine/internal/observability"
	"github.com/liftlab/coach-engine/internal/recommend"
	"github.com/liftlab/coach-engine/pkg/engine"
)

func newEngine(t *testing.T) *engine.Engine {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Database.SQLite.Path = filepath.Join(t.TempDir(), "coach-test.db")
	cfg.Catalog.Path = filepath.Join("..", "..", "data", "workouts.json")
	cfg.LLM.Enabled = false
	cfg.Cache.Driver = "memory"

	eng, err := engine.New(cfg, observability.NopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { eng.Close() })
	return eng
}

func TestEngine_SeedThenChat(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()

	require.NoError(t, eng.Ping(ctx))

	ingestor := ingest.NewIngestor(eng.Knowledge, eng.Completer, eng.Logger)
	written, err := ingestor.SeedFromCatalog(ctx, eng.Recommender.Templates())
	require.NoError(t, err)
	assert.Equal(t, len(eng.Recommender.Templates()), written)

	count, err := eng.Knowledge.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, written, count)

	// Seeding is idempotent: same titles update in place.
	_, err = ingestor.SeedFromCatalog(ctx, eng.Recommender.Templates())
	require.NoError(t, err)
	count2, err := eng.Knowledge.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, count, count2)

	result := eng.Resolver.Answer(ctx, "What does the upper lower hypertrophy split look like?", 3)
	assert.NotEmpty(t, result.Answer)
	assert.NotEmpty(t, result.Sources)
	assert.Empty(t, result.Model, "model completion is disabled")
}

func TestEngine_RecommendationsFromCatalogFile(t *testing.T) {
	eng := newEngine(t)

	rec := eng.Recommender.Recommend(recommend.Request{
		Goal:            "hypertrophy",
		ExperienceLevel: "intermediate",
		AvailableDays:   4,
		Equipment:       []string{"barbell", "dumbbells", "cables", "machines"},
	})
	require.NotEmpty(t, rec.Items)
	assert.Equal(t, "hypertrophy", rec.Items[0].Goal)

	rec = eng.Recommender.Recommend(recommend.Request{
		Goal:            "strength",
		ExperienceLevel: "beginner",
		AvailableDays:   3,
	})
	assert.Contains(t, rec.Rationale, "No exact template fit")
	assert.NotEmpty(t, rec.Items)
}

func TestEngine_MissingCatalogFails(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Database.SQLite.Path = filepath.Join(t.TempDir(), "coach-test.db")
	cfg.Catalog.Path = filepath.Join(t.TempDir(), "missing.json")
	cfg.LLM.Enabled = false

	_, err := engine.New(cfg, observability.NopLogger())

	assert.ErrorIs(t, err, recommend.ErrCatalogMissing)
}

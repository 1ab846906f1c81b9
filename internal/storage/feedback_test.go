package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedbackRepository_CreateAssignsSessionID(t *testing.T) {
	db := newTestDB(t)
	repo := NewFeedbackRepository(db)

	rpe := 7
	fb := &Feedback{Goal: "hypertrophy", ExperienceLevel: "intermediate", RPE: &rpe, Notes: "felt strong"}
	require.NoError(t, repo.Create(context.Background(), fb))

	assert.Positive(t, fb.ID)
	assert.NotEmpty(t, fb.SessionID)
	assert.False(t, fb.CreatedAt.IsZero())
}

func TestFeedbackRepository_CreateKeepsProvidedSessionID(t *testing.T) {
	db := newTestDB(t)
	repo := NewFeedbackRepository(db)

	fb := &Feedback{SessionID: "session-42", Goal: "strength"}
	require.NoError(t, repo.Create(context.Background(), fb))

	assert.Equal(t, "session-42", fb.SessionID)
}

func TestFeedbackRepository_ListRecentNewestFirst(t *testing.T) {
	db := newTestDB(t)
	repo := NewFeedbackRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, goal := range []string{"strength", "hypertrophy", "lean"} {
		fb := &Feedback{Goal: goal, CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		require.NoError(t, repo.Create(ctx, fb))
	}

	items, err := repo.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "lean", items[0].Goal)
	assert.Equal(t, "hypertrophy", items[1].Goal)
}

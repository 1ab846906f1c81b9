package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liftlab/coach-engine/internal/chat"
	"github.com/liftlab/coach-engine/internal/config"
	"github.com/liftlab/coach-engine/internal/llm"
	"github.com/liftlab/coach-engine/internal/observability"
	"github.com/liftlab/coach-engine/internal/recommend"
	"github.com/liftlab/coach-engine/internal/retrieval"
	"github.com/liftlab/coach-engine/internal/storage"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	db, err := storage.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())

	knowledge := storage.NewKnowledgeRepository(db)
	feedback := storage.NewFeedbackRepository(db)
	logger := observability.NopLogger()

	ctx := context.Background()
	seed := []storage.KnowledgeEntry{
		{
			Title:     "Jeff Nippard's Hypertrophy Principles",
			Content:   "Jeff Nippard is a natural bodybuilder and science communicator. His hypertrophy principles emphasize progressive overload, 10-20 hard sets per muscle per week, and training close to failure.",
			SourceURL: "https://example.com/nippard",
			Tags:      "hypertrophy",
		},
		{
			Title:   "Evidence-Based Hypertrophy Training",
			Content: "Hypertrophy responds to mechanical tension. Moderate rep ranges with controlled eccentrics work well for most lifters.",
			Tags:    "hypertrophy",
		},
	}
	for i := range seed {
		_, err := knowledge.Upsert(ctx, &seed[i])
		require.NoError(t, err)
	}

	retriever := retrieval.NewRetriever(knowledge, logger, retrieval.DefaultMaxKeywords)
	resolver := chat.NewResolver(retriever, llm.Disabled{}, logger)

	recommender := recommend.NewEngineFromTemplates([]recommend.WorkoutTemplate{
		{
			ID:                     "hyp-ul-4day",
			Name:                   "Upper/Lower Hypertrophy Split",
			Goal:                   "hypertrophy",
			ExperienceLevel:        "intermediate",
			WeeklyFrequencyOptions: []int{4},
			Equipment:              []string{"barbell", "dumbbells", "cables", "machines"},
		},
		{
			ID:                     "str-3day-lp",
			Name:                   "Beginner Strength Linear Progression",
			Goal:                   "strength",
			ExperienceLevel:        "beginner",
			WeeklyFrequencyOptions: []int{3},
			Equipment:              []string{"barbell", "rack", "bench"},
		},
	}, logger)

	cfg := config.DefaultConfig()
	router := NewRouter(logger, cfg, Services{
		Resolver:    resolver,
		Recommender: recommender,
		Feedback:    feedback,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}

func TestChatEndpoint_RetrievalOnlyAnswer(t *testing.T) {
	srv := newTestServer(t)

	payload, _ := json.Marshal(map[string]interface{}{
		"message": "Who is Jeff Nippard and what are his key hypertrophy principles?",
	})
	resp, err := http.Post(srv.URL+"/api/v1/chat", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Answer  string          `json:"answer"`
		Sources []chat.Citation `json:"sources"`
		Model   string          `json:"model"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.NotEmpty(t, body.Answer)
	assert.Contains(t, body.Answer, "Enable a local LLM")
	assert.NotEmpty(t, body.Sources)
	assert.Empty(t, body.Model)
}

func TestChatEndpoint_RequiresMessage(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/v1/chat", "application/json", bytes.NewReader([]byte(`{"message":"  "}`)))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWorkoutsEndpoint_ExactMatch(t *testing.T) {
	srv := newTestServer(t)

	url := srv.URL + "/api/v1/workouts/recommendations" +
		"?goal=hypertrophy&experience_level=intermediate&available_days=4" +
		"&equipment=barbell&equipment=dumbbells&equipment=cables&equipment=machines"
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rec recommend.Recommendation
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rec))

	require.NotEmpty(t, rec.Items)
	assert.Equal(t, "hypertrophy", rec.Items[0].Goal)
	assert.Contains(t, rec.Rationale, "Identified")
}

func TestWorkoutsEndpoint_FallbackOnEmptyEquipment(t *testing.T) {
	srv := newTestServer(t)

	url := srv.URL + "/api/v1/workouts/recommendations" +
		"?goal=strength&experience_level=beginner&available_days=3"
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rec recommend.Recommendation
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rec))

	assert.Contains(t, rec.Rationale, "No exact template fit")
	assert.NotEmpty(t, rec.Items)
}

func TestWorkoutsEndpoint_ValidatesDays(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/workouts/recommendations?goal=strength&experience_level=beginner&available_days=9")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFeedbackEndpoint_CreatesRow(t *testing.T) {
	srv := newTestServer(t)

	payload := []byte(`{"goal":"hypertrophy","experience_level":"intermediate","rpe":8,"adherence":90,"notes":"good week"}`)
	resp, err := http.Post(srv.URL+"/api/v1/feedback", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body struct {
		ID        int64  `json:"id"`
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Positive(t, body.ID)
	assert.NotEmpty(t, body.SessionID)
}

func TestFeedbackEndpoint_RejectsOutOfRangeRPE(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/v1/feedback", "application/json", bytes.NewReader([]byte(`{"rpe":11}`)))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

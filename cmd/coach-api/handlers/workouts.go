package handlers

import (
	"net/http"
	"strconv"

	"github.com/liftlab/coach-engine/internal/observability"
	"github.com/liftlab/coach-engine/internal/recommend"
)

// WorkoutsHandler handles workout recommendation requests.
type WorkoutsHandler struct {
	logger *observability.Logger
	engine *recommend.Engine
}

// NewWorkoutsHandler creates a new workouts handler.
func NewWorkoutsHandler(logger *observability.Logger, engine *recommend.Engine) *WorkoutsHandler {
	return &WorkoutsHandler{logger: logger, engine: engine}
}

// Recommendations handles GET /api/v1/workouts/recommendations.
// Query parameters: goal, experience_level, available_days, equipment
// (repeated per item).
func (h *WorkoutsHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	goal := q.Get("goal")
	if len(goal) < 3 {
		writeError(w, h.logger, http.StatusBadRequest, "goal must be at least 3 characters", "")
		return
	}

	experience := q.Get("experience_level")
	if len(experience) < 3 {
		writeError(w, h.logger, http.StatusBadRequest, "experience_level must be at least 3 characters", "")
		return
	}

	days, err := strconv.Atoi(q.Get("available_days"))
	if err != nil || days < 2 || days > 7 {
		writeError(w, h.logger, http.StatusBadRequest, "available_days must be an integer between 2 and 7", "")
		return
	}

	req := recommend.Request{
		Goal:            goal,
		ExperienceLevel: experience,
		AvailableDays:   days,
		Equipment:       q["equipment"],
	}

	rec := h.engine.Recommend(req)
	if rec.Items == nil {
		rec.Items = []recommend.WorkoutTemplate{}
	}
	writeJSON(w, h.logger, http.StatusOK, rec)
}

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/liftlab/coach-engine/internal/observability"
	"github.com/liftlab/coach-engine/internal/storage"
)

// FeedbackHandler handles session feedback submissions.
type FeedbackHandler struct {
	logger *observability.Logger
	repo   *storage.FeedbackRepository
}

// NewFeedbackHandler creates a new feedback handler.
func NewFeedbackHandler(logger *observability.Logger, repo *storage.FeedbackRepository) *FeedbackHandler {
	return &FeedbackHandler{logger: logger, repo: repo}
}

// FeedbackRequestDTO represents the API request for feedback.
type FeedbackRequestDTO struct {
	SessionID       string `json:"session_id,omitempty"`
	Goal            string `json:"goal,omitempty"`
	ExperienceLevel string `json:"experience_level,omitempty"`
	RPE             *int   `json:"rpe,omitempty"`
	Adherence       *int   `json:"adherence,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

// FeedbackResponseDTO represents the API response.
type FeedbackResponseDTO struct {
	ID        int64  `json:"id"`
	SessionID string `json:"session_id"`
}

// Create handles POST /api/v1/feedback.
func (h *FeedbackHandler) Create(w http.ResponseWriter, r *http.Request) {
	var reqDTO FeedbackRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if reqDTO.RPE != nil && (*reqDTO.RPE < 1 || *reqDTO.RPE > 10) {
		writeError(w, h.logger, http.StatusBadRequest, "rpe must be between 1 and 10", "")
		return
	}
	if reqDTO.Adherence != nil && (*reqDTO.Adherence < 0 || *reqDTO.Adherence > 100) {
		writeError(w, h.logger, http.StatusBadRequest, "adherence must be between 0 and 100", "")
		return
	}

	fb := storage.Feedback{
		SessionID:       reqDTO.SessionID,
		Goal:            reqDTO.Goal,
		ExperienceLevel: reqDTO.ExperienceLevel,
		RPE:             reqDTO.RPE,
		Adherence:       reqDTO.Adherence,
		Notes:           reqDTO.Notes,
	}
	if err := h.repo.Create(r.Context(), &fb); err != nil {
		h.logger.Error().Err(err).Msg("failed to store feedback")
		writeError(w, h.logger, http.StatusInternalServerError, "failed to store feedback", "")
		return
	}

	writeJSON(w, h.logger, http.StatusCreated, FeedbackResponseDTO{
		ID:        fb.ID,
		SessionID: fb.SessionID,
	})
}

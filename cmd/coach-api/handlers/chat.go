package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/liftlab/coach-engine/internal/chat"
	"github.com/liftlab/coach-engine/internal/observability"
)

// ChatHandler handles chat requests.
type ChatHandler struct {
	logger      *observability.Logger
	resolver    *chat.Resolver
	defaultTopK int
	maxTopK     int
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(logger *observability.Logger, resolver *chat.Resolver, defaultTopK, maxTopK int) *ChatHandler {
	if defaultTopK <= 0 {
		defaultTopK = 3
	}
	if maxTopK <= 0 {
		maxTopK = 10
	}
	return &ChatHandler{
		logger:      logger,
		resolver:    resolver,
		defaultTopK: defaultTopK,
		maxTopK:     maxTopK,
	}
}

// ChatRequestDTO represents the API request for chat.
type ChatRequestDTO struct {
	Message string `json:"message"`
	TopK    int    `json:"top_k,omitempty"`
}

// ChatResponseDTO represents the API response.
type ChatResponseDTO struct {
	Answer  string          `json:"answer"`
	Sources []chat.Citation `json:"sources"`
	Model   string          `json:"model,omitempty"`
}

// Chat handles POST /api/v1/chat.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var reqDTO ChatRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if strings.TrimSpace(reqDTO.Message) == "" {
		writeError(w, h.logger, http.StatusBadRequest, "message is required", "")
		return
	}

	topK := reqDTO.TopK
	if topK <= 0 {
		topK = h.defaultTopK
	}
	if topK > h.maxTopK {
		topK = h.maxTopK
	}

	result := h.resolver.Answer(r.Context(), reqDTO.Message, topK)

	writeJSON(w, h.logger, http.StatusOK, ChatResponseDTO{
		Answer:  result.Answer,
		Sources: result.Sources,
		Model:   result.Model,
	})
}

// Package main provides the coach API server entrypoint.
package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/liftlab/coach-engine/cmd/coach-api/handlers"
	"github.com/liftlab/coach-engine/cmd/coach-api/middleware"
	"github.com/liftlab/coach-engine/internal/chat"
	"github.com/liftlab/coach-engine/internal/config"
	"github.com/liftlab/coach-engine/internal/observability"
	"github.com/liftlab/coach-engine/internal/recommend"
	"github.com/liftlab/coach-engine/internal/storage"
)

// Services bundles the request-path dependencies the router needs.
type Services struct {
	Resolver    *chat.Resolver
	Recommender *recommend.Engine
	Feedback    *storage.FeedbackRepository
}

// NewRouter creates the main API router with all routes configured.
func NewRouter(logger *observability.Logger, cfg *config.Config, svc Services) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	r.Use(chimiddleware.Timeout(cfg.Server.WriteTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","service":"coach-engine"}`))
	})

	chatHandler := handlers.NewChatHandler(logger, svc.Resolver, cfg.Retrieval.DefaultTopK, cfg.Retrieval.MaxTopK)
	workoutsHandler := handlers.NewWorkoutsHandler(logger, svc.Recommender)
	feedbackHandler := handlers.NewFeedbackHandler(logger, svc.Feedback)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/chat", chatHandler.Chat)
		r.Get("/workouts/recommendations", workoutsHandler.Recommendations)
		r.Post("/feedback", feedbackHandler.Create)
	})

	return r
}

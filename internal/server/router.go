package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mentora-ai/mentora/internal/api"
	"github.com/mentora-ai/mentora/internal/api/handlers"
	"github.com/mentora-ai/mentora/internal/api/middleware"
)

type RouterConfig struct {
	AuthValidator    middleware.AuthValidator
	ChatHandler      *handlers.ChatHandler
	ExpertHandler    *handlers.ExpertHandler
	TrainingHandler  *handlers.TrainingHandler
	DocumentHandler  *handlers.DocumentHandler
	KnowledgeHandler *handlers.KnowledgeHandler
	AuthHandler      *handlers.AuthHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 5 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(cfg.AuthValidator))

		r.Post("/chat", cfg.ChatHandler.Chat)

		r.Route("/profile", func(r chi.Router) {
			r.Get("/", cfg.ExpertHandler.GetProfile)
			r.Put("/", cfg.ExpertHandler.UpdateProfile)
			r.Get("/knowledge-areas", cfg.ExpertHandler.ListKnowledgeAreas)
		})

		r.Route("/training", func(r chi.Router) {
			r.Get("/question", cfg.TrainingHandler.NextQuestion)
			r.Post("/answer", cfg.TrainingHandler.SubmitAnswer)
			r.Post("/message", cfg.TrainingHandler.IngestMessage)
			r.Post("/summary", cfg.TrainingHandler.RefreshSummary)
			r.Get("/coverage", cfg.TrainingHandler.Coverage)
		})

		r.Route("/documents", func(r chi.Router) {
			r.Post("/", cfg.DocumentHandler.Create)
			r.Get("/", cfg.DocumentHandler.List)
			r.Get("/{id}", cfg.DocumentHandler.Get)
			r.Post("/{id}/ingest", cfg.DocumentHandler.Ingest)
			r.Delete("/{id}", cfg.DocumentHandler.Delete)
		})

		r.Route("/knowledge", func(r chi.Router) {
			r.Get("/", cfg.KnowledgeHandler.List)
			r.Get("/{id}", cfg.KnowledgeHandler.Get)
			r.Delete("/{id}", cfg.KnowledgeHandler.Delete)
		})
	})

	r.Post("/experts", cfg.AuthHandler.CreateExpert)
	r.Post("/apikeys", cfg.AuthHandler.CreateAPIKey)

	return r
}

package server

import (
	"net/http"

	"github.com/cloo-solutions/askd/internal/api"
	"github.com/cloo-solutions/askd/internal/api/handlers"
	"github.com/cloo-solutions/askd/internal/api/middleware"
	"github.com/go-chi/chi/v5"
)

type RouterConfig struct {
	IngestHandler    *handlers.IngestHandler
	AskHandler       *handlers.AskHandler
	ProvidersHandler *handlers.ProvidersHandler
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

	r.Get("/providers", cfg.ProvidersHandler.List)

	r.Group(func(r chi.Router) {
		r.Use(middleware.OrgScope)

		r.Post("/ingest", cfg.IngestHandler.Ingest)
		r.Post("/ask", cfg.AskHandler.Ask)
	})

	return r
}

// Package httpapi serves the memoir store over a small JSON REST API.
package httpapi

import (
	"database/sql"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/unowned-ai/memoirs/pkg/memoirs"
)

// NewRouter creates the chi router with all routes and middleware. db may be
// nil, in which case /health only reports the store.
func NewRouter(svc *memoirs.Service, db *sql.DB, logger zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestID(logger.With().Str("component", "httpapi").Logger()))
	r.Use(AccessLog)
	r.Use(Recovery)

	healthH := NewHealthHandler(svc, db)
	memoirH := NewMemoirHandler(svc)

	r.Get("/health", healthH.Health)

	r.Route("/memoirs", func(r chi.Router) {
		r.Get("/", memoirH.List)
		r.Post("/", memoirH.Create)
		r.Get("/{id}", memoirH.Get)
		r.Patch("/{id}", memoirH.Update)
		r.Delete("/{id}", memoirH.Delete)
		r.Post("/{id}/bookmark", memoirH.ToggleBookmark)
		r.Post("/{id}/media", memoirH.AttachMedia)
		r.Delete("/{id}/media/{mediaID}", memoirH.RemoveMedia)
		r.Get("/{id}/layout", memoirH.Layout)
	})

	return r
}

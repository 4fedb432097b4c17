package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
// defaultKelvin is used when a request omits the temperature.
func NewRouter(svc Evaluator, authEnabled bool, token string, sseHandler http.Handler, defaultKelvin float64) chi.Router {
	h := NewHandler(svc, defaultKelvin)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Post("/evaluate", h.Evaluate)
	r.Post("/parse", h.Parse)
	r.Post("/balance", h.Balance)

	// Same document shape the remote client consumes.
	r.Get("/species/{id}", h.Species)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}

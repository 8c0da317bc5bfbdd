package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aldwin/othala/internal/syncengine"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(eng *syncengine.Engine, registry *SessionRegistry, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(eng, registry)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Vault tree.
	r.Get("/tree", h.GetTree)

	// Documents.
	r.Post("/documents", h.CreateDocument)
	r.Get("/documents/*", h.ReadDocument)
	r.Put("/documents/*", h.SaveDocument)
	r.Delete("/documents/*", h.DeleteDocument)

	// Rename and folders.
	r.Post("/rename", h.Rename)
	r.Post("/folders", h.CreateFolder)

	// Version history.
	r.Get("/versions/*", h.ListVersions)

	// Editing sessions.
	r.Post("/sessions", h.OpenSession)
	r.Post("/sessions/{id}/edit", h.EditSession)
	r.Post("/sessions/{id}/restore", h.RestoreSession)
	r.Delete("/sessions/{id}", h.CloseSession)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}

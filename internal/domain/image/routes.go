package image

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns image router. Everything here is owner-scoped, so the
// whole group sits behind auth.
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(authMiddleware)

	r.Post("/", h.Upload)
	r.Get("/", h.List)
	r.Get("/deleted", h.ListDeleted)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/share", h.Share)

	return r
}

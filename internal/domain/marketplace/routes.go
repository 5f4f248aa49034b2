package marketplace

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns marketplace router. Selling requires the seller role;
// buying and browsing only require a valid token.
func (h *Handler) Routes(authMiddleware, sellerMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(authMiddleware)

	r.Get("/sellers/{username}", h.BySeller)
	r.Post("/buy", h.Buy)
	r.Post("/register-seller", h.RegisterSeller)

	r.Group(func(r chi.Router) {
		r.Use(sellerMiddleware)
		r.Post("/sell", h.Sell)
	})

	return r
}

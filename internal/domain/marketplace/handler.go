package marketplace

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/imagerepo/imagerepo-api/internal/middleware"
	"github.com/imagerepo/imagerepo-api/internal/pkg/response"
	"github.com/imagerepo/imagerepo-api/internal/pkg/validator"
)

// Handler handles marketplace HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates marketplace handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Sell handles POST /marketplace/sell
func (h *Handler) Sell(w http.ResponseWriter, r *http.Request) {
	var req SellRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	sellerID := middleware.GetUserID(r.Context())
	sellerName := middleware.GetUsername(r.Context())

	listing, err := h.service.Sell(r.Context(), sellerID, sellerName, req.ImageID, req.Price)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Created(w, SellResponse{
		Msg:           "image listed for sale",
		MarketplaceID: listing.ID,
	})
}

// BySeller handles GET /marketplace/sellers/{username}
func (h *Handler) BySeller(w http.ResponseWriter, r *http.Request) {
	sellerName := chi.URLParam(r, "username")

	listings, err := h.service.ListBySeller(r.Context(), sellerName)
	if err != nil {
		h.handleError(w, err)
		return
	}

	urls := make([]string, 0, len(listings))
	for _, l := range listings {
		urls = append(urls, l.ImageURL)
	}

	response.OK(w, SellerListingsResponse{
		Seller: sellerName,
		Images: urls,
	})
}

// Buy handles POST /marketplace/buy
func (h *Handler) Buy(w http.ResponseWriter, r *http.Request) {
	var req BuyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	buyerID := middleware.GetUserID(r.Context())
	buyerName := middleware.GetUsername(r.Context())

	result, err := h.service.Buy(r.Context(), buyerID, buyerName, req.MarketplaceID)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Created(w, result)
}

// RegisterSeller handles POST /marketplace/register-seller
func (h *Handler) RegisterSeller(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	if err := h.service.RegisterSeller(r.Context(), userID); err != nil {
		h.handleError(w, err)
		return
	}

	// The role is baked into the access token, so the new role only
	// takes effect on the next token the caller obtains.
	response.Created(w, RegisterSellerResponse{
		Msg: "you are now registered as a seller, refresh your token for the role to take effect",
	})
}

func (h *Handler) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrListingNotFound),
		errors.Is(err, ErrImageNotFound),
		errors.Is(err, ErrSellerNotFound),
		errors.Is(err, ErrBuyerNotFound),
		errors.Is(err, ErrUserNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrAlreadySold):
		response.Conflict(w, err.Error())
	case errors.Is(err, ErrSelfPurchase), errors.Is(err, ErrNotImageOwner):
		response.Forbidden(w, err.Error())
	case errors.Is(err, ErrImageDeleted):
		response.Error(w, http.StatusUnprocessableEntity, "unprocessable_entity", err.Error())
	default:
		log.Error().Err(err).Msg("Marketplace operation failed")
		response.InternalError(w)
	}
}

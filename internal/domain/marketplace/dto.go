package marketplace

import (
	"time"

	"github.com/google/uuid"
)

// SellRequest for POST /marketplace/sell
type SellRequest struct {
	ImageID uuid.UUID `json:"image_id" validate:"required"`
	Price   int64     `json:"price" validate:"gt=0"`
}

// SellResponse for POST /marketplace/sell
type SellResponse struct {
	Msg           string    `json:"msg"`
	MarketplaceID uuid.UUID `json:"marketplace_id"`
}

// BuyRequest for POST /marketplace/buy
type BuyRequest struct {
	MarketplaceID uuid.UUID `json:"marketplace_id" validate:"required"`
}

// BuyResponse for POST /marketplace/buy
type BuyResponse struct {
	Msg           string    `json:"msg"`
	MarketplaceID uuid.UUID `json:"marketplace_id"`
	TransactionID uuid.UUID `json:"transaction_id"`
}

// RegisterSellerResponse for POST /marketplace/register-seller
type RegisterSellerResponse struct {
	Msg string `json:"msg"`
}

// SellerListingsResponse for GET /marketplace/sellers/{username}
type SellerListingsResponse struct {
	Seller string   `json:"seller"`
	Images []string `json:"images"`
}

// ListingResponse represents one listing in API responses
type ListingResponse struct {
	ID         uuid.UUID `json:"id"`
	ImageURL   string    `json:"image_url"`
	SellerName string    `json:"seller_name"`
	Price      int64     `json:"price"`
	Sold       bool      `json:"sold"`
	SoldOn     string    `json:"sold_on,omitempty"`
	CreatedAt  string    `json:"created_at"`
}

// ListingResponseFromEntity converts entity to response DTO
func ListingResponseFromEntity(l *Listing) *ListingResponse {
	resp := &ListingResponse{
		ID:         l.ID,
		ImageURL:   l.ImageURL,
		SellerName: l.SellerName,
		Price:      l.Price,
		Sold:       l.Sold,
		CreatedAt:  l.CreatedAt.Format(time.RFC3339),
	}
	if l.SoldOn.Valid {
		resp.SoldOn = l.SoldOn.Time.Format(time.RFC3339)
	}
	return resp
}

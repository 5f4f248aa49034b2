package marketplace

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/imagerepo/imagerepo-api/internal/domain/image"
	"github.com/imagerepo/imagerepo-api/internal/domain/user"
	"github.com/imagerepo/imagerepo-api/internal/pkg/storage"
)

// Service handles marketplace business logic
type Service struct {
	repo   Repository
	users  user.Repository
	images image.Repository
	store  storage.ObjectStore
}

// NewService creates marketplace service
func NewService(repo Repository, users user.Repository, images image.Repository, store storage.ObjectStore) *Service {
	return &Service{
		repo:   repo,
		users:  users,
		images: images,
		store:  store,
	}
}

// Sell puts one of the caller's images up for sale. Listing an image
// publishes it: the stored object gets a public-read ACL so buyers can
// see what they are paying for.
func (s *Service) Sell(ctx context.Context, sellerID uuid.UUID, sellerName string, imageID uuid.UUID, price int64) (*Listing, error) {
	img, err := s.images.GetByID(ctx, imageID)
	if err != nil {
		return nil, err
	}
	if img == nil {
		return nil, ErrImageNotFound
	}
	if img.UserID != sellerID {
		return nil, ErrNotImageOwner
	}
	if img.IsDeleted {
		return nil, ErrImageDeleted
	}

	if !img.IsPublic {
		key, err := s.store.KeyFromURL(img.PublicURL)
		if err != nil {
			return nil, err
		}
		if err := s.store.SetPublic(ctx, key); err != nil {
			return nil, fmt.Errorf("publish listing object: %w", err)
		}
		if err := s.images.SetPublic(ctx, img.ID); err != nil {
			return nil, err
		}
	}

	listing := &Listing{
		ID:         uuid.New(),
		ImageID:    img.ID,
		SellerID:   sellerID,
		SellerName: sellerName,
		ImageURL:   img.PublicURL,
		Price:      price,
		Sold:       false,
		CreatedAt:  time.Now(),
	}

	if err := s.repo.CreateListing(ctx, listing); err != nil {
		return nil, err
	}

	log.Info().
		Str("marketplace_id", listing.ID.String()).
		Str("seller", sellerName).
		Int64("price", price).
		Msg("listing created")

	return listing, nil
}

// ListBySeller returns every listing by a seller name, sold ones
// included. The name is queried as-is; a name nobody has listed under
// yields an empty set, not an error.
func (s *Service) ListBySeller(ctx context.Context, sellerName string) ([]Listing, error) {
	return s.repo.ListBySellerName(ctx, sellerName)
}

// Buy purchases a listing for the caller. Preconditions are checked in
// order (exists, not sold, not the seller's own), then the sale runs as
// one transaction: the listing is closed, the buyer's debit and the
// seller's credit each grow by the price, and the image moves to the
// buyer. The conditional close is re-checked inside the transaction, so
// the advisory Sold check here only shortcuts the common case.
func (s *Service) Buy(ctx context.Context, buyerID uuid.UUID, buyerName string, listingID uuid.UUID) (*BuyResponse, error) {
	listing, err := s.repo.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, ErrListingNotFound
	}
	if listing.Sold {
		return nil, ErrAlreadySold
	}
	if listing.SellerID == buyerID {
		return nil, ErrSelfPurchase
	}

	seller, err := s.users.GetByUsername(ctx, listing.SellerName)
	if err != nil {
		return nil, err
	}
	if seller == nil {
		return nil, ErrSellerNotFound
	}

	purchase := Purchase{
		ListingID:     listing.ID,
		ImageID:       listing.ImageID,
		SellerID:      seller.ID,
		BuyerID:       buyerID,
		BuyerName:     buyerName,
		Price:         listing.Price,
		TransactionID: uuid.New(),
		SoldOn:        time.Now(),
	}

	if err := s.repo.ExecutePurchase(ctx, purchase); err != nil {
		return nil, err
	}

	log.Info().
		Str("marketplace_id", listing.ID.String()).
		Str("transaction_id", purchase.TransactionID.String()).
		Str("buyer", buyerName).
		Str("seller", listing.SellerName).
		Int64("price", listing.Price).
		Msg("purchase applied")

	return &BuyResponse{
		Msg:           "purchase complete",
		MarketplaceID: listing.ID,
		TransactionID: purchase.TransactionID,
	}, nil
}

// RegisterSeller promotes the caller to the seller role. Calling it
// again is a no-op; admins keep their role.
func (s *Service) RegisterSeller(ctx context.Context, userID uuid.UUID) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u == nil {
		return ErrUserNotFound
	}
	if u.IsSeller() {
		return nil
	}

	return s.users.UpdateRole(ctx, userID, user.RoleSeller)
}

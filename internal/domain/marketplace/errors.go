package marketplace

import "errors"

var (
	ErrListingNotFound = errors.New("listing not found")
	ErrAlreadySold     = errors.New("listing has already been sold")
	ErrSelfPurchase    = errors.New("you cannot buy your own listing")
	ErrImageNotFound   = errors.New("image not found")
	ErrNotImageOwner   = errors.New("you can only sell your own images")
	ErrImageDeleted    = errors.New("deleted images cannot be sold")
	ErrSellerNotFound  = errors.New("seller not found")
	ErrBuyerNotFound   = errors.New("buyer not found")
	ErrUserNotFound    = errors.New("user not found")
)

package marketplace

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Listing is a sale offer for one image. Seller identity is denormalized
// at creation time and never changes afterwards. The buyer fields,
// transaction_id and sold_on are written together exactly once, when the
// listing is sold; a listing is never deleted and never reopened.
type Listing struct {
	ID            uuid.UUID      `db:"id" json:"id"`
	ImageID       uuid.UUID      `db:"image_id" json:"image_id"`
	SellerID      uuid.UUID      `db:"seller_id" json:"seller_id"`
	SellerName    string         `db:"seller_name" json:"seller_name"`
	BuyerID       uuid.NullUUID  `db:"buyer_id" json:"-"`
	BuyerName     sql.NullString `db:"buyer_name" json:"-"`
	ImageURL      string         `db:"image_url" json:"image_url"`
	Price         int64          `db:"price" json:"price"`
	TransactionID uuid.NullUUID  `db:"transaction_id" json:"-"`
	Sold          bool           `db:"sold" json:"sold"`
	SoldOn        sql.NullTime   `db:"sold_on" json:"-"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
}

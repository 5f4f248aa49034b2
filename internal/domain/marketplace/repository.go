package marketplace

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Purchase carries every write of one sale. All four updates are applied
// in a single database transaction.
type Purchase struct {
	ListingID     uuid.UUID
	ImageID       uuid.UUID
	SellerID      uuid.UUID
	BuyerID       uuid.UUID
	BuyerName     string
	Price         int64
	TransactionID uuid.UUID
	SoldOn        time.Time
}

// Repository defines marketplace data access interface
type Repository interface {
	CreateListing(ctx context.Context, listing *Listing) error
	GetByID(ctx context.Context, id uuid.UUID) (*Listing, error)
	ListBySellerName(ctx context.Context, sellerName string) ([]Listing, error)
	ExecutePurchase(ctx context.Context, p Purchase) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new marketplace repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateListing(ctx context.Context, listing *Listing) error {
	query := `
		INSERT INTO listings (id, image_id, seller_id, seller_name, image_url, price, sold, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		listing.ID,
		listing.ImageID,
		listing.SellerID,
		listing.SellerName,
		listing.ImageURL,
		listing.Price,
		listing.Sold,
		listing.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("marketplace repository create listing: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Listing, error) {
	query := `
		SELECT id, image_id, seller_id, seller_name, buyer_id, buyer_name,
		       image_url, price, transaction_id, sold, sold_on, created_at
		FROM listings WHERE id = $1
	`
	var listing Listing
	err := r.db.GetContext(ctx, &listing, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &listing, nil
}

func (r *repository) ListBySellerName(ctx context.Context, sellerName string) ([]Listing, error) {
	query := `
		SELECT id, image_id, seller_id, seller_name, buyer_id, buyer_name,
		       image_url, price, transaction_id, sold, sold_on, created_at
		FROM listings
		WHERE seller_name = $1
		ORDER BY created_at
	`
	var listings []Listing
	if err := r.db.SelectContext(ctx, &listings, query, sellerName); err != nil {
		return nil, fmt.Errorf("marketplace repository list by seller: %w", err)
	}

	return listings, nil
}

// ExecutePurchase applies one sale atomically. The listing update is
// conditional on sold = FALSE, so concurrent buyers race on the row and
// exactly one transaction wins; the loser gets ErrAlreadySold and every
// write it made is rolled back. Ledger and ownership writes follow in
// the same transaction, so a failure at any step leaves no partial sale.
func (r *repository) ExecutePurchase(ctx context.Context, p Purchase) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin purchase tx: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
		UPDATE listings
		SET sold = TRUE, buyer_id = $2, buyer_name = $3, transaction_id = $4, sold_on = $5
		WHERE id = $1 AND sold = FALSE
	`, p.ListingID, p.BuyerID, p.BuyerName, p.TransactionID, p.SoldOn)
	if err != nil {
		return fmt.Errorf("mark listing sold: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAlreadySold
	}

	res, err = tx.ExecContext(ctx, `
		UPDATE users SET debit = debit + $2, updated_at = NOW() WHERE id = $1
	`, p.BuyerID, p.Price)
	if err != nil {
		return fmt.Errorf("debit buyer: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrBuyerNotFound
	}

	res, err = tx.ExecContext(ctx, `
		UPDATE users SET credit = credit + $2, updated_at = NOW() WHERE id = $1
	`, p.SellerID, p.Price)
	if err != nil {
		return fmt.Errorf("credit seller: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSellerNotFound
	}

	res, err = tx.ExecContext(ctx, `
		UPDATE images SET user_id = $2 WHERE id = $1
	`, p.ImageID, p.BuyerID)
	if err != nil {
		return fmt.Errorf("transfer image ownership: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrImageNotFound
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit purchase tx: %w", err)
	}

	return nil
}

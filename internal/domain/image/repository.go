package image

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines image catalog data access
type Repository interface {
	Create(ctx context.Context, img *Image) error
	GetByID(ctx context.Context, id uuid.UUID) (*Image, error)
	ListByOwner(ctx context.Context, userID uuid.UUID, deleted bool) ([]*Image, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
	SetPublic(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new image repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, img *Image) error {
	query := `
		INSERT INTO images (id, user_id, public_url, is_public, is_deleted, tags, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		img.ID,
		img.UserID,
		img.PublicURL,
		img.IsPublic,
		img.IsDeleted,
		img.Tags,
		img.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("image repository create: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Image, error) {
	query := `SELECT id, user_id, public_url, is_public, is_deleted, tags, uploaded_at FROM images WHERE id = $1`
	var img Image
	err := r.db.GetContext(ctx, &img, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &img, nil
}

func (r *repository) ListByOwner(ctx context.Context, userID uuid.UUID, deleted bool) ([]*Image, error) {
	query := `
		SELECT id, user_id, public_url, is_public, is_deleted, tags, uploaded_at
		FROM images
		WHERE user_id = $1 AND is_deleted = $2
		ORDER BY uploaded_at
	`
	var images []*Image
	err := r.db.SelectContext(ctx, &images, query, userID, deleted)
	return images, err
}

// SoftDelete flags the record; the object and the row are never removed.
func (r *repository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE images SET is_deleted = TRUE WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *repository) SetPublic(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE images SET is_public = TRUE WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

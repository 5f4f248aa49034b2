package image

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Image represents a catalog record for a stored image. The bytes live in
// the object store; this row carries ownership and visibility. Ownership
// is mutable (it transfers on purchase), deletion is soft, and the public
// flag only ever goes from false to true.
type Image struct {
	ID         uuid.UUID      `db:"id" json:"id"`
	UserID     uuid.UUID      `db:"user_id" json:"user_id"`
	PublicURL  string         `db:"public_url" json:"public_url"`
	IsPublic   bool           `db:"is_public" json:"is_public"`
	IsDeleted  bool           `db:"is_deleted" json:"is_deleted"`
	Tags       pq.StringArray `db:"tags" json:"tags,omitempty"`
	UploadedAt time.Time      `db:"uploaded_at" json:"uploaded_at"`
}

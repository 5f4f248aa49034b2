package image

import (
	"time"

	"github.com/google/uuid"
)

// UploadedImage describes one stored file in the upload response
type UploadedImage struct {
	ID        uuid.UUID `json:"id"`
	URL       string    `json:"url"`
	Thumbnail string    `json:"thumbnail_url"`
}

// UploadResponse for POST /images
type UploadResponse struct {
	Msg    string          `json:"msg"`
	Images []UploadedImage `json:"images"`
}

// ListResponse for GET /images and GET /images/deleted
type ListResponse struct {
	Images []string `json:"images"`
}

// ShareResponse for POST /images/{id}/share
type ShareResponse struct {
	ImagePublicURL string `json:"image_public_url"`
}

// ImageResponse represents a full image record in API responses
type ImageResponse struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	URL        string    `json:"url"`
	IsPublic   bool      `json:"is_public"`
	Tags       []string  `json:"tags,omitempty"`
	UploadedAt string    `json:"uploaded_at"`
}

// ImageResponseFromEntity converts entity to response DTO
func ImageResponseFromEntity(img *Image) *ImageResponse {
	return &ImageResponse{
		ID:         img.ID,
		UserID:     img.UserID,
		URL:        img.PublicURL,
		IsPublic:   img.IsPublic,
		Tags:       []string(img.Tags),
		UploadedAt: img.UploadedAt.Format(time.RFC3339),
	}
}

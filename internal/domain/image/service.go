package image

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/imagerepo/imagerepo-api/internal/pkg/imaging"
	"github.com/imagerepo/imagerepo-api/internal/pkg/storage"
)

// Service handles image catalog business logic
type Service struct {
	repo      Repository
	store     storage.ObjectStore
	processor *imaging.Processor
	maxBytes  int64
}

// NewService creates image service
func NewService(repo Repository, store storage.ObjectStore, processor *imaging.Processor, maxBytes int64) *Service {
	return &Service{
		repo:      repo,
		store:     store,
		processor: processor,
		maxBytes:  maxBytes,
	}
}

// Upload validates and stores one file: the processed original goes to the
// object store under a fresh key with a private ACL, a thumbnail goes next
// to it, and a catalog row is registered to the owner.
func (s *Service) Upload(ctx context.Context, userID uuid.UUID, filename string, reader io.Reader, tags []string) (*Image, error) {
	if !imaging.ValidateType(filename) {
		return nil, ErrUnsupportedType
	}

	data, err := io.ReadAll(io.LimitReader(reader, s.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if !imaging.ValidateSize(int64(len(data)), s.maxBytes) {
		return nil, ErrImageTooLarge
	}

	processed, err := s.processor.Process(bytes.NewReader(data))
	if err != nil {
		return nil, ErrUnsupportedType
	}

	ext := strings.ToLower(filepath.Ext(filename))
	key := uuid.New().String() + ext

	if err := s.store.Put(ctx, key, bytes.NewReader(processed.Original), processed.ContentType); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnready, err)
	}
	if err := s.store.Put(ctx, "thumbs/"+key, bytes.NewReader(processed.Thumbnail), processed.ContentType); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnready, err)
	}

	img := &Image{
		ID:         uuid.New(),
		UserID:     userID,
		PublicURL:  s.store.GetURL(key),
		IsPublic:   false,
		IsDeleted:  false,
		Tags:       pq.StringArray(tags),
		UploadedAt: time.Now(),
	}

	if err := s.repo.Create(ctx, img); err != nil {
		return nil, err
	}

	log.Info().
		Str("image_id", img.ID.String()).
		Str("user_id", userID.String()).
		Str("url", img.PublicURL).
		Msg("image uploaded")

	return img, nil
}

// ThumbnailURL returns the stored thumbnail location for an image URL
func (s *Service) ThumbnailURL(publicURL string) string {
	key, err := s.store.KeyFromURL(publicURL)
	if err != nil {
		return ""
	}
	return s.store.GetURL("thumbs/" + key)
}

// ListOwned returns the URLs of the caller's images, live or soft-deleted
func (s *Service) ListOwned(ctx context.Context, userID uuid.UUID, deleted bool) ([]string, error) {
	images, err := s.repo.ListByOwner(ctx, userID, deleted)
	if err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(images))
	for _, img := range images {
		urls = append(urls, img.PublicURL)
	}
	return urls, nil
}

// Delete soft-deletes an image owned by the caller
func (s *Service) Delete(ctx context.Context, userID, imageID uuid.UUID) error {
	img, err := s.repo.GetByID(ctx, imageID)
	if err != nil {
		return err
	}
	if img == nil {
		return ErrImageNotFound
	}
	if img.UserID != userID {
		return ErrNotImageOwner
	}

	return s.repo.SoftDelete(ctx, imageID)
}

// Share makes an image publicly readable and returns its URL. The ACL
// change is one-way; sharing an already-public image is a no-op.
func (s *Service) Share(ctx context.Context, userID, imageID uuid.UUID) (string, error) {
	img, err := s.repo.GetByID(ctx, imageID)
	if err != nil {
		return "", err
	}
	if img == nil {
		return "", ErrImageNotFound
	}
	if img.UserID != userID {
		return "", ErrNotImageOwner
	}

	key, err := s.store.KeyFromURL(img.PublicURL)
	if err != nil {
		return "", err
	}
	if err := s.store.SetPublic(ctx, key); err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorageUnready, err)
	}

	if err := s.repo.SetPublic(ctx, imageID); err != nil {
		return "", err
	}

	return img.PublicURL, nil
}

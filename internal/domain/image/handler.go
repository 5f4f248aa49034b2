package image

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/imagerepo/imagerepo-api/internal/middleware"
	"github.com/imagerepo/imagerepo-api/internal/pkg/response"
)

// Handler handles image HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates image handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Upload handles POST /images
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		response.BadRequest(w, "Invalid multipart form")
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		files = r.MultipartForm.File["file"]
	}
	if len(files) == 0 {
		response.BadRequest(w, "No files provided")
		return
	}

	var tags []string
	if raw := strings.TrimSpace(r.FormValue("tags")); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	}

	uploaded := make([]UploadedImage, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			response.BadRequest(w, "Unreadable file: "+fh.Filename)
			return
		}

		img, err := h.service.Upload(r.Context(), userID, fh.Filename, f, tags)
		f.Close()
		if err != nil {
			h.handleError(w, err)
			return
		}

		uploaded = append(uploaded, UploadedImage{
			ID:        img.ID,
			URL:       img.PublicURL,
			Thumbnail: h.service.ThumbnailURL(img.PublicURL),
		})
	}

	response.Created(w, UploadResponse{
		Msg:    "images uploaded",
		Images: uploaded,
	})
}

// List handles GET /images
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, false)
}

// ListDeleted handles GET /images/deleted
func (h *Handler) ListDeleted(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, true)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, deleted bool) {
	userID := middleware.GetUserID(r.Context())

	urls, err := h.service.ListOwned(r.Context(), userID, deleted)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list images")
		response.InternalError(w)
		return
	}

	response.OK(w, ListResponse{Images: urls})
}

// Delete handles DELETE /images/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	imageID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid image ID")
		return
	}

	if err := h.service.Delete(r.Context(), userID, imageID); err != nil {
		h.handleError(w, err)
		return
	}

	response.OK(w, map[string]string{"msg": "image deleted"})
}

// Share handles POST /images/{id}/share
func (h *Handler) Share(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	imageID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid image ID")
		return
	}

	url, err := h.service.Share(r.Context(), userID, imageID)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.OK(w, ShareResponse{ImagePublicURL: url})
}

func (h *Handler) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrImageNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrNotImageOwner):
		response.Forbidden(w, err.Error())
	case errors.Is(err, ErrUnsupportedType), errors.Is(err, ErrImageTooLarge):
		response.Error(w, http.StatusUnprocessableEntity, "unprocessable_entity", err.Error())
	case errors.Is(err, ErrStorageUnready):
		log.Error().Err(err).Msg("Object storage failure")
		response.BadGateway(w, "Object storage unavailable")
	default:
		log.Error().Err(err).Msg("Image operation failed")
		response.InternalError(w)
	}
}

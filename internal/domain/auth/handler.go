package auth

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/imagerepo/imagerepo-api/internal/middleware"
	"github.com/imagerepo/imagerepo-api/internal/pkg/response"
	"github.com/imagerepo/imagerepo-api/internal/pkg/validator"
)

// Handler handles auth HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates auth handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Signup handles POST /auth/signup
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	result, err := h.service.Signup(r.Context(), &req)
	if err != nil {
		switch err {
		case ErrUsernameTaken:
			response.Conflict(w, "Username already registered")
		default:
			log.Error().Err(err).Str("username", req.Username).Msg("failed to sign up user")
			response.InternalError(w)
		}
		return
	}

	response.Created(w, result)
}

// Login handles POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	result, err := h.service.Login(r.Context(), &req)
	if err != nil {
		switch err {
		case ErrInvalidCredentials:
			response.Unauthorized(w, "Incorrect username or password")
		case ErrUserDisabled:
			response.Forbidden(w, "Account is disabled")
		default:
			log.Error().Err(err).Str("username", req.Username).Msg("failed to log in user")
			response.InternalError(w)
		}
		return
	}

	response.OK(w, result)
}

// Refresh handles POST /auth/refresh
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	result, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		switch err {
		case ErrRefreshTokenRequired:
			response.BadRequest(w, "Refresh token is required")
		case ErrInvalidRefreshToken, ErrUserNotFound:
			response.Unauthorized(w, "Invalid or expired refresh token")
		case ErrUserDisabled:
			response.Forbidden(w, "Account is disabled")
		default:
			log.Error().Err(err).Msg("failed to refresh tokens")
			response.InternalError(w)
		}
		return
	}

	response.OK(w, result)
}

// Logout handles POST /auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req LogoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if err := h.service.Logout(r.Context(), req.RefreshToken); err != nil {
		log.Error().Err(err).Msg("failed to log out")
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]string{"msg": "Logged out"})
}

// Me handles GET /auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	result, err := h.service.GetCurrentUser(r.Context(), userID)
	if err != nil {
		response.NotFound(w, "User not found")
		return
	}

	response.OK(w, result)
}

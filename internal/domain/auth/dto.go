package auth

import (
	"time"

	"github.com/google/uuid"
)

// SignupRequest for POST /auth/signup
type SignupRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64,username"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// LoginRequest for POST /auth/login
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest for POST /auth/refresh
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// LogoutRequest for POST /auth/logout
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokensResponse carries issued tokens
type TokensResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Credit    int64     `json:"credit"`
	Debit     int64     `json:"debit"`
	CreatedAt string    `json:"created_at"`
}

// AuthResponse combines user info and tokens
type AuthResponse struct {
	User   UserResponse   `json:"user"`
	Tokens TokensResponse `json:"tokens"`
}

// NewUserResponse builds a UserResponse
func NewUserResponse(id uuid.UUID, username, role string, credit, debit int64, createdAt time.Time) UserResponse {
	return UserResponse{
		ID:        id,
		Username:  username,
		Role:      role,
		Credit:    credit,
		Debit:     debit,
		CreatedAt: createdAt.Format(time.RFC3339),
	}
}

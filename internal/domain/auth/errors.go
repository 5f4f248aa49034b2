package auth

import "errors"

var (
	ErrUsernameTaken        = errors.New("username already registered")
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrInvalidRefreshToken  = errors.New("invalid or expired refresh token")
	ErrUserNotFound         = errors.New("user not found")
	ErrRefreshTokenRequired = errors.New("refresh token is required")
	ErrUserDisabled         = errors.New("account is disabled")
)

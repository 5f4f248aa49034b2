package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/imagerepo/imagerepo-api/internal/domain/user"
	"github.com/imagerepo/imagerepo-api/internal/pkg/jwt"
	"github.com/imagerepo/imagerepo-api/internal/pkg/password"
)

// Service handles authentication business logic
type Service struct {
	userRepo   user.Repository
	jwtService *jwt.Service
	redis      *redis.Client // nil if Redis disabled
}

// NewService creates auth service
func NewService(userRepo user.Repository, jwtService *jwt.Service, redis *redis.Client) *Service {
	return &Service{
		userRepo:   userRepo,
		jwtService: jwtService,
		redis:      redis,
	}
}

// Signup creates a new account with zero balances and the default role.
func (s *Service) Signup(ctx context.Context, req *SignupRequest) (*AuthResponse, error) {
	existing, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	u := &user.User{
		ID:           uuid.New(),
		Username:     req.Username,
		PasswordHash: hash,
		Role:         user.RoleUser,
		Disabled:     false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, u); err != nil {
		if err == user.ErrUsernameExists {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	return s.generateTokens(ctx, u)
}

// Login authenticates a user by username and password
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	u, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil || u == nil {
		return nil, ErrInvalidCredentials
	}

	if !password.Verify(req.Password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	if u.Disabled {
		return nil, ErrUserDisabled
	}

	_ = s.userRepo.UpdateLastLogin(ctx, u.ID)

	return s.generateTokens(ctx, u)
}

// Refresh rotates a refresh token and issues a new token pair
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	if refreshToken == "" {
		return nil, ErrRefreshTokenRequired
	}

	if _, err := s.jwtService.ValidateRefreshToken(refreshToken); err != nil {
		return nil, ErrInvalidRefreshToken
	}

	refreshHash := jwt.HashRefreshToken(refreshToken)
	userID, err := s.getRefreshToken(ctx, refreshHash)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil || u == nil {
		return nil, ErrUserNotFound
	}
	if u.Disabled {
		return nil, ErrUserDisabled
	}

	// Token rotation: the old refresh token is single-use.
	_ = s.deleteRefreshToken(ctx, refreshHash)

	return s.generateTokens(ctx, u)
}

// Logout invalidates a refresh token
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	refreshHash := jwt.HashRefreshToken(refreshToken)
	return s.deleteRefreshToken(ctx, refreshHash)
}

// GetCurrentUser returns the current user by ID
func (s *Service) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil || u == nil {
		return nil, ErrUserNotFound
	}

	resp := NewUserResponse(u.ID, u.Username, string(u.Role), u.Credit, u.Debit, u.CreatedAt)
	return &resp, nil
}

func (s *Service) generateTokens(ctx context.Context, u *user.User) (*AuthResponse, error) {
	accessToken, err := s.jwtService.GenerateAccessToken(u.ID, u.Username, string(u.Role), u.Disabled)
	if err != nil {
		return nil, err
	}

	refreshToken, _, _, err := s.jwtService.GenerateRefreshToken(u.ID)
	if err != nil {
		return nil, err
	}

	// Store hash(refresh) so a stolen store leaks no usable tokens.
	refreshHash := jwt.HashRefreshToken(refreshToken)
	if err := s.storeRefreshToken(ctx, refreshHash, u.ID); err != nil {
		return nil, err
	}

	return &AuthResponse{
		User: NewUserResponse(u.ID, u.Username, string(u.Role), u.Credit, u.Debit, u.CreatedAt),
		Tokens: TokensResponse{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			TokenType:    "bearer",
			ExpiresIn:    int(s.jwtService.GetAccessTTL().Seconds()),
		},
	}, nil
}

// Redis helpers (handle nil redis gracefully)

func (s *Service) storeRefreshToken(ctx context.Context, tokenHash string, userID uuid.UUID) error {
	if s.redis == nil {
		return nil
	}
	return s.redis.Set(ctx, "refresh:"+tokenHash, userID.String(), s.jwtService.GetRefreshTTL()).Err()
}

func (s *Service) getRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, error) {
	if s.redis == nil {
		// Without Redis, refresh tokens don't work
		return uuid.Nil, ErrInvalidRefreshToken
	}
	val, err := s.redis.Get(ctx, "refresh:"+tokenHash).Result()
	if err != nil {
		return uuid.Nil, ErrInvalidRefreshToken
	}
	return uuid.Parse(val)
}

func (s *Service) deleteRefreshToken(ctx context.Context, tokenHash string) error {
	if s.redis == nil {
		return nil
	}
	return s.redis.Del(ctx, "refresh:"+tokenHash).Err()
}

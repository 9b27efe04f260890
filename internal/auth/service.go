package auth

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/issue-management/internal"
)

type Service struct {
	repo   RepositoryAPI
	tokens TokenGeneratorAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, tokens TokenGeneratorAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		tokens: tokens,
		logger: logger,
	}
}

func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	hash, userID, err := s.repo.GetCredentials(ctx, dto.Email)
	if err != nil {
		s.logger.Warn("login failed: unknown email", "email", dto.Email)
		return AuthTokens{}, internal.ErrInvalidCredentials
	}

	if err := VerifyPassword(hash, dto.Password); err != nil {
		s.logger.Warn("login failed: bad password", "user_id", userID)
		return AuthTokens{}, internal.ErrInvalidCredentials
	}

	u, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		s.logger.Error("login failed: load user", "error", err, "user_id", userID)
		return AuthTokens{}, internal.NewInternalError("failed to load user", err)
	}
	if u.IsDisabled {
		s.logger.Warn("login rejected: suspended user", "user_id", userID)
		return AuthTokens{}, internal.ErrUserSuspended
	}

	return s.issueTokens(userID, u.Email)
}

func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		if err == ErrTokenExpired {
			return AuthTokens{}, internal.ErrTokenExpired
		}
		return AuthTokens{}, internal.ErrInvalidToken
	}

	u, err := s.repo.GetUser(ctx, claims.UserID)
	if err != nil {
		return AuthTokens{}, internal.ErrInvalidToken
	}
	if u.IsDisabled {
		return AuthTokens{}, internal.ErrUserSuspended
	}

	return s.issueTokens(u.ID, u.Email)
}

func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokens.ValidateAccessToken(tokenString)
}

func (s *Service) GetUser(ctx context.Context, userID int64) (*User, error) {
	return s.repo.GetUser(ctx, userID)
}

func (s *Service) issueTokens(userID int64, email string) (AuthTokens, error) {
	access, err := s.tokens.GenerateAccessToken(userID, email)
	if err != nil {
		s.logger.Error("failed to sign access token", "error", err, "user_id", userID)
		return AuthTokens{}, internal.NewInternalError("failed to issue tokens", err)
	}
	refresh, err := s.tokens.GenerateRefreshToken(userID, email)
	if err != nil {
		s.logger.Error("failed to sign refresh token", "error", err, "user_id", userID)
		return AuthTokens{}, internal.NewInternalError("failed to issue tokens", err)
	}
	return AuthTokens{AccessToken: access, RefreshToken: refresh}, nil
}

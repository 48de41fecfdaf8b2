package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/blog-service/internal/auth"
	"github.com/spec-kit/blog-service/internal/config"
	"github.com/spec-kit/blog-service/internal/domain"
	"github.com/spec-kit/blog-service/internal/repository"
	apperrors "github.com/spec-kit/blog-service/pkg/util"
)

// AuthService coordinates registration, login and session lifecycle. Tokens
// it issues live in the session store for the same 12 hours as their
// embedded expiry; revocation is deletion from the store.
type AuthService struct {
	users      repository.UserRepository
	sessions   auth.SessionStore
	tokenMgr   *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, users repository.UserRepository, sessions auth.SessionStore, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:      users,
		sessions:   sessions,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL()),
		bcryptCost: cfg.BcryptCost,
		logger:     logger,
	}
}

// Register creates a reader account. Usernames are unique.
func (s *AuthService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, apperrors.NewConflict("username already taken", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: hash,
		Nickname:     username,
		Role:         domain.RoleReader,
		Status:       domain.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login authenticates and issues a session token, storing it in the session
// store with a TTL matching the token's own expiry.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", time.Time{}, apperrors.NewValidationError("wrong username or password", nil)
		}
		return "", time.Time{}, err
	}
	if user.Disabled() {
		return "", time.Time{}, apperrors.NewForbiddenAction("account is disabled")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return "", time.Time{}, apperrors.NewValidationError("wrong username or password", nil)
	}

	if err := s.users.TouchLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn("failed to record last login", zap.Int64("user_id", user.ID), zap.Error(err))
	}

	token, expiresAt, err := s.tokenMgr.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		return "", time.Time{}, err
	}
	if err := s.sessions.Save(ctx, token, s.tokenMgr.TTL()); err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// CurrentUser loads the caller's account.
func (s *AuthService) CurrentUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile changes nickname and email.
func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, nickname, email string) error {
	return s.users.UpdateProfile(ctx, userID, nickname, email)
}

// UpdateAvatar changes the avatar URL.
func (s *AuthService) UpdateAvatar(ctx context.Context, userID int64, avatarURL string) error {
	return s.users.UpdateAvatar(ctx, userID, avatarURL)
}

// ChangePassword verifies the current password, updates the hash, then
// revokes the presented token so the old session dies immediately even
// though its embedded expiry has not elapsed.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword, presentedToken string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := auth.ComparePassword(user.PasswordHash, oldPassword); err != nil {
		return apperrors.NewValidationError("current password is incorrect", nil)
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}
	return s.sessions.Revoke(ctx, presentedToken)
}

// Logout revokes the presented token.
func (s *AuthService) Logout(ctx context.Context, presentedToken string) error {
	return s.sessions.Revoke(ctx, presentedToken)
}

// TokenManager exposes the underlying token manager for resolver wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

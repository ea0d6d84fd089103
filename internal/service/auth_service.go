package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/dealer-service/internal/auth"
	"github.com/spec-kit/dealer-service/internal/config"
	"github.com/spec-kit/dealer-service/internal/domain"
	"github.com/spec-kit/dealer-service/internal/events"
	"github.com/spec-kit/dealer-service/internal/repository"
	apperrors "github.com/spec-kit/dealer-service/pkg/util/errorutil"
)

// AuthService coordinates login, token refresh, and account lifecycle flows.
type AuthService struct {
	users      repository.UserRepository
	accountTok repository.AccountTokenRepository
	tokenMgr   *auth.TokenManager
	refreshMgr *auth.RefreshManager
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
	accountTTL time.Duration
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	UserRepo         repository.UserRepository
	AccountTokenRepo repository.AccountTokenRepository
	RefreshTokenRepo repository.RefreshTokenRepository
	Dispatcher       events.Dispatcher
	Logger           *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		accountTok: deps.AccountTokenRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL()),
		refreshMgr: auth.NewRefreshManager(deps.RefreshTokenRepo, cfg.Auth.RefreshTokenTTL()),
		dispatcher: deps.Dispatcher,
		logger:     logger,
		bcryptCost: cfg.Auth.BcryptCost,
		accountTTL: cfg.Auth.AccountTokenTTL(),
	}
}

// Login authenticates a user and issues a token pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, *domain.TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, nil, err
	}
	if !user.IsActive {
		return nil, nil, apperrors.NewUnauthorized("account deactivated")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, nil, apperrors.NewUnauthorized("invalid credentials")
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.publish(ctx, events.EventUserLoggedIn, "user", user.ID, user, events.UserChangedPayload{
		Email: user.Email,
		Role:  user.Role,
	})
	return user, pair, nil
}

// Refresh validates a refresh token and rotates it, returning a new pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	userID, err := s.refreshMgr.Validate(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrRefreshTokenInvalid) {
			return nil, apperrors.NewUnauthorized("invalid refresh token")
		}
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid refresh token")
	}
	if !user.IsActive {
		return nil, apperrors.NewUnauthorized("account deactivated")
	}

	// Rotation: Mint replaces the stored token, invalidating the presented one.
	return s.issueTokenPair(ctx, user)
}

// Logout revokes the presented refresh token.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.refreshMgr.Revoke(ctx, refreshToken)
}

// RequestPasswordReset persists a reset token for the given email. The token is
// returned so the delivery channel stays out of this layer.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (*repository.AccountToken, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	token := &repository.AccountToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		Purpose:   domain.TokenPurposePasswordReset,
		ExpiresAt: time.Now().Add(s.accountTTL),
	}
	if err := s.accountTok.Create(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

// ConfirmPasswordReset validates the reset token and updates the password.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, tokenStr, newPassword string) error {
	token, err := s.consumeAccountToken(ctx, tokenStr, domain.TokenPurposePasswordReset)
	if err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		return err
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	// A password change invalidates any outstanding session.
	return s.refreshMgr.RevokeForUser(ctx, user.ID)
}

// ActivateAccount consumes an activation token, sets the initial password, and
// logs the user straight in.
func (s *AuthService) ActivateAccount(ctx context.Context, tokenStr, password string) (*domain.User, *domain.TokenPair, error) {
	token, err := s.consumeAccountToken(ctx, tokenStr, domain.TokenPurposeActivation)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		return nil, nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, nil, err
	}
	user.PasswordHash = hash
	user.IsActive = true
	if err := s.users.Update(ctx, user); err != nil {
		return nil, nil, err
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// ChangePassword verifies the current password before updating to a new hash.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return apperrors.NewUnauthorized("invalid credentials")
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	return s.users.Update(ctx, user)
}

// NewActivationToken mints an activation token for an invited user.
func (s *AuthService) NewActivationToken(ctx context.Context, userID string) (*repository.AccountToken, error) {
	token := &repository.AccountToken{
		UserID:    userID,
		Token:     uuid.NewString(),
		Purpose:   domain.TokenPurposeActivation,
		ExpiresAt: time.Now().Add(s.accountTTL),
	}
	if err := s.accountTok.Create(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

// TokenManager exposes the underlying manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) issueTokenPair(ctx context.Context, user *domain.User) (*domain.TokenPair, error) {
	access, accessExp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := s.refreshMgr.Mint(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &domain.TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (s *AuthService) consumeAccountToken(ctx context.Context, tokenStr string, purpose domain.AccountTokenPurpose) (*repository.AccountToken, error) {
	token, err := s.accountTok.GetByToken(ctx, tokenStr, purpose)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewValidationError("invalid token", nil)
		}
		return nil, err
	}
	if token.UsedAt != nil || time.Now().After(token.ExpiresAt) {
		return nil, apperrors.NewValidationError("token expired or used", nil)
	}
	if err := s.accountTok.MarkUsed(ctx, token.ID); err != nil {
		return nil, err
	}
	return token, nil
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, entityType, entityID string, actor *domain.User, payload any) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		EntityType: entityType,
		EntityID:   entityID,
		Timestamp:  time.Now(),
		Payload:    payload,
	}
	if actor != nil {
		id := actor.ID
		event.Actor = events.Actor{UserID: &id, Name: actor.FullName()}
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish event", zap.String("type", string(eventType)), zap.Error(err))
	}
}

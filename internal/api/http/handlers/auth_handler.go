package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/dealer-service/internal/api/dto"
	"github.com/spec-kit/dealer-service/internal/auth"
	"github.com/spec-kit/dealer-service/internal/service"
	apperrors "github.com/spec-kit/dealer-service/pkg/util/errorutil"
)

// AuthHandler exposes session and account lifecycle endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	user, pair, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": userSummary(user),
			"auth": dto.AuthResponse{
				AccessToken:      pair.AccessToken,
				AccessExpiresAt:  pair.AccessExpiresAt,
				RefreshToken:     pair.RefreshToken,
				RefreshExpiresAt: pair.RefreshExpiresAt,
			},
		},
	})
}

// Refresh handles POST /auth/refresh-token.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.RefreshToken == "" {
		return apperrors.NewValidationError("refreshToken required", nil)
	}

	pair, err := h.auth.Refresh(c.Context(), req.RefreshToken)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": dto.RefreshResponse{
			AccessToken:  pair.AccessToken,
			RefreshToken: pair.RefreshToken,
		},
	})
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req dto.LogoutRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.auth.Logout(c.Context(), req.RefreshToken); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ForgotPassword handles POST /auth/forgot-password. The response never
// reveals whether the email exists.
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" {
		return apperrors.NewValidationError("email required", nil)
	}

	_, _ = h.auth.RequestPasswordReset(c.Context(), req.Email)
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "ok"}})
}

// ResetPassword handles POST /auth/reset-password.
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Token == "" || req.Password == "" {
		return apperrors.NewValidationError("token and password required", nil)
	}

	if err := h.auth.ConfirmPasswordReset(c.Context(), req.Token, req.Password); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "ok"}})
}

// ActivateAccount handles POST /auth/account-activation.
func (h *AuthHandler) ActivateAccount(c *fiber.Ctx) error {
	var req dto.ActivateAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Token == "" || req.Password == "" {
		return apperrors.NewValidationError("token and password required", nil)
	}

	user, pair, err := h.auth.ActivateAccount(c.Context(), req.Token, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": userSummary(user),
			"auth": dto.AuthResponse{
				AccessToken:      pair.AccessToken,
				AccessExpiresAt:  pair.AccessExpiresAt,
				RefreshToken:     pair.RefreshToken,
				RefreshExpiresAt: pair.RefreshExpiresAt,
			},
		},
	})
}

// ChangePassword handles POST /auth/password/change.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return apperrors.NewValidationError("currentPassword and newPassword required", nil)
	}

	if err := h.auth.ChangePassword(c.Context(), principal.User.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "ok"}})
}

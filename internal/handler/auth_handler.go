package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "voxadmin/internal/errors"
	"voxadmin/internal/middleware"
	"voxadmin/internal/ratelimit"
	"voxadmin/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
	limiter     *ratelimit.Limiter
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService, limiter *ratelimit.Limiter) *AuthHandler {
	return &AuthHandler{authService: authService, limiter: limiter}
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest represents a token refresh request.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// LogoutRequest represents a logout request.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ForgotPasswordRequest represents a reset-link request.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest consumes a reset token.
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

// ChangePasswordRequest represents a self-service password change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
}

func (h *AuthHandler) checkRate(c echo.Context, scope string) error {
	if !h.limiter.Allow(c.Request().Context(), scope, c.RealIP()) {
		return apperrors.NewHTTPError(http.StatusTooManyRequests, "Too many attempts, please try again later")
	}
	return nil
}

// Login godoc
// @Summary Authenticate with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	if err := h.checkRate(c, "login"); err != nil {
		return err
	}

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return apperrors.Validation(err.Error())
	}

	accessToken, refreshToken, user, err := h.authService.Login(
		c.Request().Context(), req.Email, req.Password, middleware.RequestMeta(c))
	if err != nil {
		return translate(err)
	}

	return respond(c, http.StatusOK, echo.Map{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"user":          user,
	})
}

// Refresh godoc
// @Summary Exchange a refresh token for a new access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "Refresh token"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req RefreshRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return apperrors.Validation(err.Error())
	}

	accessToken, err := h.authService.RefreshToken(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return translate(err)
	}
	return respond(c, http.StatusOK, echo.Map{"access_token": accessToken})
}

// ForgotPassword godoc
// @Summary Request a password reset link
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ForgotPasswordRequest true "Account email"
// @Success 200 {object} map[string]interface{}
// @Failure 429 {object} errors.ErrorResponse
// @Router /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	if err := h.checkRate(c, "forgot_password"); err != nil {
		return err
	}

	var req ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return apperrors.Validation(err.Error())
	}

	emailSent, err := h.authService.ForgotPassword(c.Request().Context(), req.Email)
	if err != nil {
		return translate(err)
	}
	// Always report success so the endpoint cannot enumerate accounts.
	return respond(c, http.StatusOK, echo.Map{
		"message":   "If the address exists, a reset link has been sent",
		"emailSent": emailSent,
	})
}

// ResetPassword godoc
// @Summary Consume a reset token and set a new password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ResetPasswordRequest true "Token and new password"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Router /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return apperrors.Validation(err.Error())
	}

	if err := h.authService.ResetPassword(c.Request().Context(), req.Token, req.NewPassword); err != nil {
		return translate(err)
	}
	return respond(c, http.StatusOK, echo.Map{"message": "password has been reset"})
}

// Me godoc
// @Summary Return the authenticated user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return apperrors.Unauthenticated("not authenticated")
	}
	return respond(c, http.StatusOK, echo.Map{"user": user})
}

// ChangePassword godoc
// @Summary Change the authenticated user's password
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ChangePasswordRequest true "Current and new password"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/change-password [post]
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return apperrors.Unauthenticated("not authenticated")
	}

	var req ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return apperrors.Validation(err.Error())
	}

	if err := h.authService.ChangePassword(
		c.Request().Context(), user, req.CurrentPassword, req.NewPassword, middleware.RequestMeta(c)); err != nil {
		return translate(err)
	}
	return respond(c, http.StatusOK, echo.Map{"message": "password changed"})
}

// Logout godoc
// @Summary Invalidate the current access token and refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return apperrors.Unauthenticated("not authenticated")
	}

	var req LogoutRequest
	_ = c.Bind(&req) // refresh token is optional

	if err := h.authService.Logout(
		c.Request().Context(), user, middleware.AccessTokenID(c), req.RefreshToken, middleware.RequestMeta(c)); err != nil {
		return translate(err)
	}
	return respond(c, http.StatusOK, echo.Map{"message": "logged out"})
}

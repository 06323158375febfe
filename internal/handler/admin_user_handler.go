package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apperrors "voxadmin/internal/errors"
	"voxadmin/internal/middleware"
	"voxadmin/internal/model"
	"voxadmin/internal/service"
)

// AdminUserHandler handles admin user management endpoints.
type AdminUserHandler struct {
	userService service.UserAdminService
}

// NewAdminUserHandler creates a new admin user handler.
func NewAdminUserHandler(userService service.UserAdminService) *AdminUserHandler {
	return &AdminUserHandler{userService: userService}
}

// CreateUserRequest describes an admin-created account.
type CreateUserRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required"`
	Role  string `json:"role"`
	Tier  string `json:"subscription_tier"`
}

// UpdateUserRequest is a partial user patch.
type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Role     *string `json:"role"`
	Tier     *string `json:"subscription_tier"`
	IsActive *bool   `json:"is_active"`
}

// List godoc
// @Summary List users
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /admin/users [get]
func (h *AdminUserHandler) List(c echo.Context) error {
	users, err := h.userService.List(c.Request().Context())
	if err != nil {
		return translate(err)
	}
	return respond(c, http.StatusOK, echo.Map{"users": users})
}

// Get godoc
// @Summary Get one user
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param uid path string true "User ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/users/{uid} [get]
func (h *AdminUserHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("uid"))
	if err != nil {
		return apperrors.Validation("invalid user id")
	}
	user, err := h.userService.Get(c.Request().Context(), id)
	if err != nil {
		return translate(err)
	}
	return respond(c, http.StatusOK, echo.Map{"user": user})
}

// Create godoc
// @Summary Create a user with a temporary password
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateUserRequest true "User data"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /admin/users [post]
func (h *AdminUserHandler) Create(c echo.Context) error {
	actor, _ := middleware.CurrentUser(c)

	var req CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return apperrors.Validation(err.Error())
	}

	result, err := h.userService.Create(c.Request().Context(), actor, service.CreateUserInput{
		Email: req.Email,
		Name:  req.Name,
		Role:  model.Role(req.Role),
		Tier:  model.SubscriptionTier(req.Tier),
	}, middleware.RequestMeta(c))
	if err != nil {
		return translate(err)
	}

	payload := echo.Map{"user": result.User, "emailSent": result.EmailSent}
	if result.TempPassword != "" {
		payload["temp_password"] = result.TempPassword
	}
	return respond(c, http.StatusCreated, payload)
}

// Update godoc
// @Summary Patch role, tier, active flag, or name
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param uid path string true "User ID"
// @Param request body UpdateUserRequest true "Fields to change"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/users/{uid} [patch]
func (h *AdminUserHandler) Update(c echo.Context) error {
	actor, _ := middleware.CurrentUser(c)

	id, err := uuid.Parse(c.Param("uid"))
	if err != nil {
		return apperrors.Validation("invalid user id")
	}

	var req UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}

	in := service.UpdateUserInput{Name: req.Name, IsActive: req.IsActive}
	if req.Role != nil {
		role := model.Role(*req.Role)
		in.Role = &role
	}
	if req.Tier != nil {
		tier := model.SubscriptionTier(*req.Tier)
		in.Tier = &tier
	}

	user, err := h.userService.Update(c.Request().Context(), actor, id, in, middleware.RequestMeta(c))
	if err != nil {
		return translate(err)
	}
	return respond(c, http.StatusOK, echo.Map{"user": user})
}

// Delete godoc
// @Summary Delete a user and their owned rows
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param uid path string true "User ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/users/{uid} [delete]
func (h *AdminUserHandler) Delete(c echo.Context) error {
	actor, _ := middleware.CurrentUser(c)

	id, err := uuid.Parse(c.Param("uid"))
	if err != nil {
		return apperrors.Validation("invalid user id")
	}
	if err := h.userService.Delete(c.Request().Context(), actor, id, middleware.RequestMeta(c)); err != nil {
		return translate(err)
	}
	return respond(c, http.StatusOK, echo.Map{"message": "user deleted"})
}

// ResetPassword godoc
// @Summary Issue a fresh temporary password for a user
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param uid path string true "User ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/users/{uid}/reset-password [post]
func (h *AdminUserHandler) ResetPassword(c echo.Context) error {
	actor, _ := middleware.CurrentUser(c)

	id, err := uuid.Parse(c.Param("uid"))
	if err != nil {
		return apperrors.Validation("invalid user id")
	}
	result, err := h.userService.ResetUserPassword(c.Request().Context(), actor, id, middleware.RequestMeta(c))
	if err != nil {
		return translate(err)
	}

	payload := echo.Map{"emailSent": result.EmailSent}
	if result.TempPassword != "" {
		payload["temp_password"] = result.TempPassword
	}
	return respond(c, http.StatusOK, payload)
}

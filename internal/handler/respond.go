package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "voxadmin/internal/errors"
	"voxadmin/internal/middleware"
	"voxadmin/internal/service"
)

// respond writes the success envelope. Every payload key is merged beside
// success:true.
func respond(c echo.Context, status int, payload echo.Map) error {
	body := echo.Map{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	return c.JSON(status, body)
}

// translate maps service sentinel errors to HTTP errors before the generic
// mapper runs.
func translate(err error) error {
	var weak *service.WeakPasswordError
	switch {
	case errors.As(err, &weak):
		return apperrors.Validation("password does not meet strength requirements").
			WithDetails(map[string]any{"violations": weak.Violations})
	case errors.Is(err, service.ErrInvalidCredentials):
		return apperrors.Unauthenticated(service.ErrInvalidCredentials.Error())
	case errors.Is(err, service.ErrAccountDeactivated):
		return apperrors.Forbidden(middleware.DeactivatedAccountMessage)
	case errors.Is(err, service.ErrInvalidRefreshToken):
		return apperrors.Unauthenticated(service.ErrInvalidRefreshToken.Error())
	case errors.Is(err, service.ErrInvalidResetToken):
		return apperrors.Validation(service.ErrInvalidResetToken.Error())
	case errors.Is(err, service.ErrAgentAlreadyAssigned):
		// The frontend treats this as a form validation failure.
		return apperrors.NewHTTPError(http.StatusBadRequest, service.ErrAgentAlreadyAssigned.Error())
	case errors.Is(err, service.ErrEmailTaken):
		return apperrors.Conflict(service.ErrEmailTaken.Error())
	case errors.Is(err, service.ErrSelfDeletion):
		return apperrors.Forbidden(service.ErrSelfDeletion.Error())
	case errors.Is(err, service.ErrSelfDemotion):
		return apperrors.Forbidden(service.ErrSelfDemotion.Error())
	case errors.Is(err, service.ErrMarkToggleForbidden):
		return apperrors.Forbidden(service.ErrMarkToggleForbidden.Error())
	case errors.Is(err, service.ErrInvalidInput):
		return apperrors.Validation(err.Error())
	}
	return apperrors.MapError(err)
}

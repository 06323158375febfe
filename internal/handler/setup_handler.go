package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"voxadmin/internal/service"
)

// SetupHandler handles schema init and status endpoints.
type SetupHandler struct {
	setupService service.SetupService
}

// NewSetupHandler creates a new setup handler.
func NewSetupHandler(setupService service.SetupService) *SetupHandler {
	return &SetupHandler{setupService: setupService}
}

// InitRequest optionally overrides the generated default admin password.
type InitRequest struct {
	AdminPassword string `json:"admin_password"`
}

// Init godoc
// @Summary Initialize schema and bootstrap the default admin
// @Tags setup
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} errors.ErrorResponse
// @Router /setup/init [post]
func (h *SetupHandler) Init(c echo.Context) error {
	var req InitRequest
	_ = c.Bind(&req) // body is optional

	created, tempPassword, err := h.setupService.Init(c.Request().Context(), req.AdminPassword)
	if err != nil {
		return translate(err)
	}
	resp := echo.Map{"admin_created": created}
	if tempPassword != "" {
		// Only shown once; the generated credential is not persisted in clear.
		resp["temp_password"] = tempPassword
	}
	return respond(c, http.StatusOK, resp)
}

// Status godoc
// @Summary Report user/admin/assignment counts
// @Tags setup
// @Produce json
// @Success 200 {object} service.SetupStatus
// @Router /setup/status [get]
func (h *SetupHandler) Status(c echo.Context) error {
	status, err := h.setupService.Status(c.Request().Context())
	if err != nil {
		return translate(err)
	}
	return respond(c, http.StatusOK, echo.Map{"status": status})
}

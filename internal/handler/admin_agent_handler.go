package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apperrors "voxadmin/internal/errors"
	"voxadmin/internal/service"
)

// AdminAgentHandler handles the admin agent listing.
type AdminAgentHandler struct {
	agentService service.AgentAdminService
}

// NewAdminAgentHandler creates a new admin agent handler.
func NewAdminAgentHandler(agentService service.AgentAdminService) *AdminAgentHandler {
	return &AdminAgentHandler{agentService: agentService}
}

// List godoc
// @Summary List agents with assignment counts
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /admin/agents [get]
func (h *AdminAgentHandler) List(c echo.Context) error {
	agents, err := h.agentService.List(c.Request().Context())
	if err != nil {
		return translate(err)
	}
	return respond(c, http.StatusOK, echo.Map{"agents": agents})
}

// Get godoc
// @Summary Get one agent
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param agentId path string true "Agent ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/agents/{agentId} [get]
func (h *AdminAgentHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("agentId"))
	if err != nil {
		return apperrors.Validation("invalid agent id")
	}
	agent, err := h.agentService.Get(c.Request().Context(), id)
	if err != nil {
		return translate(err)
	}
	return respond(c, http.StatusOK, echo.Map{"agent": agent})
}

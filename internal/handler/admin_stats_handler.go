package handler

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apperrors "voxadmin/internal/errors"
	"voxadmin/internal/service"
)

// AdminStatsHandler handles admin statistics and audit-log queries.
type AdminStatsHandler struct {
	statsService service.StatsService
}

// NewAdminStatsHandler creates a new stats handler.
func NewAdminStatsHandler(statsService service.StatsService) *AdminStatsHandler {
	return &AdminStatsHandler{statsService: statsService}
}

// Stats godoc
// @Summary Admin dashboard totals
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.AdminStats
// @Router /admin/stats [get]
func (h *AdminStatsHandler) Stats(c echo.Context) error {
	stats, err := h.statsService.Stats(c.Request().Context())
	if err != nil {
		return translate(err)
	}
	return respond(c, http.StatusOK, echo.Map{"stats": stats})
}

// AuditLogs godoc
// @Summary Query the audit log
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param actor_id query string false "Filter by actor"
// @Param action query string false "Filter by action"
// @Param resource_type query string false "Filter by resource type"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} service.AuditPage
// @Router /admin/audit-logs [get]
func (h *AdminStatsHandler) AuditLogs(c echo.Context) error {
	var actorID *uuid.UUID
	if raw := c.QueryParam("actor_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return apperrors.Validation("invalid actor id")
		}
		actorID = &id
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	page, err := h.statsService.AuditLogs(c.Request().Context(),
		actorID, c.QueryParam("action"), c.QueryParam("resource_type"), limit, offset)
	if err != nil {
		return translate(err)
	}
	return respond(c, http.StatusOK, echo.Map{"audit": page})
}

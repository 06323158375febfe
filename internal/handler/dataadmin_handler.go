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

// DataAdminHandler handles destructive deletes, summary edits, and the
// exclusion ledger.
type DataAdminHandler struct {
	dataAdminService service.DataAdminService
}

// NewDataAdminHandler creates a new data-admin handler.
func NewDataAdminHandler(dataAdminService service.DataAdminService) *DataAdminHandler {
	return &DataAdminHandler{dataAdminService: dataAdminService}
}

// DeleteRequest optionally carries the exclusion reason.
type DeleteRequest struct {
	Reason string `json:"reason"`
}

// EditSummaryRequest updates a conversation summary.
type EditSummaryRequest struct {
	Summary  string `json:"summary" validate:"required"`
	Language string `json:"language"`
}

func bindReason(c echo.Context) string {
	var req DeleteRequest
	_ = c.Bind(&req)
	return req.Reason
}

// DeleteSession godoc
// @Summary Delete a session with its tombstone
// @Tags data-admin
// @Produce json
// @Security BearerAuth
// @Param sessionId path string true "Session ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} errors.ErrorResponse
// @Router /data-admin/sessions/{sessionId} [delete]
func (h *DataAdminHandler) DeleteSession(c echo.Context) error {
	actor, _ := middleware.CurrentUser(c)

	sessionID, err := uuid.Parse(c.Param("sessionId"))
	if err != nil {
		return apperrors.Validation("invalid session id")
	}
	if err := h.dataAdminService.DeleteSession(
		c.Request().Context(), actor, sessionID, bindReason(c), middleware.RequestMeta(c)); err != nil {
		return translate(err)
	}
	return respond(c, http.StatusOK, echo.Map{"message": "session deleted"})
}

// DeleteConversation godoc
// @Summary Delete a conversation with its tombstone
// @Tags data-admin
// @Produce json
// @Security BearerAuth
// @Param conversationId path string true "Conversation ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} errors.ErrorResponse
// @Router /data-admin/conversations/{conversationId} [delete]
func (h *DataAdminHandler) DeleteConversation(c echo.Context) error {
	actor, _ := middleware.CurrentUser(c)

	conversationID, err := uuid.Parse(c.Param("conversationId"))
	if err != nil {
		return apperrors.Validation("invalid conversation id")
	}
	if err := h.dataAdminService.DeleteConversation(
		c.Request().Context(), actor, conversationID, bindReason(c), middleware.RequestMeta(c)); err != nil {
		return translate(err)
	}
	return respond(c, http.StatusOK, echo.Map{"message": "conversation deleted"})
}

// DeleteAgent godoc
// @Summary Delete an agent, cascading to sessions and conversations
// @Tags data-admin
// @Produce json
// @Security BearerAuth
// @Param agentId path string true "Agent ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} errors.ErrorResponse
// @Router /data-admin/agents/{agentId} [delete]
func (h *DataAdminHandler) DeleteAgent(c echo.Context) error {
	actor, _ := middleware.CurrentUser(c)

	agentID, err := uuid.Parse(c.Param("agentId"))
	if err != nil {
		return apperrors.Validation("invalid agent id")
	}
	if err := h.dataAdminService.DeleteAgent(
		c.Request().Context(), actor, agentID, bindReason(c), middleware.RequestMeta(c)); err != nil {
		return translate(err)
	}
	return respond(c, http.StatusOK, echo.Map{"message": "agent deleted"})
}

// EditSummary godoc
// @Summary Edit a conversation summary
// @Tags data-admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param conversationId path string true "Conversation ID"
// @Param request body EditSummaryRequest true "Summary"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} errors.ErrorResponse
// @Router /data-admin/conversations/{conversationId}/summary [put]
func (h *DataAdminHandler) EditSummary(c echo.Context) error {
	actor, _ := middleware.CurrentUser(c)

	conversationID, err := uuid.Parse(c.Param("conversationId"))
	if err != nil {
		return apperrors.Validation("invalid conversation id")
	}

	var req EditSummaryRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return apperrors.Validation(err.Error())
	}

	conversation, err := h.dataAdminService.EditSummary(
		c.Request().Context(), actor, conversationID, req.Summary, req.Language, middleware.RequestMeta(c))
	if err != nil {
		return translate(err)
	}
	return respond(c, http.StatusOK, echo.Map{"conversation": conversation})
}

// ListExcluded godoc
// @Summary List exclusion tombstones, most recent first
// @Tags data-admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /data-admin/excluded [get]
func (h *DataAdminHandler) ListExcluded(c echo.Context) error {
	items, err := h.dataAdminService.ListExcluded(c.Request().Context())
	if err != nil {
		return translate(err)
	}
	return respond(c, http.StatusOK, echo.Map{"excluded": items})
}

// Restore godoc
// @Summary Remove a tombstone so the item may re-sync
// @Tags data-admin
// @Produce json
// @Security BearerAuth
// @Param type path string true "Item type (agent|session|conversation)"
// @Param id path string true "Item ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} errors.ErrorResponse
// @Router /data-admin/excluded/{type}/{id} [delete]
func (h *DataAdminHandler) Restore(c echo.Context) error {
	actor, _ := middleware.CurrentUser(c)

	itemType := model.ExcludedItemType(c.Param("type"))
	if !itemType.Valid() {
		return apperrors.Validation("invalid item type")
	}
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperrors.Validation("invalid item id")
	}

	if err := h.dataAdminService.Restore(
		c.Request().Context(), actor, itemType, itemID, middleware.RequestMeta(c)); err != nil {
		return translate(err)
	}
	return respond(c, http.StatusOK, echo.Map{"message": "item restored"})
}

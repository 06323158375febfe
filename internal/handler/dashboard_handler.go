package handler

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apperrors "voxadmin/internal/errors"
	"voxadmin/internal/middleware"
	"voxadmin/internal/model"
	"voxadmin/internal/service"
)

// DashboardHandler handles the authenticated user surface.
type DashboardHandler struct {
	dashboardService service.DashboardService
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(dashboardService service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// MarkRequest sets a conversation's review status.
type MarkRequest struct {
	ReviewStatus string `json:"review_status" validate:"required"`
}

func parseAgentID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("agentId"))
	if err != nil {
		return uuid.Nil, apperrors.Validation("invalid agent id")
	}
	return id, nil
}

func pageParams(c echo.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	offset, _ = strconv.Atoi(c.QueryParam("offset"))
	return limit, offset
}

// Summary godoc
// @Summary Dashboard summary over accessible agents
// @Tags user
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.DashboardSummary
// @Router /user/dashboard [get]
func (h *DashboardHandler) Summary(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return apperrors.Unauthenticated("not authenticated")
	}
	summary, err := h.dashboardService.Summary(c.Request().Context(), user)
	if err != nil {
		return translate(err)
	}
	return respond(c, http.StatusOK, echo.Map{"summary": summary})
}

// AgentDetail godoc
// @Summary Per-agent detail
// @Tags user
// @Produce json
// @Security BearerAuth
// @Param agentId path string true "Agent ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} errors.ErrorResponse
// @Router /user/agents/{agentId} [get]
func (h *DashboardHandler) AgentDetail(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return apperrors.Unauthenticated("not authenticated")
	}
	agentID, err := parseAgentID(c)
	if err != nil {
		return err
	}
	agent, err := h.dashboardService.AgentDetail(c.Request().Context(), user, agentID)
	if err != nil {
		return translate(err)
	}
	return respond(c, http.StatusOK, echo.Map{"agent": agent})
}

// Sessions godoc
// @Summary List an agent's sessions
// @Tags user
// @Produce json
// @Security BearerAuth
// @Param agentId path string true "Agent ID"
// @Success 200 {object} service.SessionPage
// @Failure 403 {object} errors.ErrorResponse
// @Router /user/agents/{agentId}/sessions [get]
func (h *DashboardHandler) Sessions(c echo.Context) error {
	agentID, err := parseAgentID(c)
	if err != nil {
		return err
	}
	limit, offset := pageParams(c)
	page, err := h.dashboardService.Sessions(c.Request().Context(), agentID, limit, offset)
	if err != nil {
		return translate(err)
	}
	return respond(c, http.StatusOK, echo.Map{"sessions": page.Sessions, "total": page.Total})
}

// SessionDetail godoc
// @Summary One session of an agent
// @Tags user
// @Produce json
// @Security BearerAuth
// @Param agentId path string true "Agent ID"
// @Param sessionId path string true "Session ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} errors.ErrorResponse
// @Router /user/agents/{agentId}/sessions/{sessionId} [get]
func (h *DashboardHandler) SessionDetail(c echo.Context) error {
	agentID, err := parseAgentID(c)
	if err != nil {
		return err
	}
	sessionID, err := uuid.Parse(c.Param("sessionId"))
	if err != nil {
		return apperrors.Validation("invalid session id")
	}
	session, err := h.dashboardService.SessionDetail(c.Request().Context(), agentID, sessionID)
	if err != nil {
		return translate(err)
	}
	return respond(c, http.StatusOK, echo.Map{"session": session})
}

// SessionLog godoc
// @Summary Telephony log metadata of a session
// @Tags user
// @Produce json
// @Security BearerAuth
// @Param agentId path string true "Agent ID"
// @Param sessionId path string true "Session ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} errors.ErrorResponse
// @Router /user/agents/{agentId}/sessions/{sessionId}/log [get]
func (h *DashboardHandler) SessionLog(c echo.Context) error {
	agentID, err := parseAgentID(c)
	if err != nil {
		return err
	}
	sessionID, err := uuid.Parse(c.Param("sessionId"))
	if err != nil {
		return apperrors.Validation("invalid session id")
	}
	log, err := h.dashboardService.SessionLog(c.Request().Context(), agentID, sessionID)
	if err != nil {
		return translate(err)
	}
	return respond(c, http.StatusOK, echo.Map{"log": log})
}

// Conversations godoc
// @Summary List an agent's conversations
// @Tags user
// @Produce json
// @Security BearerAuth
// @Param agentId path string true "Agent ID"
// @Success 200 {object} service.ConversationPage
// @Failure 403 {object} errors.ErrorResponse
// @Router /user/agents/{agentId}/conversations [get]
func (h *DashboardHandler) Conversations(c echo.Context) error {
	agentID, err := parseAgentID(c)
	if err != nil {
		return err
	}
	limit, offset := pageParams(c)
	page, err := h.dashboardService.Conversations(c.Request().Context(), agentID, limit, offset)
	if err != nil {
		return translate(err)
	}
	return respond(c, http.StatusOK, echo.Map{"conversations": page.Conversations, "total": page.Total})
}

// ConversationDetail godoc
// @Summary One conversation of an agent
// @Tags user
// @Produce json
// @Security BearerAuth
// @Param agentId path string true "Agent ID"
// @Param conversationId path string true "Conversation ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} errors.ErrorResponse
// @Router /user/agents/{agentId}/conversations/{conversationId} [get]
func (h *DashboardHandler) ConversationDetail(c echo.Context) error {
	agentID, err := parseAgentID(c)
	if err != nil {
		return err
	}
	conversationID, err := uuid.Parse(c.Param("conversationId"))
	if err != nil {
		return apperrors.Validation("invalid conversation id")
	}
	conversation, err := h.dashboardService.ConversationDetail(c.Request().Context(), agentID, conversationID)
	if err != nil {
		return translate(err)
	}
	return respond(c, http.StatusOK, echo.Map{"conversation": conversation})
}

// ExportSessions godoc
// @Summary Export an agent's sessions
// @Tags user
// @Produce json
// @Security BearerAuth
// @Param agentId path string true "Agent ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} errors.ErrorResponse
// @Router /user/agents/{agentId}/export [get]
func (h *DashboardHandler) ExportSessions(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return apperrors.Unauthenticated("not authenticated")
	}
	agentID, err := parseAgentID(c)
	if err != nil {
		return err
	}
	sessions, err := h.dashboardService.ExportSessions(c.Request().Context(), user, agentID, middleware.RequestMeta(c))
	if err != nil {
		return translate(err)
	}
	return respond(c, http.StatusOK, echo.Map{"sessions": sessions})
}

// MarkConversation godoc
// @Summary Set a conversation's review status
// @Tags user
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param agentId path string true "Agent ID"
// @Param conversationId path string true "Conversation ID"
// @Param request body MarkRequest true "Review status"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} errors.ErrorResponse
// @Router /user/agents/{agentId}/conversations/{conversationId}/mark [post]
func (h *DashboardHandler) MarkConversation(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return apperrors.Unauthenticated("not authenticated")
	}
	agentID, err := parseAgentID(c)
	if err != nil {
		return err
	}
	conversationID, err := uuid.Parse(c.Param("conversationId"))
	if err != nil {
		return apperrors.Validation("invalid conversation id")
	}

	var req MarkRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return apperrors.Validation(err.Error())
	}

	conversation, err := h.dashboardService.MarkConversation(
		c.Request().Context(), user, agentID, conversationID, model.ReviewStatus(req.ReviewStatus))
	if err != nil {
		return translate(err)
	}
	return respond(c, http.StatusOK, echo.Map{"conversation": conversation})
}

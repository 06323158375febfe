package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apperrors "voxadmin/internal/errors"
	"voxadmin/internal/middleware"
	"voxadmin/internal/service"
)

// AdminAssignmentHandler handles assignment management endpoints.
type AdminAssignmentHandler struct {
	assignmentService service.AssignmentService
}

// NewAdminAssignmentHandler creates a new assignment handler.
func NewAdminAssignmentHandler(assignmentService service.AssignmentService) *AdminAssignmentHandler {
	return &AdminAssignmentHandler{assignmentService: assignmentService}
}

// AssignmentRequest describes one assignment create or flag patch.
type AssignmentRequest struct {
	AgentID              string `json:"agent_id" validate:"required"`
	CanViewSessions      *bool  `json:"can_view_sessions"`
	CanViewLogs          *bool  `json:"can_view_logs"`
	CanViewConversations *bool  `json:"can_view_conversations"`
	CanExportData        *bool  `json:"can_export_data"`
}

// BulkAssignmentRequest carries multiple assignments for one user.
type BulkAssignmentRequest struct {
	Assignments []AssignmentRequest `json:"assignments" validate:"required,min=1"`
}

// MarkToggleRequest flips the can_mark flag.
type MarkToggleRequest struct {
	AgentID string `json:"agent_id" validate:"required"`
	CanMark bool   `json:"can_mark"`
}

func (r AssignmentRequest) toInput() (service.CreateAssignmentInput, error) {
	agentID, err := uuid.Parse(r.AgentID)
	if err != nil {
		return service.CreateAssignmentInput{}, apperrors.Validation("invalid agent id")
	}
	return service.CreateAssignmentInput{
		AgentID: agentID,
		Flags: service.AssignmentFlags{
			CanViewSessions:      r.CanViewSessions,
			CanViewLogs:          r.CanViewLogs,
			CanViewConversations: r.CanViewConversations,
			CanExportData:        r.CanExportData,
		},
	}, nil
}

// List godoc
// @Summary List a user's assignments
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param uid path string true "User ID"
// @Success 200 {object} map[string]interface{}
// @Router /admin/users/{uid}/agents [get]
func (h *AdminAssignmentHandler) List(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("uid"))
	if err != nil {
		return apperrors.Validation("invalid user id")
	}
	assignments, err := h.assignmentService.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return translate(err)
	}
	return respond(c, http.StatusOK, echo.Map{"assignments": assignments})
}

// Create godoc
// @Summary Assign an agent to a user
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param uid path string true "User ID"
// @Param request body AssignmentRequest true "Assignment"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Router /admin/users/{uid}/agents [post]
func (h *AdminAssignmentHandler) Create(c echo.Context) error {
	actor, _ := middleware.CurrentUser(c)

	userID, err := uuid.Parse(c.Param("uid"))
	if err != nil {
		return apperrors.Validation("invalid user id")
	}

	var req AssignmentRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return apperrors.Validation(err.Error())
	}
	in, err := req.toInput()
	if err != nil {
		return err
	}

	assignment, err := h.assignmentService.Create(c.Request().Context(), actor, userID, in, middleware.RequestMeta(c))
	if err != nil {
		return translate(err)
	}
	return respond(c, http.StatusCreated, echo.Map{"assignment": assignment})
}

// Update godoc
// @Summary Patch assignment flags
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param uid path string true "User ID"
// @Param agentId path string true "Agent ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/users/{uid}/agents/{agentId} [patch]
func (h *AdminAssignmentHandler) Update(c echo.Context) error {
	actor, _ := middleware.CurrentUser(c)

	userID, err := uuid.Parse(c.Param("uid"))
	if err != nil {
		return apperrors.Validation("invalid user id")
	}
	agentID, err := uuid.Parse(c.Param("agentId"))
	if err != nil {
		return apperrors.Validation("invalid agent id")
	}

	var req AssignmentRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}

	assignment, err := h.assignmentService.Update(c.Request().Context(), actor, userID, agentID, service.AssignmentFlags{
		CanViewSessions:      req.CanViewSessions,
		CanViewLogs:          req.CanViewLogs,
		CanViewConversations: req.CanViewConversations,
		CanExportData:        req.CanExportData,
	}, middleware.RequestMeta(c))
	if err != nil {
		return translate(err)
	}
	return respond(c, http.StatusOK, echo.Map{"assignment": assignment})
}

// Delete godoc
// @Summary Remove an assignment
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param uid path string true "User ID"
// @Param agentId path string true "Agent ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/users/{uid}/agents/{agentId} [delete]
func (h *AdminAssignmentHandler) Delete(c echo.Context) error {
	actor, _ := middleware.CurrentUser(c)

	userID, err := uuid.Parse(c.Param("uid"))
	if err != nil {
		return apperrors.Validation("invalid user id")
	}
	agentID, err := uuid.Parse(c.Param("agentId"))
	if err != nil {
		return apperrors.Validation("invalid agent id")
	}

	if err := h.assignmentService.Delete(c.Request().Context(), actor, userID, agentID, middleware.RequestMeta(c)); err != nil {
		return translate(err)
	}
	return respond(c, http.StatusOK, echo.Map{"message": "assignment removed"})
}

// BulkCreate godoc
// @Summary Assign multiple agents, reporting per-item errors
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param uid path string true "User ID"
// @Param request body BulkAssignmentRequest true "Assignments"
// @Success 200 {object} service.BulkCreateResult
// @Router /admin/users/{uid}/agents/bulk [post]
func (h *AdminAssignmentHandler) BulkCreate(c echo.Context) error {
	actor, _ := middleware.CurrentUser(c)

	userID, err := uuid.Parse(c.Param("uid"))
	if err != nil {
		return apperrors.Validation("invalid user id")
	}

	var req BulkAssignmentRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return apperrors.Validation(err.Error())
	}

	items := make([]service.CreateAssignmentInput, 0, len(req.Assignments))
	for _, r := range req.Assignments {
		in, err := r.toInput()
		if err != nil {
			return err
		}
		items = append(items, in)
	}

	result, err := h.assignmentService.BulkCreate(c.Request().Context(), actor, userID, items, middleware.RequestMeta(c))
	if err != nil {
		return translate(err)
	}
	return respond(c, http.StatusOK, echo.Map{"result": result})
}

// ToggleMark godoc
// @Summary Flip a user's can_mark flag for an agent
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param uid path string true "User ID"
// @Param request body MarkToggleRequest true "Toggle"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/users/{uid}/mark-permission [post]
func (h *AdminAssignmentHandler) ToggleMark(c echo.Context) error {
	actor, _ := middleware.CurrentUser(c)

	userID, err := uuid.Parse(c.Param("uid"))
	if err != nil {
		return apperrors.Validation("invalid user id")
	}

	var req MarkToggleRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return apperrors.Validation(err.Error())
	}
	agentID, err := uuid.Parse(req.AgentID)
	if err != nil {
		return apperrors.Validation("invalid agent id")
	}

	assignment, err := h.assignmentService.ToggleMark(c.Request().Context(), actor, userID, agentID, req.CanMark, middleware.RequestMeta(c))
	if err != nil {
		return translate(err)
	}
	return respond(c, http.StatusOK, echo.Map{"assignment": assignment})
}

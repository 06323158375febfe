package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "voxadmin/internal/errors"
	"voxadmin/internal/telephony"
)

// WebhookHandler serves the telephony provider's call-start webhook.
type WebhookHandler struct {
	greetings *telephony.GreetingService
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(greetings *telephony.GreetingService) *WebhookHandler {
	return &WebhookHandler{greetings: greetings}
}

// GreetingRequest is what the provider posts at call start.
type GreetingRequest struct {
	Token   string `json:"token"`
	AgentID string `json:"agent_id"`
	CallID  string `json:"call_id"`
	Caller  string `json:"caller"`
}

// Greeting godoc
// @Summary Resolve the greeting for an incoming call
// @Description Called by the telephony provider at call start. Authenticated by a
// @Description shared webhook token, not a bearer token.
// @Tags webhook
// @Accept json
// @Produce json
// @Param request body GreetingRequest true "Call info"
// @Success 200 {object} telephony.Greeting
// @Failure 401 {object} errors.ErrorResponse
// @Router /webhook/greeting [post]
func (h *WebhookHandler) Greeting(c echo.Context) error {
	var req GreetingRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}

	token := req.Token
	if token == "" {
		token = c.Request().Header.Get("X-Webhook-Token")
	}
	if err := h.greetings.Authorize(token); err != nil {
		return apperrors.Unauthenticated("invalid webhook token")
	}

	greeting := h.greetings.Resolve(c.Request().Context(), req.AgentID)
	return c.JSON(http.StatusOK, greeting)
}

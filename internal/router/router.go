package router

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v4"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"voxadmin/internal/auth"
	"voxadmin/internal/config"
	apperrors "voxadmin/internal/errors"
	"voxadmin/internal/handler"
	"voxadmin/internal/middleware"
	"voxadmin/internal/model"
	"voxadmin/internal/permission"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	authenticator *middleware.Authenticator,
	agentAccess *middleware.AgentAccess,
	setupHandler *handler.SetupHandler,
	authHandler *handler.AuthHandler,
	adminUserHandler *handler.AdminUserHandler,
	adminAssignmentHandler *handler.AdminAssignmentHandler,
	adminAgentHandler *handler.AdminAgentHandler,
	adminStatsHandler *handler.AdminStatsHandler,
	dashboardHandler *handler.DashboardHandler,
	dataAdminHandler *handler.DataAdminHandler,
	webhookHandler *handler.WebhookHandler,
) {
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	e.Validator = &CustomValidator{validator: validator.New()}
	e.HTTPErrorHandler = errorHandler

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/setup/init", setupHandler.Init)
	api.GET("/setup/status", setupHandler.Status)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)
	api.POST("/auth/forgot-password", authHandler.ForgotPassword)
	api.POST("/auth/reset-password", authHandler.ResetPassword)
	api.POST("/webhook/greeting", webhookHandler.Greeting)

	// Secured routes (require JWT authentication)
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(cfg.JWTSecret),
		TokenLookup: "header:" + echo.HeaderAuthorization,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(auth.Claims)
		},
	}),
		authenticator.LoadUser,
		middleware.RequirePasswordChanged("/api/auth/change-password"),
	)

	secured.GET("/auth/me", authHandler.Me)
	secured.POST("/auth/change-password", authHandler.ChangePassword)
	secured.POST("/auth/logout", authHandler.Logout)

	// Admin routes
	admin := secured.Group("/admin", middleware.RequireRole(model.RoleAdmin))

	admin.GET("/users", adminUserHandler.List)
	admin.POST("/users", adminUserHandler.Create)
	admin.GET("/users/:uid", adminUserHandler.Get)
	admin.PATCH("/users/:uid", adminUserHandler.Update)
	admin.DELETE("/users/:uid", adminUserHandler.Delete)
	admin.POST("/users/:uid/reset-password", adminUserHandler.ResetPassword)

	admin.GET("/users/:uid/agents", adminAssignmentHandler.List)
	admin.POST("/users/:uid/agents", adminAssignmentHandler.Create)
	admin.POST("/users/:uid/agents/bulk", adminAssignmentHandler.BulkCreate)
	admin.PATCH("/users/:uid/agents/:agentId", adminAssignmentHandler.Update)
	admin.DELETE("/users/:uid/agents/:agentId", adminAssignmentHandler.Delete)
	admin.POST("/users/:uid/mark-permission", adminAssignmentHandler.ToggleMark)

	admin.GET("/agents", adminAgentHandler.List)
	admin.GET("/agents/:agentId", adminAgentHandler.Get)

	admin.GET("/stats", adminStatsHandler.Stats)
	admin.GET("/audit-logs", adminStatsHandler.AuditLogs)

	// Data-admin routes
	dataAdmin := secured.Group("/data-admin", middleware.RequireRole(model.RoleAdmin))

	dataAdmin.DELETE("/sessions/:sessionId", dataAdminHandler.DeleteSession)
	dataAdmin.DELETE("/conversations/:conversationId", dataAdminHandler.DeleteConversation)
	dataAdmin.DELETE("/agents/:agentId", dataAdminHandler.DeleteAgent)
	dataAdmin.PUT("/conversations/:conversationId/summary", dataAdminHandler.EditSummary)
	dataAdmin.GET("/excluded", dataAdminHandler.ListExcluded)
	dataAdmin.DELETE("/excluded/:type/:id", dataAdminHandler.Restore)

	// User dashboard routes
	user := secured.Group("/user")

	user.GET("/dashboard", dashboardHandler.Summary)
	user.GET("/agents/:agentId", dashboardHandler.AgentDetail)
	user.GET("/agents/:agentId/sessions", dashboardHandler.Sessions,
		agentAccess.RequireAgentPermission(permission.ViewSessions))
	user.GET("/agents/:agentId/sessions/:sessionId", dashboardHandler.SessionDetail,
		agentAccess.RequireAgentPermission(permission.ViewSessions))
	user.GET("/agents/:agentId/sessions/:sessionId/log", dashboardHandler.SessionLog,
		agentAccess.RequireAgentPermission(permission.ViewLogs))
	user.GET("/agents/:agentId/conversations", dashboardHandler.Conversations,
		agentAccess.RequireAgentPermission(permission.ViewConversations))
	user.GET("/agents/:agentId/conversations/:conversationId", dashboardHandler.ConversationDetail,
		agentAccess.RequireAgentPermission(permission.ViewConversations))
	user.GET("/agents/:agentId/export", dashboardHandler.ExportSessions,
		agentAccess.RequireAgentPermission(permission.ExportData))
	// Marking is gated by can_mark alone; the service checks the flag, so
	// the route must not demand any of the view capabilities.
	user.POST("/agents/:agentId/conversations/:conversationId/mark", dashboardHandler.MarkConversation,
		agentAccess.RequireAgentAccess())
}

// errorHandler renders every error into the standard failure envelope.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var httpErr *apperrors.HTTPError
	if !errors.As(err, &httpErr) {
		var echoErr *echo.HTTPError
		if errors.As(err, &echoErr) {
			msg, ok := echoErr.Message.(string)
			if !ok {
				msg = http.StatusText(echoErr.Code)
			}
			httpErr = apperrors.NewHTTPError(echoErr.Code, msg)
		} else {
			httpErr = apperrors.MapError(err)
		}
	}

	if c.Request().Method == http.MethodHead {
		if err := c.NoContent(httpErr.StatusCode); err != nil {
			c.Logger().Error(err)
		}
		return
	}
	if err := c.JSON(httpErr.StatusCode, httpErr.ToResponse()); err != nil {
		c.Logger().Error(err)
	}
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

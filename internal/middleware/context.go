package middleware

import (
	"github.com/labstack/echo/v4"

	"voxadmin/internal/audit"
	"voxadmin/internal/model"
	"voxadmin/internal/permission"
)

const (
	userContextKey        = "current_user"
	tokenIDContextKey     = "access_token_id"
	permissionsContextKey = "agent_permissions"
)

// CurrentUser returns the authenticated user attached by Authenticate. The
// record is sanitized: the password hash is never carried on the context.
func CurrentUser(c echo.Context) (*model.User, bool) {
	user, ok := c.Get(userContextKey).(*model.User)
	return user, ok
}

// AccessTokenID returns the JTI of the presented access token.
func AccessTokenID(c echo.Context) string {
	id, _ := c.Get(tokenIDContextKey).(string)
	return id
}

// AgentPermissions returns the effective permission set resolved by the
// agent authorization middleware.
func AgentPermissions(c echo.Context) (permission.Set, bool) {
	set, ok := c.Get(permissionsContextKey).(permission.Set)
	return set, ok
}

// RequestMeta extracts caller IP and user-agent for audit logging.
func RequestMeta(c echo.Context) audit.RequestMeta {
	return audit.RequestMeta{
		IP:        c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}
}

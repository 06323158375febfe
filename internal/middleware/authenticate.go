package middleware

import (
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"

	"voxadmin/internal/auth"
	apperrors "voxadmin/internal/errors"
	"voxadmin/internal/model"
	"voxadmin/internal/repository"
)

// DeactivatedAccountMessage is returned for any authenticated request from a
// deactivated account, including an otherwise valid login.
const DeactivatedAccountMessage = "Account is deactivated. Please contact an administrator."

// Authenticator resolves the acting user from a verified bearer token.
type Authenticator struct {
	users      repository.UserRepository
	tokenStore auth.TokenStoreInterface
}

// NewAuthenticator creates the authentication middleware provider.
func NewAuthenticator(users repository.UserRepository, tokenStore auth.TokenStoreInterface) *Authenticator {
	return &Authenticator{users: users, tokenStore: tokenStore}
}

// LoadUser runs after the echo-jwt signature check. It rejects blacklisted
// tokens and stale user references, enforces the active flag, and attaches a
// sanitized user record for downstream handlers.
func (a *Authenticator) LoadUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := c.Get("user").(*jwt.Token)
		if !ok {
			return apperrors.Unauthenticated("missing or malformed token")
		}
		claims, ok := token.Claims.(*auth.Claims)
		if !ok {
			return apperrors.Unauthenticated("invalid token claims")
		}

		if claims.ID != "" {
			blacklisted, _ := a.tokenStore.IsAccessTokenBlacklisted(c.Request().Context(), claims.ID)
			if blacklisted {
				return apperrors.Unauthenticated("token has been revoked")
			}
		}

		user, err := a.users.FindByID(c.Request().Context(), claims.UserID)
		if err != nil {
			return apperrors.Unauthenticated("user no longer exists")
		}
		if !user.IsActive {
			return apperrors.Forbidden(DeactivatedAccountMessage)
		}

		sanitized := user.Sanitized()
		c.Set(userContextKey, &sanitized)
		c.Set(tokenIDContextKey, claims.ID)
		return next(c)
	}
}

// RequirePasswordChanged blocks users flagged must-change-password from
// every endpoint except the password-change one.
func RequirePasswordChanged(exemptPath string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := CurrentUser(c)
			if !ok {
				return apperrors.Unauthenticated("not authenticated")
			}
			if user.MustChangePassword && c.Path() != exemptPath {
				return apperrors.Forbidden("password change required").
					WithDetails(map[string]any{"mustChangePassword": true})
			}
			return next(c)
		}
	}
}

// RequireRole restricts a route group to the given roles.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := CurrentUser(c)
			if !ok {
				return apperrors.Unauthenticated("not authenticated")
			}
			for _, role := range roles {
				if user.Role == role {
					return next(c)
				}
			}
			return apperrors.Forbidden("insufficient role")
		}
	}
}

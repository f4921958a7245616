package middleware

import (
	"net/http"

	"rentfolio/internal/common"
	"rentfolio/internal/models"

	"github.com/labstack/echo/v4"
)

// RequireRole gates a route group to specific profile roles. The role comes
// from the validated JWT, never from request input.
func RequireRole(roles ...models.Role) echo.MiddlewareFunc {
	allowed := make(map[models.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := common.GetRoleFromContext(c.Request().Context())
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
			}
			if !allowed[role] {
				return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
			}
			return next(c)
		}
	}
}

// RequireOwner is shorthand for the landlord-only routes.
func RequireOwner() echo.MiddlewareFunc {
	return RequireRole(models.RoleOwner)
}

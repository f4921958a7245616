package middleware

import (
	"context"
	"net/http"

	"rentfolio/internal/common"
	"rentfolio/internal/services"

	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

// JWTConfig builds the echo-jwt configuration for protected routes. Token
// validation runs through the auth service so revoked token ids are rejected
// even before their natural expiry; on success the caller's id and role land
// in the request context.
func JWTConfig(authService services.AuthService) echojwt.Config {
	return echojwt.Config{
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			claims, err := authService.ValidateToken(c.Request().Context(), auth)
			if err != nil {
				return nil, err
			}

			userID, err := uuid.Parse(claims.UserID)
			if err != nil {
				return nil, err
			}
			if !claims.Role.Valid() {
				return nil, echo.NewHTTPError(http.StatusUnauthorized, "Invalid role in token")
			}

			ctx := context.WithValue(c.Request().Context(), common.UserIDKey, userID)
			ctx = context.WithValue(ctx, common.RoleKey, claims.Role)
			c.SetRequest(c.Request().WithContext(ctx))

			return claims, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
		},
	}
}

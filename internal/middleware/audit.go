package middleware

import (
	"log"
	"time"

	"rentfolio/internal/common"

	"github.com/labstack/echo/v4"
)

// AuditRequest logs mutating requests and failed requests with the caller
// identity. Health checks and plain reads stay quiet.
func AuditRequest() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			method := c.Request().Method
			if err == nil && !isMutating(method) {
				return nil
			}

			actor := "anonymous"
			if userID, ok := common.GetUserIDFromContext(c.Request().Context()); ok {
				actor = userID.String()
			}

			status := c.Response().Status
			if httpErr, ok := err.(*echo.HTTPError); ok {
				status = httpErr.Code
			}

			if err != nil {
				log.Printf("AUDIT: %s %s actor=%s status=%d ip=%s duration=%s error=%v",
					method, c.Path(), actor, status, c.RealIP(), time.Since(start), err)
			} else {
				log.Printf("AUDIT: %s %s actor=%s status=%d ip=%s duration=%s",
					method, c.Path(), actor, status, c.RealIP(), time.Since(start))
			}

			return err
		}
	}
}

func isMutating(method string) bool {
	switch method {
	case "POST", "PUT", "PATCH", "DELETE":
		return true
	}
	return false
}

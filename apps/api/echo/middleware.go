package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/trezcool/boletin/core"
)

// roleMiddleware lets through callers allowed by check.
func roleMiddleware(check func(core.Caller) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			caller, err := getContextCaller(ctx)
			if err != nil {
				return err
			}
			if !check(caller) {
				return errHttpForbidden
			}
			return next(ctx)
		}
	}
}

func staffMiddleware() echo.MiddlewareFunc {
	return roleMiddleware(core.Caller.IsStaff)
}

func adminMiddleware() echo.MiddlewareFunc {
	return roleMiddleware(core.Caller.IsAdmin)
}

package middleware

import (
	"github.com/labstack/echo/v4"

	"motiv8/pkg/errors"
	"motiv8/pkg/response"
)

type AdminMiddleware struct{}

func NewAdminMiddleware() *AdminMiddleware {
	return &AdminMiddleware{}
}

// AdminOnly requires the admin claim placed by Authenticate.
func (m *AdminMiddleware) AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := c.Get(ContextUID).(string); !ok {
			return response.Error(c, errors.Unauthorized("Authentication required", nil))
		}

		if admin, _ := c.Get(ContextAdmin).(bool); !admin {
			return response.Error(c, errors.Forbidden("Admin privileges required", nil))
		}

		return next(c)
	}
}

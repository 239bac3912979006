package router

import (
	"motiv8/internal/adapter/api/handler"

	"github.com/labstack/echo/v4"
)

func SetupDevRouter(e *echo.Echo, environment string, devTokenHandler *handler.DevTokenHandler) {
	if environment != "development" || devTokenHandler == nil {
		return
	}

	e.GET("/_dev/token", devTokenHandler.GenerateToken)
}

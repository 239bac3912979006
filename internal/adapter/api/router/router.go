package router

import (
	"motiv8/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func Setup(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware, rateLimit *middleware.RateLimitMiddleware) {
	SetupMissionRouter(e, authMiddleware, rateLimit)
	SetupCatalogRouter(e, authMiddleware, adminMiddleware)
	SetupMatchRouter(e, authMiddleware, rateLimit)
	SetupStatsRouter(e, authMiddleware, rateLimit)
}

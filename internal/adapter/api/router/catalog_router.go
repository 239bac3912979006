package router

import (
	"motiv8/internal/adapter/api/handler"
	"motiv8/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func SetupCatalogRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware) {
	catalogHandler := handler.GetCatalogHandler()

	// Admin routes
	admin := e.Group("/v1/admin/missions")
	admin.Use(authMiddleware.Authenticate)
	admin.Use(adminMiddleware.AdminOnly)

	admin.POST("", catalogHandler.CreateTemplate)
	admin.POST("/import", catalogHandler.ImportCatalog)
	admin.GET("/:missionId", catalogHandler.GetTemplate)
	admin.PUT("/:missionId", catalogHandler.UpdateTemplate)
	admin.DELETE("/:missionId", catalogHandler.DeleteTemplate)
}

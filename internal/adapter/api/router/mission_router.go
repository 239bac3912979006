package router

import (
	"motiv8/internal/adapter/api/handler"
	"motiv8/internal/adapter/api/middleware"
	"motiv8/internal/infrastructure/ratelimit"

	"github.com/labstack/echo/v4"
)

func SetupMissionRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, rateLimit *middleware.RateLimitMiddleware) {
	missionHandler := handler.GetMissionHandler()

	missions := e.Group("/v1/missions")
	missions.Use(authMiddleware.Authenticate)

	missions.GET("/catalog", missionHandler.GetCatalog)
	missions.GET("/active", missionHandler.GetActiveMissions)
	missions.POST("/assign", missionHandler.AssignMission, rateLimit.Limit(ratelimit.ActionAssign))
	missions.POST("/assign-three", missionHandler.AssignThreeMissions, rateLimit.Limit(ratelimit.ActionAssign))
	missions.POST("/:missionId/progress", missionHandler.UpdateProgress, rateLimit.Limit(ratelimit.ActionProgress))
	missions.POST("/:missionId/complete", missionHandler.CompleteMission)
	missions.POST("/:missionId/claim", missionHandler.ClaimMission)
	missions.POST("/:missionId/mark-completed", missionHandler.MarkCompleted)
}

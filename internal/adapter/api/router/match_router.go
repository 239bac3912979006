package router

import (
	"motiv8/internal/adapter/api/handler"
	"motiv8/internal/adapter/api/middleware"
	"motiv8/internal/infrastructure/ratelimit"

	"github.com/labstack/echo/v4"
)

func SetupMatchRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, rateLimit *middleware.RateLimitMiddleware) {
	matchHandler := handler.GetMatchHandler()

	matches := e.Group("/v1/matches")
	matches.Use(authMiddleware.Authenticate)

	matches.POST("/:missionId/start", matchHandler.StartMatch, rateLimit.Limit(ratelimit.ActionMatch))
	matches.POST("/:missionId/stop", matchHandler.StopMatch, rateLimit.Limit(ratelimit.ActionMatch))
	matches.GET("/:missionId/members", matchHandler.ListMembers)
	matches.GET("/:missionId/events", matchHandler.ListEvents)
}

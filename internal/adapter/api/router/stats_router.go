package router

import (
	"motiv8/internal/adapter/api/handler"
	"motiv8/internal/adapter/api/middleware"
	"motiv8/internal/infrastructure/ratelimit"

	"github.com/labstack/echo/v4"
)

func SetupStatsRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, rateLimit *middleware.RateLimitMiddleware) {
	statsHandler := handler.GetStatsHandler()

	authenticated := e.Group("/v1")
	authenticated.Use(authMiddleware.Authenticate)

	authenticated.GET("/stats/me", statsHandler.GetMyStats)
	authenticated.POST("/stats/level-reward", statsHandler.ClaimLevelReward, rateLimit.Limit(ratelimit.ActionLevelClaim))
	authenticated.GET("/leaderboard", statsHandler.GetLeaderboard)
}

package router

import (
	"github.com/labstack/echo/v4"

	"motiv8/internal/adapter/api/handler"
	"motiv8/internal/adapter/api/middleware"
)

// SetupWebSocketRouter exposes the realtime endpoint. The token travels as
// ?token= because browsers cannot set headers on the handshake.
func SetupWebSocketRouter(e *echo.Echo, wsHandler *handler.WebSocketHandler, authMiddleware *middleware.AuthMiddleware) {
	e.GET("/ws", wsHandler.HandleWebSocket, authMiddleware.Authenticate)
}

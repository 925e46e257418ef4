package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kevinktg/chatbot/internal/middleware"
)

type RouterDeps struct {
	Chat       *ChatHandler
	Query      *QueryHandler
	Health     *HealthHandler
	ChatWindow time.Duration
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.Use(middleware.RequestID())

	api.GET("/health", deps.Health.Health)
	api.POST("/query", deps.Query.Query)

	chatGroup := api.Group("")
	chatGroup.Use(middleware.RateLimit(deps.ChatWindow))
	chatGroup.POST("/chat", deps.Chat.Chat)
	chatGroup.GET("/chat/:session_id/history", deps.Chat.History)

	api.POST("/admin/reload", deps.Query.Reload)
}

package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kevinktg/chatbot/internal/pkg/response"
	"github.com/kevinktg/chatbot/internal/service"
)

type HealthHandler struct {
	chat         *service.ChatService
	ragAvailable bool
	llmAvailable bool
}

func NewHealthHandler(chat *service.ChatService, ragAvailable, llmAvailable bool) *HealthHandler {
	return &HealthHandler{chat: chat, ragAvailable: ragAvailable, llmAvailable: llmAvailable}
}

func (h *HealthHandler) Health(c *gin.Context) {
	sessions := 0
	if h.chat != nil {
		sessions = h.chat.SessionCount()
	}
	response.Success(c, gin.H{
		"status":          "healthy",
		"rag_available":   h.ragAvailable,
		"llm_available":   h.llmAvailable,
		"active_sessions": sessions,
	})
}

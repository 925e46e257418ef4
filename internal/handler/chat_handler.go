package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kevinktg/chatbot/internal/pkg/errcode"
	"github.com/kevinktg/chatbot/internal/pkg/response"
	"github.com/kevinktg/chatbot/internal/service"
)

type ChatHandler struct {
	chat *service.ChatService
}

func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type chatResponse struct {
	Response    string `json:"response"`
	SessionID   string `json:"session_id"`
	Timestamp   string `json:"timestamp"`
	ContextUsed bool   `json:"context_used"`
}

func (h *ChatHandler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.Message == "" {
		response.Error(c, errcode.ErrInvalid, "message is required")
		return
	}
	res, err := h.chat.Chat(c.Request.Context(), req.SessionID, req.Message)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, chatResponse{
		Response:    res.Response,
		SessionID:   res.SessionID,
		Timestamp:   res.Timestamp,
		ContextUsed: res.ContextUsed,
	})
}

func (h *ChatHandler) History(c *gin.Context) {
	sessionID := c.Param("session_id")
	history := h.chat.History(sessionID)
	if history == nil {
		response.Error(c, errcode.ErrNotFound, "session not found")
		return
	}
	response.Success(c, gin.H{"session_id": sessionID, "messages": history})
}

package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kevinktg/chatbot/internal/pkg/errcode"
	"github.com/kevinktg/chatbot/internal/pkg/response"
	"github.com/kevinktg/chatbot/internal/service"
)

type QueryHandler struct {
	retrieval *service.RetrievalService
}

func NewQueryHandler(retrieval *service.RetrievalService) *QueryHandler {
	return &QueryHandler{retrieval: retrieval}
}

type queryRequest struct {
	Query string `json:"query"`
	K     int    `json:"k"`
}

func (h *QueryHandler) Query(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.Query == "" {
		response.Error(c, errcode.ErrInvalid, "query is required")
		return
	}
	hits, err := h.retrieval.Query(c.Request.Context(), req.Query, req.K)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"hits": hits})
}

// Reload drops the cached chunk lookup, picking up a freshly built chunk
// file without a restart.
func (h *QueryHandler) Reload(c *gin.Context) {
	h.retrieval.Reload()
	response.Success(c, gin.H{"reloaded": true})
}

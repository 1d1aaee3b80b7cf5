package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/healthtwin-backend/internal/middleware"
	"github.com/jengzang/healthtwin-backend/internal/service"
	"github.com/jengzang/healthtwin-backend/pkg/response"
)

// ChatHandler handles HTTP requests for the health advisor
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// ChatRequest is one user message
type ChatRequest struct {
	Message string `json:"message"`
}

// Send handles POST /api/v1/chat
func (h *ChatHandler) Send(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	reply, err := h.chatService.Send(c.Request.Context(), middleware.UserID(c), req.Message)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, reply)
}

// GetHistory handles GET /api/v1/chat/history
func (h *ChatHandler) GetHistory(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil {
		response.BadRequest(c, "Invalid limit parameter")
		return
	}

	msgs, err := h.chatService.History(c.Request.Context(), middleware.UserID(c), limit)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, msgs)
}

// ClearHistory handles DELETE /api/v1/chat/history
func (h *ChatHandler) ClearHistory(c *gin.Context) {
	if err := h.chatService.ClearHistory(c.Request.Context(), middleware.UserID(c)); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, nil)
}

// GetStatus handles GET /api/v1/chat/status
func (h *ChatHandler) GetStatus(c *gin.Context) {
	response.Success(c, h.chatService.Status())
}

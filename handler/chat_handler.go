package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docchat-io/docchat-be/middleware"
	"github.com/docchat-io/docchat-be/service"
	"github.com/docchat-io/docchat-be/types"
)

type ChatHandler struct {
	chatService      *service.ChatService
	websocketService *service.WebSocketService
}

func NewChatHandler(chatService *service.ChatService, websocketService *service.WebSocketService) *ChatHandler {
	return &ChatHandler{
		chatService:      chatService,
		websocketService: websocketService,
	}
}

// Chat answers a question about a single document and records the turn.
func (h *ChatHandler) Chat(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == "" {
		sendError(c, types.ErrUnauthorized)
		return
	}
	var req types.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, types.ErrInvalidRequest)
		return
	}
	answer, err := h.chatService.Answer(c.Request.Context(), userID, req)
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, types.ChatResponse{Answer: answer})
}

// History returns the caller's chat turns, newest first.
func (h *ChatHandler) History(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == "" {
		sendError(c, types.ErrUnauthorized)
		return
	}
	turns, err := h.chatService.History(c.Request.Context(), userID)
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, types.HistoryResponse{Turns: turns})
}

// ChatWS upgrades the connection and streams answer tokens over websocket.
func (h *ChatHandler) ChatWS(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == "" {
		sendError(c, types.ErrUnauthorized)
		return
	}
	h.websocketService.HandleChat(c.Writer, c.Request, userID)
}

package handler

import (
	"context"
	"net/http"

	"meal_planner_backend/internal/assistant"
	"meal_planner_backend/internal/chat/transport"
	"meal_planner_backend/platform/httpkit"
	"meal_planner_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Chatter answers a message in a session.
type Chatter interface {
	Chat(ctx context.Context, scope assistant.Scope, message string) (assistant.Reply, error)
}

// Handler handles chat requests.
type Handler struct {
	chat Chatter
	val  *validator.Validator
}

// New creates a new chat handler.
func New(chat Chatter, val *validator.Validator) *Handler {
	return &Handler{chat: chat, val: val}
}

// Chat sends one message to the assistant.
// POST /api/v1/chat
func (h *Handler) Chat(c *gin.Context) {
	var req transport.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Fields(err))
		return
	}
	userID, ok := httpkit.RequireUserID(c)
	if !ok {
		return
	}

	reply, err := h.chat.Chat(c.Request.Context(), assistant.Scope{UserID: userID, SessionID: req.SessionID}, req.Message)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ChatResponse{SessionID: reply.SessionID, Reply: reply.Text})
}

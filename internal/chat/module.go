// Package chat exposes the assistant over HTTP.
package chat

import (
	"meal_planner_backend/internal/chat/handler"
	apphttp "meal_planner_backend/internal/http"
	"meal_planner_backend/platform/validator"
)

// Module is the chat module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates the chat module.
func NewModule(chat handler.Chatter, val *validator.Validator) *Module {
	return &Module{handler: handler.New(chat, val)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "chat"
}

// RegisterRoutes mounts the chat endpoint behind auth and the assistant rate limiter.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.POST("/chat", ctx.AssistantRateLimiter.RateLimit(), m.handler.Chat)
}

var _ apphttp.Module = (*Module)(nil)
